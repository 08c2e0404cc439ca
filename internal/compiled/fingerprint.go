package compiled

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/frontmatter"
)

// Freshness describes generated output relative to its source.
type Freshness string

const (
	Fresh   Freshness = "fresh"
	Stale   Freshness = "stale"
	Missing Freshness = "missing"
)

// Fingerprints tracks content fingerprints of compiled sources in a hashes dir.
//
// A source whose output is older on disk is only reported stale when its
// content fingerprint differs from the one recorded the last time the output
// was known to be current.
type Fingerprints struct {
	dir     string
	docsDir string
}

// NewFingerprints stores fingerprints under dir, keyed by path relative to docsDir.
func NewFingerprints(dir, docsDir string) *Fingerprints {
	return &Fingerprints{dir: dir, docsDir: docsDir}
}

// Fingerprint computes the mdfp fingerprint of a Markdown document.
func Fingerprint(content []byte) (string, error) {
	fm, body, _, err := frontmatter.Split(content)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), string(body)), nil
}

// Check compares a compiled source with its generated output.
func (f *Fingerprints) Check(source, output string) (Freshness, error) {
	outInfo, err := os.Stat(output)
	if err != nil {
		return Missing, nil
	}
	srcInfo, err := os.Stat(source)
	if err != nil {
		return Missing, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot stat compiled source").
			WithContext("path", source).Build()
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return Missing, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot read compiled source").
			WithContext("path", source).Build()
	}
	fp, err := Fingerprint(data)
	if err != nil {
		return Missing, ferrors.WrapError(err, ferrors.CategoryValidation, "cannot fingerprint compiled source").
			WithContext("path", source).Build()
	}

	if !outInfo.ModTime().Before(srcInfo.ModTime()) {
		return Fresh, f.record(source, fp)
	}
	if recorded, err := os.ReadFile(f.hashPath(source)); err == nil && strings.TrimSpace(string(recorded)) == fp {
		return Fresh, nil
	}
	return Stale, nil
}

func (f *Fingerprints) record(source, fp string) error {
	p := f.hashPath(source)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot create hashes dir").
			WithContext("path", f.dir).Build()
	}
	if err := os.WriteFile(p, []byte(fp), 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot write fingerprint").
			WithContext("path", p).Build()
	}
	return nil
}

func (f *Fingerprints) hashPath(source string) string {
	rel, err := filepath.Rel(f.docsDir, source)
	if err != nil {
		rel = filepath.Base(source)
	}
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(filepath.ToSlash(rel))
	return filepath.Join(f.dir, name+".hash")
}
