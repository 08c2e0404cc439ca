// Package compiled maps compiled-source documents (for example `.juvix.md`)
// onto the Markdown an external compiler generates for them.
//
// docweave never runs the compiler. It only reads the generated tree and
// reports when a source looks newer than its output.
package compiled

import (
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// Mapper resolves compiled sources to generated files.
type Mapper struct {
	docsDir   string
	outputDir string
	suffix    string
}

// NewMapper creates a Mapper. Paths are made absolute.
func NewMapper(docsDir, outputDir, suffix string) (*Mapper, error) {
	docs, err := filepath.Abs(docsDir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid docs dir").WithContext("path", docsDir).Build()
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid compiled output dir").WithContext("path", outputDir).Build()
	}
	return &Mapper{docsDir: docs, outputDir: out, suffix: suffix}, nil
}

// Suffix returns the compiled-source suffix, e.g. `.juvix.md`.
func (m *Mapper) Suffix() string { return m.suffix }

// OutputDir returns the absolute generated-output directory.
func (m *Mapper) OutputDir() string { return m.outputDir }

// IsCompiled reports whether path names a compiled source.
func (m *Mapper) IsCompiled(path string) bool {
	return m.suffix != "" && strings.HasSuffix(path, m.suffix)
}

// OutputPath returns where the compiler writes the Markdown for a compiled source.
// Sources outside the docs dir have no generated counterpart.
func (m *Mapper) OutputPath(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil || !m.IsCompiled(abs) {
		return "", false
	}
	rel, err := filepath.Rel(m.docsDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(m.outputDir, m.PagePath(rel)), true
}

// PagePath replaces the compiled suffix of a docs-relative path with `.md`.
func (m *Mapper) PagePath(rel string) string {
	if !m.IsCompiled(rel) {
		return rel
	}
	return strings.TrimSuffix(rel, m.suffix) + ".md"
}

// HTMLSuffix is the suffix compiled pages get when rendered naively, e.g. `.juvix.html`.
func (m *Mapper) HTMLSuffix() string {
	return strings.TrimSuffix(m.suffix, ".md") + ".html"
}

// ReadSource returns the generated Markdown for a compiled page when it exists,
// and the source itself otherwise.
func (m *Mapper) ReadSource(path string) (data []byte, generated bool, err error) {
	if out, ok := m.OutputPath(path); ok {
		if data, err := os.ReadFile(out); err == nil {
			return data, true, nil
		}
	}
	data, err = os.ReadFile(path)
	return data, false, err
}
