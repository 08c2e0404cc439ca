package snippet

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/frontmatter"
)

// Kind tells where resolved content comes from.
type Kind string

const (
	KindLocal    Kind = "local"
	KindRemote   Kind = "remote"
	KindCompiled Kind = "compiled"
)

// Redirector maps compiled source files onto the Markdown generated from them.
type Redirector interface {
	IsCompiled(path string) bool
	// OutputPath returns the generated file for a compiled source, or false when
	// the source lies outside the documentation tree.
	OutputPath(path string) (string, bool)
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// BasePaths are searched in order for local references.
	BasePaths []string
	// Restrict rejects references that escape their base directory.
	Restrict    bool
	Encoding    string
	URLDownload bool
	// Dedent applies to line ranges and sections.
	Dedent     bool
	Redirector Redirector
	Remote     *RemoteCache
}

// Location identifies resolved content before it is read.
type Location struct {
	// ID keys the visited set: the file actually read, or the URL.
	ID   string
	Path string
	// Source is the compiled source behind a redirected Path.
	Source string
	Kind   Kind
}

// Resolver locates and reads the content named by a Reference.
type Resolver struct {
	bases       []string
	restrict    bool
	urlDownload bool
	dedent      bool
	decoder     decoder
	redirector  Redirector
	remote      *RemoteCache
}

// NewResolver validates opts and builds a Resolver.
func NewResolver(opts ResolverOptions) (*Resolver, error) {
	dec, err := newDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	bases := make([]string, 0, len(opts.BasePaths))
	for _, b := range opts.BasePaths {
		abs, err := filepath.Abs(b)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid snippet base path").
				WithContext("path", b).Build()
		}
		bases = append(bases, abs)
	}
	remote := opts.Remote
	if remote == nil && opts.URLDownload {
		if remote, err = NewRemoteCache(RemoteOptions{Encoding: opts.Encoding}); err != nil {
			return nil, err
		}
	}
	return &Resolver{
		bases:       bases,
		restrict:    opts.Restrict,
		urlDownload: opts.URLDownload,
		dedent:      opts.Dedent,
		decoder:     dec,
		redirector:  opts.Redirector,
		remote:      remote,
	}, nil
}

// DocumentID returns the visited-set identity of a file on disk.
func DocumentID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Remote exposes the download cache so callers can purge it between builds.
func (r *Resolver) Remote() *RemoteCache {
	return r.remote
}

// Locate finds the content a reference names without reading it.
func (r *Resolver) Locate(ref Reference) (Location, error) {
	if r.urlDownload && ref.IsURL() {
		return Location{ID: ref.Path, Path: ref.Path, Kind: KindRemote}, nil
	}
	p := r.find(ref.Path)
	if p == "" {
		return Location{Kind: KindLocal}, missingSnippet(ref.Raw)
	}
	if !ref.Verbatim && r.redirector != nil && r.redirector.IsCompiled(p) {
		if out, ok := r.redirector.OutputPath(p); ok {
			return Location{ID: out, Path: out, Source: p, Kind: KindCompiled}, nil
		}
	}
	return Location{ID: p, Path: p, Kind: KindLocal}, nil
}

// Load reads located content and applies the reference's range or section.
// Whole local files lose one leading front-matter block.
func (r *Resolver) Load(ctx context.Context, loc Location, ref Reference) ([]string, error) {
	if loc.Kind == KindRemote {
		lines, err := r.remote.Fetch(ctx, loc.Path)
		if err != nil {
			return nil, err
		}
		switch {
		case ref.HasRange():
			return r.slice(lines, ref), nil
		case ref.Section != "":
			return ExtractSection(ref.Section, lines, SectionOptions{Dedent: r.dedent})
		}
		return lines, nil
	}

	lines, err := r.readFile(loc.Path)
	if err != nil {
		return nil, missingSnippet(ref.Raw)
	}
	switch {
	case ref.HasRange():
		return r.slice(lines, ref), nil
	case ref.Section != "":
		opts := SectionOptions{Dedent: r.dedent, Compiled: loc.Kind == KindCompiled, FallbackPath: loc.Source}
		if opts.Compiled {
			if src, err := r.readFile(loc.Source); err == nil {
				opts.Fallback = src
			}
		}
		return ExtractSection(ref.Section, lines, opts)
	}
	return frontmatter.SkipLines(lines), nil
}

func (r *Resolver) slice(lines []string, ref Reference) []string {
	out := sliceLines(lines, ref.Start, ref.End)
	if r.dedent {
		out = Dedent(out)
	}
	return out
}

func (r *Resolver) readFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.decoder.lines(data)
}

// find returns the first regular file matching rel under the base paths.
func (r *Resolver) find(rel string) string {
	for _, base := range r.bases {
		info, err := os.Stat(base)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			// A file base only matches a reference to that same file.
			candidate := join(filepath.Dir(base), rel)
			if ci, err := os.Stat(candidate); err == nil && os.SameFile(ci, info) {
				return candidate
			}
			continue
		}
		candidate := join(base, rel)
		if r.restrict && !within(base, candidate) {
			continue
		}
		if isRegular(candidate) {
			return candidate
		}
	}
	return ""
}

func join(base, rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(base, filepath.FromSlash(rel))
}

func within(base, candidate string) bool {
	rel, err := filepath.Rel(base, candidate)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func isRegular(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
