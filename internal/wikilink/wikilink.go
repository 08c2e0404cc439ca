// Package wikilink resolves `[[Name]]` links against the alias index while a
// page renders, recording every resolved target for the link graph.
package wikilink

import (
	"log/slog"
	"path"
	"strings"
	"sync"

	wikilink "github.com/abhinav/goldmark-wikilink"
	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/docweave/internal/linkgraph"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/metrics"
)

// Index is the read side of the alias resolver.
type Index interface {
	Lookup(name string) ([]string, bool)
	LookupPath(path string) (string, bool)
	PathOf(renderedURL string) (string, bool)
}

// Broken describes a wikilink whose target could not be resolved.
type Broken struct {
	Page   string
	Target string
}

// Options configure a page resolver.
type Options struct {
	// ReportBroken logs unresolved links at warn level.
	ReportBroken bool
	Logger       *slog.Logger
	Recorder     metrics.Recorder
}

// PageResolver implements wikilink.Resolver for a single page.
type PageResolver struct {
	index Index
	page  string
	opts  Options

	mu      sync.Mutex
	matches []linkgraph.Match
	broken  []Broken
}

var _ wikilink.Resolver = (*PageResolver)(nil)

// NewPageResolver binds a resolver to page, a docs-relative source path.
func NewPageResolver(index Index, page string, opts Options) *PageResolver {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &PageResolver{index: index, page: page, opts: opts}
}

// Extender returns the goldmark extension wired to this resolver.
func (r *PageResolver) Extender() goldmark.Extender {
	return &wikilink.Extender{Resolver: r}
}

// ResolveWikilink returns the link destination for n. A nil destination makes
// the extension render the link text without an anchor.
func (r *PageResolver) ResolveWikilink(n *wikilink.Node) ([]byte, error) {
	target := strings.TrimSpace(string(n.Target))
	fragment := string(n.Fragment)

	if target == "" {
		if fragment == "" {
			return nil, nil
		}
		return []byte("#" + fragment), nil
	}

	m, ok := r.resolve(target)
	if !ok {
		r.mu.Lock()
		r.broken = append(r.broken, Broken{Page: r.page, Target: target})
		r.mu.Unlock()
		r.opts.Recorder.IncWikilink(false)
		if r.opts.ReportBroken {
			r.opts.Logger.Warn("Broken wikilink", logfields.Page(r.page), logfields.Target(target))
		}
		return nil, nil
	}

	r.mu.Lock()
	r.matches = append(r.matches, m)
	r.mu.Unlock()
	r.opts.Recorder.IncWikilink(true)

	dest := m.URL
	if fragment != "" {
		dest += "#" + fragment
	}
	return []byte(dest), nil
}

func (r *PageResolver) resolve(target string) (linkgraph.Match, bool) {
	if urls, ok := r.index.Lookup(target); ok && len(urls) > 0 {
		if len(urls) > 1 {
			r.opts.Logger.Warn("Ambiguous wikilink, using first page",
				logfields.Page(r.page), logfields.Target(target), logfields.Count(len(urls)))
		}
		p, _ := r.index.PathOf(urls[0])
		return linkgraph.Match{Name: target, Path: p, URL: urls[0]}, true
	}

	for _, candidate := range r.pathCandidates(target) {
		if u, ok := r.index.LookupPath(candidate); ok {
			return linkgraph.Match{Name: target, Path: candidate, URL: u}, true
		}
	}
	return linkgraph.Match{}, false
}

// pathCandidates lists docs-relative paths a target may name, relative to the
// page's directory first and to the docs root second.
func (r *PageResolver) pathCandidates(target string) []string {
	names := []string{target}
	if !strings.HasSuffix(target, ".md") {
		names = append(names, target+".md")
	}
	dir := path.Dir(r.page)
	var out []string
	for _, base := range []string{dir, "."} {
		for _, n := range names {
			var p string
			if strings.HasPrefix(n, "/") {
				p = path.Clean(strings.TrimPrefix(n, "/"))
			} else {
				p = path.Clean(path.Join(base, n))
			}
			if strings.HasPrefix(p, "../") || p == ".." {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// Matches returns the resolved links in document order.
func (r *PageResolver) Matches() []linkgraph.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]linkgraph.Match(nil), r.matches...)
}

// Broken returns the unresolved links in document order.
func (r *PageResolver) Broken() []Broken {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Broken(nil), r.broken...)
}
