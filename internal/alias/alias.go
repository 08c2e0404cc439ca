// Package alias maintains the display-name index used to resolve wikilinks.
//
// Names come from the navigation tree, from `alias` front matter and, for
// pages declaring no alias, from the inferred page title. The index is built
// once per build before any page renders and is read-only afterwards.
package alias

import (
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"

	"git.home.luguber.info/inful/docweave/internal/frontmatter"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/nav"
)

// Node is a page registered from the navigation tree.
type Node struct {
	Index int      `json:"index"`
	Page  NodePage `json:"page"`
}

// NodePage holds the names and docs-relative path of a Node.
type NodePage struct {
	Names []string `json:"names"`
	Path  string   `json:"path"`
}

// Page is what the resolver needs to know about one documentation file.
type Page struct {
	// Path is relative to the docs dir, slash-separated, ending in `.md`.
	Path  string
	Alias frontmatter.AliasValue
	// Title is the inferred title, already unquoted.
	Title string
}

// Resolver maps display names to page URLs and back.
type Resolver struct {
	siteURL string
	logger  *slog.Logger

	mu         sync.RWMutex
	nodes      map[string]*Node
	aliasesFor map[string][]string
	urlFor     map[string][]string
	byPath     map[string]string
}

// New creates an empty Resolver for a site rooted at siteURL.
func New(siteURL string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		siteURL:    siteURL,
		logger:     logger,
		nodes:      map[string]*Node{},
		aliasesFor: map[string][]string{},
		urlFor:     map[string][]string{},
		byPath:     map[string]string{},
	}
}

// URL resolves a docs-relative page path against the site URL.
func (r *Resolver) URL(path string) string {
	return Join(r.siteURL, path)
}

// Join resolves ref against base the way a browser resolves a relative link.
func Join(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return base + strings.TrimPrefix(ref, "./")
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return base + strings.TrimPrefix(ref, "./")
	}
	joined := b.ResolveReference(rel).String()
	if unescaped, err := url.PathUnescape(joined); err == nil {
		return unescaped
	}
	return joined
}

// HTML rewrites a `.md` URL to its rendered `.html` form.
func HTML(u string) string {
	if strings.HasSuffix(u, ".md") {
		return strings.TrimSuffix(u, ".md") + ".html"
	}
	return u
}

// Markdown reverses HTML.
func Markdown(u string) string {
	if strings.HasSuffix(u, ".html") {
		return strings.TrimSuffix(u, ".html") + ".md"
	}
	return u
}

// SeedNav registers navigation pairs. Each new URL becomes a node with the
// next index; labels accumulate on the node and in both name maps.
func (r *Resolver) SeedNav(pairs []nav.Pair) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pairs {
		path := strings.TrimPrefix(p.Path, "./")
		u := r.URL(path)
		n, ok := r.nodes[u]
		if !ok {
			n = &Node{Index: len(r.nodes), Page: NodePage{Path: path}}
			r.nodes[u] = n
		}
		n.Page.Names = appendUnique(n.Page.Names, p.Label)
		r.register(p.Label, u)
		r.byPath[path] = u
	}
}

// AddPage registers a page's declared aliases, or its inferred title when it
// declares none. A title already claimed by any page is not registered.
func (r *Resolver) AddPage(p Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.URL(p.Path)
	r.byPath[p.Path] = u

	if p.Alias.Declared() {
		for _, name := range p.Alias.Names() {
			if existing, ok := r.urlFor[name]; ok && !slices.Contains(existing, u) {
				r.logger.Warn("Alias is claimed by more than one page",
					logfields.Alias(name), logfields.Page(p.Path), logfields.URL(existing[0]))
			}
			r.register(name, u)
		}
		return
	}

	if p.Title == "" {
		return
	}
	if existing, ok := r.urlFor[p.Title]; ok {
		if !slices.Contains(existing, u) {
			r.logger.Info("Title already claimed, not registered as alias",
				logfields.Alias(p.Title), logfields.Page(p.Path), logfields.URL(existing[0]))
		}
		return
	}
	r.register(p.Title, u)
}

func (r *Resolver) register(name, u string) {
	r.urlFor[name] = appendUnique(r.urlFor[name], u)
	r.aliasesFor[u] = appendUnique(r.aliasesFor[u], name)
}

// Lookup returns the rendered URLs registered for a display name.
func (r *Resolver) Lookup(name string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	urls, ok := r.urlFor[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = HTML(u)
	}
	return out, true
}

// LookupPath returns the rendered URL of a known docs-relative page path.
func (r *Resolver) LookupPath(path string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byPath[strings.TrimPrefix(path, "./")]
	return HTML(u), ok
}

// PathOf returns the docs-relative path behind a rendered URL.
func (r *Resolver) PathOf(renderedURL string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target := Markdown(renderedURL)
	for p, u := range r.byPath {
		if u == target {
			return p, true
		}
	}
	return "", false
}

// Names returns the display names registered for a page URL (either suffix).
func (r *Resolver) Names(pageURL string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.aliasesFor[Markdown(pageURL)]...)
}

// Node returns the node registered for a page URL (either suffix).
func (r *Resolver) Node(pageURL string) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[Markdown(pageURL)]
	if !ok {
		return Node{}, false
	}
	cp := *n
	cp.Page.Names = append([]string(nil), n.Page.Names...)
	return cp, true
}

// Nodes returns a copy of all nodes keyed by `.md` URL.
func (r *Resolver) Nodes() map[string]Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Node, len(r.nodes))
	for u, n := range r.nodes {
		cp := *n
		cp.Page.Names = append([]string(nil), n.Page.Names...)
		out[u] = cp
	}
	return out
}

// Aliases returns copies of both name maps, with url_for URLs in rendered form.
func (r *Resolver) Aliases() (aliasesFor, urlFor map[string][]string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	aliasesFor = make(map[string][]string, len(r.aliasesFor))
	for u, names := range r.aliasesFor {
		aliasesFor[u] = append([]string(nil), names...)
	}
	urlFor = make(map[string][]string, len(r.urlFor))
	for name, urls := range r.urlFor {
		rendered := make([]string, len(urls))
		for i, u := range urls {
			rendered[i] = HTML(u)
		}
		urlFor[name] = rendered
	}
	return aliasesFor, urlFor
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
