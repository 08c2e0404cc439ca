// Package linkgraph accumulates the wikilinks found on rendered pages and
// turns them into the persisted graph and its diagrams.
package linkgraph

import "sync"

// Match is one resolved wikilink target.
type Match struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// ResultEntry records the outgoing wikilinks of one page.
type ResultEntry struct {
	// File is the page's site-relative URL.
	File    string  `json:"file"`
	Index   int     `json:"index"`
	Matches []Match `json:"matches"`
	// URL is the page's canonical URL.
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Graph is the ordered list of entries recorded during one build.
// It is safe for concurrent use.
type Graph struct {
	mu      sync.Mutex
	entries []ResultEntry
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{}
}

// Record appends an entry. Entries without matches are ignored; the return
// value reports whether the entry was kept.
func (g *Graph) Record(e ResultEntry) bool {
	if len(e.Matches) == 0 {
		return false
	}
	e.Matches = append([]Match(nil), e.Matches...)
	g.mu.Lock()
	g.entries = append(g.entries, e)
	g.mu.Unlock()
	return true
}

// Entries returns a snapshot of the recorded entries in recording order.
func (g *Graph) Entries() []ResultEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ResultEntry(nil), g.entries...)
}

// Len returns the number of recorded entries.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// Reset drops all entries. Called between builds.
func (g *Graph) Reset() {
	g.mu.Lock()
	g.entries = nil
	g.mu.Unlock()
}

// Backlinks returns the entries that link to the given URL.
func Backlinks(entries []ResultEntry, target string) []ResultEntry {
	var out []ResultEntry
	for _, e := range entries {
		for _, m := range e.Matches {
			if m.URL == target {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
