// Package graphstore persists the link graph of each build so backlinks can
// be queried after the build has finished.
package graphstore

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docweave/internal/alias"
	"git.home.luguber.info/inful/docweave/internal/linkgraph"
)

// Build is everything recorded for one build.
type Build struct {
	ID      string
	Started time.Time
	Pages   int
	Broken  int
	Nodes   map[string]alias.Node
	Entries []linkgraph.ResultEntry
}

// Summary describes a stored build.
type Summary struct {
	ID      string    `json:"id"`
	Started time.Time `json:"started"`
	Pages   int       `json:"pages"`
	Links   int       `json:"links"`
	Broken  int       `json:"broken"`
}

// Backlink is a page linking to the queried URL.
type Backlink struct {
	SourceURL  string `json:"source_url"`
	SourceName string `json:"source_name"`
	SourceFile string `json:"source_file"`
	// TargetName is the display name the source used for the link.
	TargetName string `json:"target_name"`
}

// Store defines link-graph persistence.
type Store interface {
	// SaveBuild stores a build's nodes and links.
	SaveBuild(ctx context.Context, b Build) error

	// Builds lists stored builds, newest first.
	Builds(ctx context.Context) ([]Summary, error)

	// Backlinks returns the pages of the newest build that link to url.
	Backlinks(ctx context.Context, url string) ([]Backlink, error)

	// Close closes the store and releases resources.
	Close() error
}

// BacklinksFrom answers a backlink query from an in-memory graph, for sites
// built without a store.
func BacklinksFrom(entries []linkgraph.ResultEntry, url string) []Backlink {
	var out []Backlink
	for _, e := range entries {
		for _, m := range e.Matches {
			if m.URL == url {
				out = append(out, Backlink{SourceURL: e.URL, SourceName: e.Name, SourceFile: e.File, TargetName: m.Name})
			}
		}
	}
	return out
}
