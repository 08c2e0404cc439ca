package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/docweave/internal/build"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/graphstore"
	"git.home.luguber.info/inful/docweave/internal/linkgraph"
)

// BacklinksCmd implements the 'backlinks' command.
type BacklinksCmd struct {
	URL string `arg:"" help:"Rendered page URL, e.g. /guide/install.html"`
}

func (b *BacklinksCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	links, err := queryBacklinks(context.Background(), cfg, b.URL)
	if err != nil {
		return err
	}
	printBacklinks(os.Stdout, b.URL, links)
	return nil
}

// queryBacklinks prefers the graph store and falls back to graph.json.
func queryBacklinks(ctx context.Context, cfg *config.Config, url string) ([]graphstore.Backlink, error) {
	store, err := build.DefaultStoreFactory(cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
		return store.Backlinks(ctx, url)
	}
	doc, err := linkgraph.ReadGraph(cfg.CachePath())
	if err != nil {
		return nil, err
	}
	return graphstore.BacklinksFrom(doc.Graph, url), nil
}

func printBacklinks(w io.Writer, url string, links []graphstore.Backlink) {
	if len(links) == 0 {
		_, _ = fmt.Fprintf(w, "No pages link to %s\n", url)
		return
	}
	for _, l := range links {
		_, _ = fmt.Fprintf(w, "%s\t%s\t[[%s]]\n", l.SourceURL, l.SourceName, l.TargetName)
	}
}
