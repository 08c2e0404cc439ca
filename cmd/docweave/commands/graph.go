package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"git.home.luguber.info/inful/docweave/internal/config"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/linkgraph"
)

// GraphCmd implements the 'graph' command.
type GraphCmd struct {
	Format string `short:"f" help:"Output format" enum:"mermaid,dot,json,svg" default:"mermaid"`
}

func (c *GraphCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	doc, err := linkgraph.ReadGraph(cfg.CachePath())
	if err != nil {
		return err
	}
	out, err := renderGraph(context.Background(), c.Format, doc)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func renderGraph(ctx context.Context, format string, doc linkgraph.Document) ([]byte, error) {
	switch format {
	case "mermaid":
		return []byte(linkgraph.Mermaid(doc.Graph)), nil
	case "dot":
		return []byte(linkgraph.DOT(doc.Graph)), nil
	case "svg":
		return linkgraph.RenderSVG(ctx, linkgraph.DOT(doc.Graph))
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode link graph").Build()
		}
		return append(data, '\n'), nil
	default:
		return nil, ferrors.ValidationError(fmt.Sprintf("unknown graph format %q", format)).Build()
	}
}
