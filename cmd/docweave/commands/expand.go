package commands

import (
	"context"
	"os"

	"git.home.luguber.info/inful/docweave/internal/build"
	"git.home.luguber.info/inful/docweave/internal/config"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// ExpandCmd implements the 'expand' command.
type ExpandCmd struct {
	File       string `arg:"" help:"Markdown file to expand" type:"existingfile"`
	Output     string `short:"o" help:"Write to this file instead of stdout"`
	Permissive bool   `help:"Keep going when a snippet cannot be resolved"`
}

func (e *ExpandCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	out, err := build.ExpandFile(context.Background(), cfg, e.File, *cfg.Snippets.CheckPaths && !e.Permissive, g.Logger)
	if err != nil {
		return err
	}
	if e.Output == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}
	if err := os.WriteFile(e.Output, []byte(out), 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write expanded file").
			WithContext("path", e.Output).Build()
	}
	return nil
}
