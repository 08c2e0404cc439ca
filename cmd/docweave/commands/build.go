package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docweave/internal/build"
	"git.home.luguber.info/inful/docweave/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Override site.output_dir"`
	Permissive  bool   `help:"Keep going when a snippet cannot be resolved"`
	Concurrency int    `help:"Pages rendered in parallel (0 uses build.concurrency)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Site.OutputDir = b.Output
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, _ := newBuildService(cfg, g.Logger)
	result, err := svc.Run(ctx, build.BuildRequest{
		Config:  cfg,
		Options: build.BuildOptions{Permissive: b.Permissive, Concurrency: b.Concurrency},
	})
	if result != nil {
		printSummary(os.Stdout, result)
	}
	return err
}

func printSummary(w io.Writer, r *build.BuildResult) {
	_, _ = fmt.Fprintf(w, "Build %s: %s\n", r.ID, r.Status)
	_, _ = fmt.Fprintf(w, "  pages: %d  assets: %d  links: %d  broken: %d  todos: %d\n",
		r.Pages, r.Assets, r.Links(), len(r.Broken), len(r.Todos))
	for _, b := range r.Broken {
		_, _ = fmt.Fprintf(w, "  broken: %s -> [[%s]]\n", b.Page, b.Target)
	}
	for _, s := range r.StaleCompiled {
		_, _ = fmt.Fprintf(w, "  stale compiled output: %s\n", s)
	}
	_, _ = fmt.Fprintf(w, "  output: %s (%s)\n", r.OutputPath, r.Duration.Round(1e6))
}
