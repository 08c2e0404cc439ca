package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docweave/internal/build"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/server"
	"git.home.luguber.info/inful/docweave/internal/watch"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr       string `help:"Listen address (overrides serve.addr)"`
	NoWatch    bool   `name:"no-watch" help:"Serve without watching for changes"`
	Permissive bool   `help:"Keep going when a snippet cannot be resolved"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	addr := cfg.Serve.Addr
	if s.Addr != "" {
		addr = s.Addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, reg := newBuildService(cfg, g.Logger)
	state := &server.BuildState{}
	rebuild := func(ctx context.Context) {
		g.Logger.Info("Rebuilding site")
		result, err := svc.Run(ctx, build.BuildRequest{
			Config:  cfg,
			Options: build.BuildOptions{Permissive: s.Permissive},
		})
		state.Record(result, err)
		if err != nil {
			g.Logger.Error("Build failed", logfields.Error(err))
		}
	}
	rebuild(ctx)

	store, err := build.DefaultStoreFactory(cfg)
	if err != nil {
		g.Logger.Warn("Graph store unavailable; backlinks served from graph.json", logfields.Error(err))
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}
	srv := server.New(server.Options{Config: cfg, Store: store, Registry: reg, State: state, Logger: g.Logger})

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error { return srv.ListenAndServe(gctx, addr) })
	if !s.NoWatch {
		opts, err := watch.ConfigOptions(cfg)
		if err != nil {
			return err
		}
		opts.Rebuild = rebuild
		opts.Logger = g.Logger
		grp.Go(func() error { return watch.Run(gctx, opts) })
	}
	g.Logger.Info("Preview ready", slog.String("addr", addr))
	return grp.Wait()
}
