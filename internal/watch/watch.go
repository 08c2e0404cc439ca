package watch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docweave/internal/build"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/discovery"
)

// Options configures a watch session.
type Options struct {
	Roots  []string
	Filter Filter
	// Quiet is the debounce window. Zero means DefaultQuietWindow.
	Quiet time.Duration
	// RefreshInterval enables a periodic rebuild when positive.
	RefreshInterval time.Duration
	// Rebuild runs one build. It is never called concurrently.
	Rebuild func(ctx context.Context)
	Logger  *slog.Logger
}

// Run watches opts.Roots and rebuilds on change until ctx is done.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := NewWatcher(opts.Roots, opts.Filter, logger)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	logger.Info("Watching for changes", slog.Int("dirs", len(w.WatchList())))

	worker := NewWorker(opts.Rebuild)
	deb := NewDebouncer(opts.Quiet, worker.Request)
	defer deb.Stop()

	if opts.RefreshInterval > 0 {
		sched, err := NewScheduler(logger)
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleRefresh(opts.RefreshInterval, worker.Request); err != nil {
			return err
		}
		sched.Start()
		defer func() { _ = sched.Stop(context.WithoutCancel(ctx)) }()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return w.Run(gctx, deb.Trigger)
	})
	return g.Wait()
}

// ConfigOptions derives the watched roots and filter from cfg: the docs dir,
// the snippet search path, and the compiled output dir when enabled. The
// site output and the cache dir are skipped, as are paths the docs dir's
// ignore files exclude.
func ConfigOptions(cfg *config.Config) (Options, error) {
	docs := cfg.DocsPath()
	roots := []string{docs}
	paths, err := build.BasePaths(cfg)
	if err != nil {
		return Options{}, err
	}
	roots = append(roots, paths...)

	filter := Filter{Skip: []string{cfg.OutputPath(), cfg.CachePath()}, IgnoreRoot: docs}
	if matcher, err := discovery.LoadIgnore(docs); err == nil {
		filter.Ignore = matcher
	}
	if cfg.Compiled.Enabled {
		out := cfg.Path(cfg.Compiled.OutputDir)
		roots = append(roots, out)
		filter.Allow = append(filter.Allow, out)
	}
	return Options{
		Roots:           dedupe(roots),
		Filter:          filter,
		RefreshInterval: cfg.Serve.RefreshInterval,
	}, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
