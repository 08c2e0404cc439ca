package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/discovery"
)

func TestFilterIgnored(t *testing.T) {
	f := Filter{
		Skip:  []string{"/p/site", "/p/.hooks"},
		Allow: []string{"/p/.hooks/generated"},
	}

	assert.True(t, f.Ignored("/p/docs/.hidden.md"))
	assert.True(t, f.Ignored("/p/docs/page.md~"))
	assert.True(t, f.Ignored("/p/docs/.page.md.swp"))
	assert.True(t, f.Ignored("/p/docs/#page.md#"))
	assert.True(t, f.Ignored("/p/site/index.html"))
	assert.True(t, f.Ignored("/p/.hooks/nodes.json"))
	assert.False(t, f.Ignored("/p/.hooks/generated/a.md"))
	assert.False(t, f.Ignored("/p/docs/page.md"))
	assert.False(t, f.Ignored("/p/sitemap.md"))
}

func TestFilterIgnoreFile(t *testing.T) {
	f := Filter{
		Ignore:     gitignore.NewMatcher(discovery.ParsePatterns([]byte("drafts/\n*.tmp\n"))),
		IgnoreRoot: "/p/docs",
	}

	assert.True(t, f.Ignored("/p/docs/notes.tmp"))
	assert.True(t, f.skipDir("/p/docs/drafts"))
	assert.False(t, f.Ignored("/p/docs/guide.md"))
	assert.False(t, f.Ignored("/p/includes/notes.tmp"))
}

func TestWorkerCoalescesRequests(t *testing.T) {
	var runs atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	w := NewWorker(func(context.Context) {
		runs.Add(1)
		started <- struct{}{}
		<-release
	})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go w.Run(ctx)

	w.Request()
	<-started
	require.True(t, w.Running())

	// Several requests while busy collapse into one follow-up.
	for range 5 {
		w.Request()
		time.Sleep(5 * time.Millisecond)
	}
	release <- struct{}{}
	<-started
	release <- struct{}{}

	require.Eventually(t, func() bool { return !w.Running() }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
}

func TestDebouncerFiresOnce(t *testing.T) {
	out := make(chan struct{}, 2)
	d := NewDebouncer(20*time.Millisecond, func() { out <- struct{}{} })
	for range 10 {
		d.Trigger()
	}
	select {
	case <-out:
	case <-time.After(time.Second):
		t.Fatal("debouncer never fired")
	}
	select {
	case <-out:
		t.Fatal("debouncer fired twice")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestRunRebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "sub"), 0o750))

	var builds atomic.Int32
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			Roots:   []string{docs},
			Quiet:   20 * time.Millisecond,
			Rebuild: func(context.Context) { builds.Add(1) },
			Logger:  slog.New(slog.DiscardHandler),
		})
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(docs, "sub", "page.md"), []byte("# Page\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(docs, ".page.md.swp"), []byte("x"), 0o600))

	require.Eventually(t, func() bool { return builds.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRunPeriodicRefresh(t *testing.T) {
	docs := t.TempDir()

	var builds, running, overlaps atomic.Int32
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			Roots:           []string{docs},
			RefreshInterval: 20 * time.Millisecond,
			Rebuild: func(context.Context) {
				if running.Add(1) > 1 {
					overlaps.Add(1)
				}
				time.Sleep(60 * time.Millisecond)
				running.Add(-1)
				builds.Add(1)
			},
			Logger: slog.New(slog.DiscardHandler),
		})
	}()

	require.Eventually(t, func() bool { return builds.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, overlaps.Load(), "periodic refresh must not start a build while one is running")
}

func TestConfigOptions(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default(root)
	cfg.Compiled.Enabled = true
	cfg.Snippets.AutoBaseDirs = false

	opts, err := ConfigOptions(cfg)
	require.NoError(t, err)

	assert.Contains(t, opts.Roots, cfg.DocsPath())
	assert.Contains(t, opts.Roots, cfg.Path(cfg.Compiled.OutputDir))
	assert.Contains(t, opts.Filter.Skip, cfg.OutputPath())
	assert.Contains(t, opts.Filter.Allow, cfg.Path(cfg.Compiled.OutputDir))
	assert.False(t, opts.Filter.Ignored(filepath.Join(cfg.Path(cfg.Compiled.OutputDir), "a.md")))
	assert.True(t, opts.Filter.Ignored(filepath.Join(cfg.CachePath(), "graph.json")))
}
