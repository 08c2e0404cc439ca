package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docweave/internal/alias"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/events"
	"git.home.luguber.info/inful/docweave/internal/graphstore"
	"git.home.luguber.info/inful/docweave/internal/linkgraph"
	"git.home.luguber.info/inful/docweave/internal/snippet"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

type capturePublisher struct {
	got []events.BrokenWikilinkEvent
}

func (c *capturePublisher) PublishBrokenWikilinks(_ context.Context, evts []events.BrokenWikilinkEvent) error {
	c.got = append(c.got, evts...)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func newTestSite(t *testing.T) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "docs/index.md", `---
title: Home
mermaid_wikilinks: true
---
# Welcome

See [[Guide]] and [[Missing]].

-8<- "includes/snip.md:core"
`)
	writeFile(t, root, "docs/guide.md", `---
alias: Guide
---
# The Guide

Back to [[Home]].

!!! todo
    Expand this page.
`)
	writeFile(t, root, "docs/img/logo.png", "png")
	writeFile(t, root, "includes/snip.md", `intro
-8<- [start: core]
transcluded body
-8<- [end: core]
outro
`)
	cfg := config.Default(root)
	cfg.Build.Concurrency = 2
	cfg.Store.SQLitePath = ".hooks/graph.db"
	return cfg, root
}

func newTestService(pub *capturePublisher) *DefaultBuildService {
	return NewBuildService().
		WithLogger(slog.New(slog.DiscardHandler)).
		WithPublisherFactory(func(*config.Config, *slog.Logger) (events.Publisher, error) { return pub, nil })
}

func TestRun_EndToEnd(t *testing.T) {
	cfg, root := newTestSite(t)
	pub := &capturePublisher{}

	res, err := newTestService(pub).Run(t.Context(), BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, BuildStatusWarning, res.Status)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 1, res.Assets)
	assert.Equal(t, 2, res.Links())
	require.Len(t, res.Todos, 1)
	assert.Equal(t, "Expand this page.", res.Todos[0].Text)

	index := readFile(t, root, "site/index.html")
	assert.Contains(t, index, `<a href="/guide.html">Guide</a>`)
	assert.Contains(t, index, "transcluded body")
	assert.NotContains(t, index, "intro")
	assert.NotContains(t, index, "[start: core]")
	assert.Contains(t, index, "(Wiki) links on this page")
	assert.Contains(t, index, `<pre class="mermaid" >`)
	assert.NotContains(t, index, "<!-- list_wikilinks -->")

	guide := readFile(t, root, "site/guide.html")
	assert.Contains(t, guide, `<a href="/index.html">Home</a>`)
	assert.NotContains(t, guide, "pre class=\"mermaid\"")
	assert.NotContains(t, guide, "Expand this page")
	assert.FileExists(t, filepath.Join(root, "site", "img", "logo.png"))

	cache := filepath.Join(root, ".hooks")
	doc, err := linkgraph.ReadGraph(cache)
	require.NoError(t, err)
	assert.Len(t, doc.Graph, 2)
	assert.FileExists(t, filepath.Join(cache, linkgraph.DiagramsDir, linkgraph.SiteDiagram))
	assert.FileExists(t, filepath.Join(cache, linkgraph.DiagramsDir, "index.mmd"))

	aliases, err := alias.ReadAliases(cache)
	require.NoError(t, err)
	assert.Equal(t, []string{"/guide.html"}, aliases.URLFor["Guide"])
	assert.Equal(t, []string{"/index.html"}, aliases.URLFor["Home"])

	require.Len(t, pub.got, 1)
	assert.Equal(t, "Missing", pub.got[0].Target)
	assert.Equal(t, res.ID, pub.got[0].BuildID)

	store, err := graphstore.NewSQLiteStore(filepath.Join(cache, "graph.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	back, err := store.Backlinks(t.Context(), "/guide.html")
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, "/index.html", back[0].SourceURL)
}

func TestRun_GraphOrderIsStable(t *testing.T) {
	root := t.TempDir()
	const n = 30
	for i := range n {
		writeFile(t, root, fmt.Sprintf("docs/p%02d.md", i),
			fmt.Sprintf("---\nalias: P%02d\n---\n# Page %d\n\nNext is [[P%02d]].\n", i, i, (i+1)%n))
	}
	cfg := config.Default(root)
	cfg.Build.Concurrency = 8
	cache := filepath.Join(root, ".hooks")
	svc := newTestService(&capturePublisher{})

	var graphs, diagrams []string
	for range 2 {
		_, err := svc.Run(t.Context(), BuildRequest{Config: cfg})
		require.NoError(t, err)
		graphs = append(graphs, readFile(t, cache, linkgraph.GraphFile))
		diagrams = append(diagrams, readFile(t, cache, filepath.Join(linkgraph.DiagramsDir, linkgraph.SiteDiagram)))
	}
	assert.Equal(t, graphs[0], graphs[1])
	assert.Equal(t, diagrams[0], diagrams[1])

	doc, err := linkgraph.ReadGraph(cache)
	require.NoError(t, err)
	require.Len(t, doc.Graph, n)
	for i, e := range doc.Graph {
		assert.Equal(t, fmt.Sprintf("p%02d.html", i), e.File)
	}
}

func TestRun_PageMermaidSettingOverridesSite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/a.md", "---\nalias: A\nmermaid_wikilinks: false\n---\n# A\n\nSee [[B]].\n")
	writeFile(t, root, "docs/b.md", "---\nalias: B\n---\n# B\n\nSee [[A]].\n")
	cfg := config.Default(root)
	cfg.Wikilinks.Mermaid = true

	_, err := newTestService(&capturePublisher{}).Run(t.Context(), BuildRequest{Config: cfg})
	require.NoError(t, err)

	assert.NotContains(t, readFile(t, root, "site/a.html"), `<pre class="mermaid" >`)
	assert.Contains(t, readFile(t, root, "site/b.html"), `<pre class="mermaid" >`)
}

func TestRun_StrictSnippetFailure(t *testing.T) {
	cfg, root := newTestSite(t)
	writeFile(t, root, "docs/broken.md", "-8<- \"includes/nope.md\"\n")

	res, err := newTestService(&capturePublisher{}).Run(t.Context(), BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.Equal(t, BuildStatusFailed, res.Status)
	assert.True(t, errors.Is(err, ErrPage))
	assert.True(t, errors.Is(err, snippet.ErrMissingSnippet))
}

func TestRun_PermissiveSnippetFailure(t *testing.T) {
	cfg, root := newTestSite(t)
	writeFile(t, root, "docs/broken.md", "# Broken\n\n-8<- \"includes/nope.md\"\n\nstill here\n")

	res, err := newTestService(&capturePublisher{}).Run(t.Context(), BuildRequest{
		Config:  cfg,
		Options: BuildOptions{Permissive: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pages)
	assert.Contains(t, readFile(t, root, "site/broken.html"), "still here")
}

func TestRun_CompiledPages(t *testing.T) {
	cfg, root := newTestSite(t)
	cfg.Compiled.Enabled = true
	writeFile(t, root, "docs/lang/intro.juvix.md", "# Source\n\n-8<- [start: ex]\nsource only\n-8<- [end: ex]\n")
	writeFile(t, root, ".hooks/generated/lang/intro.md", "# Intro\n\ngenerated body\n")
	writeFile(t, root, "docs/uses.md", "# Uses\n\n-8<- \"docs/lang/intro.juvix.md:ex\"\n\n[intro](lang/intro.juvix.md)\n")

	res, err := newTestService(&capturePublisher{}).Run(t.Context(), BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Pages)

	intro := readFile(t, root, "site/lang/intro.html")
	assert.Contains(t, intro, "generated body")

	uses := readFile(t, root, "site/uses.html")
	assert.Contains(t, uses, "source only")
	assert.Contains(t, uses, `href="lang/intro.html"`)
}

func TestRun_RemoveCacheKeepsGenerated(t *testing.T) {
	cfg, root := newTestSite(t)
	cfg.Build.RemoveCache = true
	writeFile(t, root, ".hooks/stale.json", "{}")
	writeFile(t, root, ".hooks/generated/keep.md", "x")

	_, err := newTestService(&capturePublisher{}).Run(t.Context(), BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(root, ".hooks", "stale.json"))
	assert.FileExists(t, filepath.Join(root, ".hooks", "generated", "keep.md"))
}

func TestRun_Cancelled(t *testing.T) {
	cfg, _ := newTestSite(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	res, err := newTestService(&capturePublisher{}).Run(ctx, BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.Equal(t, BuildStatusCancelled, res.Status)
}

func TestRun_NilConfig(t *testing.T) {
	res, err := NewBuildService().Run(t.Context(), BuildRequest{})
	require.Error(t, err)
	assert.Equal(t, BuildStatusFailed, res.Status)
}

func TestExpandFile(t *testing.T) {
	cfg, root := newTestSite(t)
	out, err := ExpandFile(t.Context(), cfg, filepath.Join(root, "docs", "index.md"), true, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "transcluded body")
	assert.Contains(t, out, "title: Home")
}
