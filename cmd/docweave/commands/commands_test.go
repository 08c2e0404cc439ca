package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/graphstore"
	"git.home.luguber.info/inful/docweave/internal/linkgraph"
)

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "docweave.yaml")
	require.NoError(t, config.Init(cfgPath, false))

	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "guide"), 0o750))
	files := map[string]string{
		"index.md":         "# Home\n\nSee [[Install]].\n",
		"guide/install.md": "---\nalias: Install\n---\n# Installing\n\nBack to [[Home]].\n",
		"guide/usage.md":   "# Usage\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(docs, name), []byte(body), 0o600))
	}
	return cfgPath
}

func newGlobal() *Global {
	return &Global{Logger: slog.New(slog.DiscardHandler)}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv(EnvLogLevel, "WARN")
	assert.Equal(t, slog.LevelWarn, parseLogLevel(false))
	t.Setenv(EnvLogLevel, "")
	assert.Equal(t, slog.LevelInfo, parseLogLevel(false))
}

func TestKongParsesCommands(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Bind(newGlobal()))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"graph", "--format", "dot"})
	require.NoError(t, err)
	assert.Equal(t, "graph", ctx.Command())
	assert.Equal(t, "dot", cli.Graph.Format)

	_, err = parser.Parse([]string{"graph", "--format", "png"})
	require.Error(t, err)

	ctx, err = parser.Parse([]string{"backlinks", "/guide.html"})
	require.NoError(t, err)
	assert.Equal(t, "backlinks <url>", ctx.Command())
	assert.Equal(t, "/guide.html", cli.Backlinks.URL)
}

func TestBuildThenQuery(t *testing.T) {
	cfgPath := writeProject(t)
	root := &CLI{Config: cfgPath}

	require.NoError(t, (&BuildCmd{}).Run(newGlobal(), root))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.OutputPath(), "index.html"))

	doc, err := linkgraph.ReadGraph(cfg.CachePath())
	require.NoError(t, err)
	require.NotEmpty(t, doc.Graph)

	links, err := queryBacklinks(t.Context(), cfg, "https://example.com/docs/guide/install.html")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "Home", links[0].SourceName)
}

func TestRenderGraph(t *testing.T) {
	doc := linkgraph.Document{Graph: []linkgraph.ResultEntry{{
		File: "index.html", URL: "/index.html", Name: "Home",
		Matches: []linkgraph.Match{{Name: "Guide", Path: "guide.md", URL: "/guide.html"}},
	}}}

	out, err := renderGraph(t.Context(), "mermaid", doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "flowchart TD")

	out, err = renderGraph(t.Context(), "dot", doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "digraph links")

	out, err = renderGraph(t.Context(), "json", doc)
	require.NoError(t, err)
	var back linkgraph.Document
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, doc, back)

	_, err = renderGraph(t.Context(), "png", doc)
	require.Error(t, err)
}

func TestPrintBacklinks(t *testing.T) {
	var buf bytes.Buffer
	printBacklinks(&buf, "/x.html", nil)
	assert.Equal(t, "No pages link to /x.html\n", buf.String())

	buf.Reset()
	printBacklinks(&buf, "/x.html", []graphstore.Backlink{{SourceURL: "/a.html", SourceName: "A", TargetName: "X"}})
	assert.Equal(t, "/a.html\tA\t[[X]]\n", buf.String())
}

func TestExpandWritesFile(t *testing.T) {
	cfgPath := writeProject(t)
	dir := filepath.Dir(cfgPath)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "includes"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "includes", "note.md"), []byte("shared note\n"), 0o600))
	page := filepath.Join(dir, "docs", "snip.md")
	require.NoError(t, os.WriteFile(page, []byte("# Snip\n\n--8<-- \"note.md\"\n"), 0o600))

	out := filepath.Join(dir, "expanded.md")
	require.NoError(t, (&ExpandCmd{File: page, Output: out}).Run(newGlobal(), &CLI{Config: cfgPath}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shared note")
	assert.NotContains(t, string(data), "--8<--")
}

func TestInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	cmd := &InitCmd{Output: dir}
	require.NoError(t, cmd.Run(newGlobal(), &CLI{}))
	require.Error(t, cmd.Run(newGlobal(), &CLI{}))

	cmd.Force = true
	require.NoError(t, cmd.Run(newGlobal(), &CLI{}))
}
