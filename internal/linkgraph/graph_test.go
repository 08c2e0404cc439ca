package linkgraph

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []ResultEntry {
	return []ResultEntry{
		{
			File: "index.html", Index: 0, URL: "/index.html", Name: "Home",
			Matches: []Match{
				{Name: "Guide", Path: "guide/a.md", URL: "/guide/a.html"},
				{Name: "Say \"hi\"", Path: "hi.md", URL: "/hi.html"},
			},
		},
		{
			File: "guide/a.html", Index: 1, URL: "/guide/a.html", Name: "Guide",
			Matches: []Match{{Name: "Home", Path: "index.md", URL: "/index.html"}},
		},
	}
}

func TestGraph_RecordSkipsEmpty(t *testing.T) {
	g := New()
	assert.False(t, g.Record(ResultEntry{File: "a.html"}))
	assert.True(t, g.Record(sampleEntries()[0]))
	assert.Equal(t, 1, g.Len())

	g.Reset()
	assert.Equal(t, 0, g.Len())
}

func TestGraph_ConcurrentRecord(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Record(sampleEntries()[1])
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, g.Len())
}

func TestMermaid(t *testing.T) {
	m := Mermaid(sampleEntries())
	assert.True(t, strings.HasPrefix(m, "flowchart TD\n"))
	assert.Contains(t, m, `p0["Home"]`)
	assert.Contains(t, m, `p1["Guide"]`)
	assert.Contains(t, m, `p2["Say #quot;hi#quot;"]`)
	assert.Contains(t, m, `p0 -->|"Guide"| p1`)
	assert.Contains(t, m, `p1 -->|"Home"| p0`)
	assert.Equal(t, 3, strings.Count(m, "-->"))
}

func TestDOT(t *testing.T) {
	dot := DOT(sampleEntries())
	assert.True(t, strings.HasPrefix(dot, "digraph links {"))
	assert.Contains(t, dot, `"p0" -> "p1" [label="Guide"];`)
	assert.Contains(t, dot, `"p1" [label="Guide", URL="/guide/a.html"];`)
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), DOT(sampleEntries()))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestBacklinks(t *testing.T) {
	got := Backlinks(sampleEntries(), "/index.html")
	require.Len(t, got, 1)
	assert.Equal(t, "Guide", got[0].Name)
	assert.Empty(t, Backlinks(sampleEntries(), "/nowhere.html"))
}

func TestPageDiagramName(t *testing.T) {
	assert.Equal(t, "guide_a.mmd", PageDiagramName("guide/a.html"))
	assert.Equal(t, "win_path.mmd", PageDiagramName(`win\path.html`))
	assert.Equal(t, "guide_.mmd", PageDiagramName("guide/"))
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	g := New()
	for _, e := range sampleEntries() {
		g.Record(e)
	}

	require.NoError(t, g.WriteGraph(dir))
	doc, err := ReadGraph(dir)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries(), doc.Graph)

	require.NoError(t, g.WriteSiteDiagram(dir))
	data, err := os.ReadFile(filepath.Join(dir, DiagramsDir, SiteDiagram))
	require.NoError(t, err)
	assert.Equal(t, Mermaid(sampleEntries()), string(data))

	m, err := WritePageDiagram(dir, sampleEntries()[1])
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(dir, DiagramsDir, "guide_a.mmd"))
	require.NoError(t, err)
	assert.Equal(t, m, string(data))

	require.NoError(t, g.WriteSiteDOT(context.Background(), dir, false))
	assert.FileExists(t, filepath.Join(dir, DiagramsDir, SiteDOT))
	assert.NoFileExists(t, filepath.Join(dir, DiagramsDir, SiteSVG))
}

func TestWriteGraph_EmptyIsArray(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, New().WriteGraph(dir))
	data, err := os.ReadFile(filepath.Join(dir, GraphFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"graph": []`)
}
