package linkgraph

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// Artifact names inside the cache dir.
const (
	GraphFile   = "graph.json"
	DiagramsDir = "page_link_diags"
	SiteDiagram = "graph.mmd"
	SiteDOT     = "graph.dot"
	SiteSVG     = "graph.svg"
)

// Document is the on-disk form of graph.json.
type Document struct {
	Graph []ResultEntry `json:"graph"`
}

// WriteGraph replaces dir/graph.json with the recorded entries.
func (g *Graph) WriteGraph(dir string) error {
	entries := g.Entries()
	if entries == nil {
		entries = []ResultEntry{}
	}
	data, err := json.MarshalIndent(Document{Graph: entries}, "", "  ")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode link graph").Build()
	}
	return writeFile(filepath.Join(dir, GraphFile), append(data, '\n'))
}

// ReadGraph loads a graph.json written by WriteGraph.
func ReadGraph(dir string) (Document, error) {
	path := filepath.Join(dir, GraphFile)
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, ferrors.NewError(ferrors.CategoryNotFound, "link graph not built yet").
				WithContext("path", path).Build()
		}
		return doc, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read link graph").
			WithContext("path", path).Build()
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, ferrors.WrapError(err, ferrors.CategoryValidation, "corrupt link graph").
			WithContext("path", path).Build()
	}
	return doc, nil
}

// WriteSiteDiagram writes the whole-site mermaid diagram.
func (g *Graph) WriteSiteDiagram(dir string) error {
	return writeFile(filepath.Join(dir, DiagramsDir, SiteDiagram), []byte(Mermaid(g.Entries())))
}

// WriteSiteDOT writes the whole-site DOT graph and, when svg is set, its SVG
// rendering next to it.
func (g *Graph) WriteSiteDOT(ctx context.Context, dir string, svg bool) error {
	dot := DOT(g.Entries())
	if err := writeFile(filepath.Join(dir, DiagramsDir, SiteDOT), []byte(dot)); err != nil {
		return err
	}
	if !svg {
		return nil
	}
	out, err := RenderSVG(ctx, dot)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, DiagramsDir, SiteSVG), out)
}

// WritePageDiagram writes the mermaid diagram of one page and returns it.
func WritePageDiagram(dir string, e ResultEntry) (string, error) {
	m := Mermaid([]ResultEntry{e})
	return m, writeFile(filepath.Join(dir, DiagramsDir, PageDiagramName(e.File)), []byte(m))
}

// PageDiagramName maps a page file to its diagram file name.
func PageDiagramName(file string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(file)
	if strings.HasSuffix(name, ".html") {
		return strings.TrimSuffix(name, ".html") + ".mmd"
	}
	return name + ".mmd"
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create artifact dir").
			WithContext("path", filepath.Dir(path)).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write artifact").
			WithContext("path", path).Build()
	}
	return nil
}
