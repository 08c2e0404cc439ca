package linkgraph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// vertex is a page that appears in a diagram, either as a link source or
// as a link target.
type vertex struct {
	id    string
	url   string
	label string
}

type edge struct {
	from, to string
	label    string
}

type diagram struct {
	vertices []vertex
	byURL    map[string]int
	edges    []edge
}

// collect builds the vertex and edge lists shared by every diagram format.
// Vertices are numbered in order of first appearance.
func collect(entries []ResultEntry) *diagram {
	d := &diagram{byURL: map[string]int{}}
	add := func(url, label string) string {
		if i, ok := d.byURL[url]; ok {
			return d.vertices[i].id
		}
		v := vertex{id: fmt.Sprintf("p%d", len(d.vertices)), url: url, label: label}
		if v.label == "" {
			v.label = url
		}
		d.byURL[url] = len(d.vertices)
		d.vertices = append(d.vertices, v)
		return v.id
	}
	for _, e := range entries {
		from := add(e.URL, e.Name)
		for _, m := range e.Matches {
			to := add(m.URL, m.Name)
			d.edges = append(d.edges, edge{from: from, to: to, label: m.Name})
		}
	}
	return d
}

// Mermaid renders entries as a mermaid flowchart. Edges are labelled with the
// target's display name.
func Mermaid(entries []ResultEntry) string {
	d := collect(entries)
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	for _, v := range d.vertices {
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", v.id, mermaidEscape(v.label))
		fmt.Fprintf(&b, "  click %s \"%s\"\n", v.id, mermaidEscape(v.url))
	}
	for _, e := range d.edges {
		fmt.Fprintf(&b, "  %s -->|\"%s\"| %s\n", e.from, mermaidEscape(e.label), e.to)
	}
	return b.String()
}

func mermaidEscape(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "\n", " ").Replace(s)
}

// DOT renders entries as a Graphviz digraph.
func DOT(entries []ResultEntry) string {
	d := collect(entries)
	var buf bytes.Buffer
	buf.WriteString("digraph links {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")
	for _, v := range d.vertices {
		fmt.Fprintf(&buf, "  %q [label=%q, URL=%q];\n", v.id, v.label, v.url)
	}
	buf.WriteString("\n")
	for _, e := range d.edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.from, e.to, e.label)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to initialise graphviz").Build()
	}
	defer func() { _ = gv.Close() }()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to parse DOT graph").Build()
	}
	defer func() { _ = g.Close() }()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to render graph").Build()
	}
	return buf.Bytes(), nil
}
