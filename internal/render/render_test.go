package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docweave/internal/linkgraph"
)

func TestMarkdown_KeepsTokens(t *testing.T) {
	out, err := Markdown(AppendTokens([]byte("# Hello\n\nSome *text*.")))
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `<h1 id="hello">Hello</h1>`)
	assert.Contains(t, s, TokenListWikilinks)
	assert.Contains(t, s, TokenMermaidWikilinks)
}

func TestSubstitute(t *testing.T) {
	links := []linkgraph.Match{
		{Name: "Guide", Path: "guide.md", URL: "/guide.html"},
		{Name: "A & B", Path: "ab.md", URL: "/ab.html"},
	}
	page := "<p>x</p>\n" + TokenListWikilinks + "\n" + TokenMermaidWikilinks + "\n"

	t.Run("list only", func(t *testing.T) {
		got := Substitute(page, Decorations{Links: links, ListLinks: true})
		assert.Contains(t, got, "<details class='quote'><summary>(Wiki) links on this page</summary><ul>"+
			"<li><a href='/guide.html' alt='guide.md'>Guide</a></li>"+
			"<li><a href='/ab.html' alt='ab.md'>A &amp; B</a></li></ul></details>")
		assert.NotContains(t, got, "<!--")
		assert.NotContains(t, got, "mermaid")
	})

	t.Run("mermaid only", func(t *testing.T) {
		got := Substitute(page, Decorations{Links: links, Mermaid: "flowchart TD\n  p0 --> p1\n"})
		assert.Contains(t, got, `<pre class="mermaid" ><code>flowchart TD`)
		assert.Contains(t, got, "p0 --&gt; p1")
		assert.NotContains(t, got, "(Wiki) links")
	})

	t.Run("no links removes tokens", func(t *testing.T) {
		got := Substitute(page, Decorations{ListLinks: true, Mermaid: "x"})
		assert.Equal(t, "<p>x</p>\n\n\n", got)
	})
}

func TestRewriteLinks(t *testing.T) {
	in := `<p><a href="other.md">o</a> <a href="deep/x.juvix.md#sec">x</a> ` +
		`<a href="gen.juvix.html">g</a> <a href="https://example.org/a.md">ext</a> ` +
		`<a href="#top">top</a> <img src="pic.md"></p>`
	out, err := RewriteLinks([]byte(in), ".juvix.html")
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `href="other.html"`)
	assert.Contains(t, s, `href="deep/x.html#sec"`)
	assert.Contains(t, s, `href="gen.html"`)
	assert.Contains(t, s, `href="https://example.org/a.md"`)
	assert.Contains(t, s, `href="#top"`)
	assert.Contains(t, s, `<img src="pic.md">`)
}

func TestRewriteLinks_Untouched(t *testing.T) {
	in := "<div class='a'>text &amp; more<!-- c --></div>"
	out, err := RewriteLinks([]byte(in), ".juvix.html")
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestWritePage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site", "guide", "a.html")
	require.NoError(t, WritePage(path, Page{
		SiteName: "Docs",
		Title:    "Guide <A>",
		Content:  []byte("<p>hi</p>"),
		Mermaid:  true,
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, "<title>Guide &lt;A&gt; - Docs</title>")
	assert.Contains(t, s, "<main>\n<p>hi</p>\n</main>")
	assert.True(t, strings.Contains(s, "mermaid.initialize"))
}
