package render

import (
	"html"
	"strings"

	"git.home.luguber.info/inful/docweave/internal/linkgraph"
)

// Decorations is what replaces the placeholder tokens of one page.
type Decorations struct {
	Links []linkgraph.Match
	// ListLinks enables the link list. Pages default to true.
	ListLinks bool
	// Mermaid is the page's link diagram; empty disables the diagram.
	Mermaid string
}

// Substitute replaces the placeholder tokens. Tokens that are not filled are
// removed.
func Substitute(page string, d Decorations) string {
	list, mermaid := "", ""
	if len(d.Links) > 0 {
		if d.ListLinks {
			list = LinkList(d.Links)
		}
		if d.Mermaid != "" {
			mermaid = MermaidBlock(d.Mermaid)
		}
	}
	return strings.NewReplacer(
		TokenListWikilinks, list,
		TokenMermaidWikilinks, mermaid,
	).Replace(page)
}

// LinkList renders the collapsible list of the links found on a page.
func LinkList(links []linkgraph.Match) string {
	var b strings.Builder
	b.WriteString("<details class='quote'><summary>(Wiki) links on this page</summary><ul>")
	for _, l := range links {
		b.WriteString("<li><a href='")
		b.WriteString(html.EscapeString(l.URL))
		b.WriteString("' alt='")
		b.WriteString(html.EscapeString(l.Path))
		b.WriteString("'>")
		b.WriteString(html.EscapeString(l.Name))
		b.WriteString("</a></li>")
	}
	b.WriteString("</ul></details>")
	return b.String()
}

// MermaidBlock wraps a mermaid diagram in a collapsible block.
func MermaidBlock(diagram string) string {
	return `
<details class="quote">
<summary>Link graph</summary>
<div style="text-align: center;">
<pre class="mermaid" ><code>` + html.EscapeString(diagram) + `</code></pre>
</div>
</details>
`
}
