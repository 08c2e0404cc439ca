// Package render turns expanded page Markdown into HTML and decorates it with
// the page's wikilink list and link diagram.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// Placeholder tokens appended to every page before conversion.
const (
	TokenListWikilinks    = "<!-- list_wikilinks -->"
	TokenMermaidWikilinks = "<!-- mermaid_wikilinks -->"
)

// AppendTokens adds both placeholder tokens, each on its own paragraph, to
// the end of a Markdown document.
func AppendTokens(markdown []byte) []byte {
	out := make([]byte, 0, len(markdown)+len(TokenListWikilinks)+len(TokenMermaidWikilinks)+4)
	out = append(out, markdown...)
	out = append(out, "\n"+TokenListWikilinks+"\n"...)
	out = append(out, "\n"+TokenMermaidWikilinks+"\n"...)
	return out
}

// Markdown converts a document to an HTML fragment. Raw HTML is passed
// through so the placeholder tokens survive conversion.
func Markdown(source []byte, extenders ...goldmark.Extender) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(append([]goldmark.Extender{extension.GFM}, extenders...)...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	var buf bytes.Buffer
	if err := md.Convert(source, &buf); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to convert markdown").Build()
	}
	return buf.Bytes(), nil
}
