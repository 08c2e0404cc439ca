package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseBody parses a Markdown body (frontmatter already removed) into a Goldmark AST.
func ParseBody(body []byte) gmast.Node {
	return goldmark.New().Parser().Parse(text.NewReader(body))
}

// ExtractTitle returns the text of the first level-1 heading, or "".
//
// This is an analysis API; inline markup inside the heading is flattened to text.
func ExtractTitle(body []byte) string {
	root := ParseBody(body)
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		if h.Level != 1 {
			return gmast.WalkSkipChildren, nil
		}
		title = strings.TrimSpace(inlineText(h, body))
		return gmast.WalkStop, nil
	})
	return title
}

// InferTitle prefers the front-matter title and falls back to the first H1.
// One layer of enclosing quote characters is stripped.
func InferTitle(metaTitle string, body []byte) string {
	title := strings.TrimSpace(metaTitle)
	if title == "" {
		title = ExtractTitle(body)
	}
	return StripQuotes(title)
}

// StripQuotes removes one leading and one trailing quote character (' " `).
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && strings.ContainsRune(`'"`+"`", rune(s[0])) {
		s = s[1:]
	}
	if s != "" && strings.ContainsRune(`'"`+"`", rune(s[len(s)-1])) {
		s = s[:len(s)-1]
	}
	return s
}

func inlineText(n gmast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *gmast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(node.Value)
		case *gmast.CodeSpan:
			buf.WriteString(inlineText(node, source))
		default:
			buf.WriteString(inlineText(node, source))
		}
	}
	return buf.String()
}
