package render

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// RewriteLinks points relative Markdown links at their rendered pages:
// hrefs ending in `.md` become `.html` and the compiled infix is dropped
// (compiledHTML is the rendered compiled suffix, e.g. `.juvix.html`).
// Everything else is copied through byte for byte.
func RewriteLinks(page []byte, compiledHTML string) ([]byte, error) {
	z := html.NewTokenizer(bytes.NewReader(page))
	var out bytes.Buffer
	out.Grow(len(page))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to tokenize page").Build()
			}
			return out.Bytes(), nil
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := z.Raw()
			tok := z.Token()
			if tok.Data != "a" || !rewriteHref(&tok, compiledHTML) {
				out.Write(raw)
				continue
			}
			out.WriteString(tok.String())
		default:
			out.Write(z.Raw())
		}
	}
}

func rewriteHref(tok *html.Token, compiledHTML string) bool {
	changed := false
	for i, a := range tok.Attr {
		if a.Key != "href" {
			continue
		}
		if v, ok := rewriteTarget(a.Val, compiledHTML); ok {
			tok.Attr[i].Val = v
			changed = true
		}
	}
	return changed
}

// rewriteTarget maps one href. Absolute URLs and fragments are left alone.
func rewriteTarget(href, compiledHTML string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return href, false
	}
	p := u.Path
	if strings.HasSuffix(p, ".md") {
		p = strings.TrimSuffix(p, ".md") + ".html"
	}
	if compiledHTML != "" && strings.HasSuffix(p, compiledHTML) {
		p = strings.TrimSuffix(p, compiledHTML) + ".html"
	}
	if p == u.Path {
		return href, false
	}
	u.Path = p
	return u.String(), true
}
