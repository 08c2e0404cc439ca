package render

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

const shellHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Title}}{{.Title}} - {{end}}{{.SiteName}}</title>
{{- if .Canonical}}
<link rel="canonical" href="{{.Canonical}}">
{{- end}}
</head>
<body>
<main>
{{.Content}}
</main>
{{- if .Mermaid}}
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
{{- end}}
</body>
</html>
`

var shellTemplate = template.Must(template.New("shell").Parse(shellHTMLTemplate))

// Page is a rendered page ready to be written into the site dir.
type Page struct {
	SiteName  string
	Title     string
	Canonical string
	Content   []byte
	Mermaid   bool
}

// Shell wraps page content into a standalone HTML document.
func Shell(p Page) ([]byte, error) {
	var buf bytes.Buffer
	err := shellTemplate.Execute(&buf, struct {
		SiteName  string
		Title     string
		Canonical string
		Content   template.HTML
		Mermaid   bool
	}{p.SiteName, p.Title, p.Canonical, template.HTML(p.Content), p.Mermaid}) //nolint:gosec // content is our own rendered markdown
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to render page shell").Build()
	}
	return buf.Bytes(), nil
}

// WritePage renders p into the shell and writes it to path.
func WritePage(path string, p Page) error {
	data, err := Shell(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create page dir").WithContext("path", filepath.Dir(path)).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write page").WithContext("path", path).Build()
	}
	return nil
}
