package build

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docweave/internal/alias"
	"git.home.luguber.info/inful/docweave/internal/compiled"
	"git.home.luguber.info/inful/docweave/internal/discovery"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/frontmatter"
	"git.home.luguber.info/inful/docweave/internal/linkgraph"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/markdown"
	"git.home.luguber.info/inful/docweave/internal/render"
	"git.home.luguber.info/inful/docweave/internal/snippet"
	"git.home.luguber.info/inful/docweave/internal/todos"
	"git.home.luguber.info/inful/docweave/internal/wikilink"
)

// page is a discovered Markdown source with its metadata decoded.
type page struct {
	file discovery.File
	// pagePath is the docs-relative path with the compiled infix dropped.
	pagePath string
	// read is the file the content came from: the source or its generated output.
	read      string
	generated bool
	doc       frontmatter.Document
	title     string
}

// htmlPath is the site-relative output path of the page.
func (p *page) htmlPath() string {
	return strings.TrimSuffix(p.pagePath, path.Ext(p.pagePath)) + ".html"
}

func loadPages(files []discovery.File, mapper *compiled.Mapper, prints *compiled.Fingerprints, logger *slog.Logger) ([]*page, []string, error) {
	pages := make([]*page, 0, len(files))
	var stale []string
	for _, f := range files {
		p := &page{file: f, pagePath: f.Rel, read: f.Abs}
		var (
			data []byte
			err  error
		)
		if mapper != nil && mapper.IsCompiled(f.Abs) {
			p.pagePath = mapper.PagePath(f.Rel)
			data, p.generated, err = mapper.ReadSource(f.Abs)
			if p.generated {
				p.read, _ = mapper.OutputPath(f.Abs)
			} else {
				logger.Warn("Compiled output missing, rendering source", logfields.Page(f.Rel))
			}
			if prints != nil && p.generated {
				fresh, ferr := prints.Check(f.Abs, p.read)
				if ferr != nil {
					logger.Warn("Cannot check compiled output", logfields.Page(f.Rel), logfields.Error(ferr))
				} else if fresh == compiled.Stale {
					logger.Warn("Compiled output is older than its source", logfields.Page(f.Rel))
					stale = append(stale, f.Rel)
				}
			}
		} else {
			data, err = os.ReadFile(f.Abs)
		}
		if err != nil {
			return nil, nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read page").
				WithContext("path", f.Abs).Build()
		}

		p.doc, err = frontmatter.Parse(data)
		if err != nil {
			return nil, nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid front matter").
				WithContext("path", f.Rel).Build()
		}
		p.title = markdown.InferTitle(p.doc.Meta.Title, p.doc.Body)
		pages = append(pages, p)
	}
	return pages, stale, nil
}

// pageOutcome is what rendering one page contributes to the build result.
type pageOutcome struct {
	entry  *linkgraph.ResultEntry
	broken []wikilink.Broken
	todos  []todos.Todo
}

// renderPage runs one page through todos, snippets, wikilinks and the HTML
// writer. Only snippet failures in strict mode and I/O errors are returned.
func (s *DefaultBuildService) renderPage(ctx context.Context, b *buildState, p *page) (pageOutcome, error) {
	var out pageOutcome
	cfg := b.cfg
	logger := b.logger.With(logfields.Page(p.file.Rel))

	lines := strings.Split(strings.ReplaceAll(string(p.doc.Body), "\r\n", "\n"), "\n")

	show := cfg.Todos.Show
	if p.doc.Meta.Todos != nil {
		show = *p.doc.Meta.Todos
	}
	lines, out.todos = todos.Process(lines, p.file.Rel, p.doc.BodyLine, todos.Options{
		Show:   show,
		Report: cfg.Todos.Report,
		Logger: logger,
	})

	expanded, err := b.engine.ExpandDocument(ctx, lines, snippet.DocumentID(p.read))
	if err != nil {
		return out, ferrors.WrapError(err, ferrors.CategoryBuild, "snippet expansion failed").
			WithContext("page", p.file.Rel).Build()
	}

	resolver := wikilink.NewPageResolver(b.aliases, p.pagePath, wikilink.Options{
		ReportBroken: cfg.Wikilinks.ReportBroken,
		Logger:       logger,
		Recorder:     s.recorder,
	})
	body := render.AppendTokens([]byte(strings.Join(expanded, "\n")))
	content, err := render.Markdown(body, resolver.Extender())
	if err != nil {
		return out, err
	}
	suffix := ""
	if b.mapper != nil {
		suffix = b.mapper.HTMLSuffix()
	}
	if content, err = render.RewriteLinks(content, suffix); err != nil {
		return out, err
	}
	out.broken = resolver.Broken()

	pageURL := b.aliases.URL(p.pagePath)
	deco := render.Decorations{}
	if node, ok := b.aliases.Node(pageURL); ok {
		entry := linkgraph.ResultEntry{
			File:    p.htmlPath(),
			Index:   node.Index,
			Matches: resolver.Matches(),
			URL:     alias.HTML(pageURL),
			Name:    p.title,
		}
		if len(entry.Matches) > 0 {
			out.entry = &entry
			deco.Links = entry.Matches
			deco.ListLinks = *cfg.Wikilinks.List && p.doc.Meta.ListWikilinks
			mermaid := cfg.Wikilinks.Mermaid
			if p.doc.Meta.MermaidWikilinks != nil {
				mermaid = *p.doc.Meta.MermaidWikilinks
			}
			if mermaid {
				m, err := linkgraph.WritePageDiagram(b.cacheDir, entry)
				if err != nil {
					return out, err
				}
				deco.Mermaid = m
			}
		}
	}

	html := render.Substitute(string(content), deco)
	err = render.WritePage(filepath.Join(b.outputDir, filepath.FromSlash(p.htmlPath())), render.Page{
		SiteName:  cfg.Site.Name,
		Title:     p.title,
		Canonical: alias.HTML(pageURL),
		Content:   []byte(html),
		Mermaid:   deco.Mermaid != "",
	})
	return out, err
}
