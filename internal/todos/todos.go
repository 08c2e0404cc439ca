// Package todos finds `!!! todo` admonitions in page sources.
package todos

import (
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docweave/internal/logfields"
)

const marker = "!!! todo"

// Todo is one admonition found in a page.
type Todo struct {
	Path string `json:"path"`
	// Line is 1-based and counts front-matter lines.
	Line int    `json:"line"`
	Text string `json:"text"`
}

func (t Todo) String() string {
	return fmt.Sprintf("%s:%d: %s", t.Path, t.Line, t.Text)
}

// Options control what Process does with the admonitions it finds.
type Options struct {
	// Show keeps the admonitions in the rendered page.
	Show bool
	// Report logs each admonition at warn level.
	Report bool
	Logger *slog.Logger
}

// Process scans body lines for todo admonitions. offset is the number of
// source lines that precede the body. The returned lines have the
// admonitions removed unless opts.Show is set.
func Process(lines []string, page string, offset int, opts Options) ([]string, []Todo) {
	var (
		out   = make([]string, 0, len(lines))
		found []Todo
	)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(strings.TrimSpace(line), marker) {
			out = append(out, line)
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		start := i
		var text []string
		if title := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), marker)); title != "" {
			text = append(text, strings.Trim(title, `"`))
		}
		for i+1 < len(lines) && inBody(lines[i+1], indent) {
			i++
			if s := strings.TrimSpace(lines[i]); s != "" {
				text = append(text, s)
			}
		}
		// trailing blank lines belong to the surrounding document
		end := i
		for end > start && strings.TrimSpace(lines[end]) == "" {
			end--
		}

		todo := Todo{Path: page, Line: offset + start + 1, Text: strings.Join(text, " ")}
		found = append(found, todo)
		if opts.Report && opts.Logger != nil {
			opts.Logger.Warn("TODO", logfields.Path(todo.Path), slog.Int("line", todo.Line), slog.String("text", todo.Text))
		}

		if opts.Show {
			out = append(out, lines[start:end+1]...)
		}
		out = append(out, lines[end+1:i+1]...)
	}
	return out, found
}

// inBody reports whether line continues an admonition whose marker sat at
// the given indent: blank lines and lines indented past the marker do.
func inBody(line string, indent int) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n > indent
		}
	}
	return false
}
