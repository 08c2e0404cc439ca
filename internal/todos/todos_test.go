package todos

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

var page = []string{
	"# Title",
	"",
	"!!! todo",
	"    Write the intro.",
	"    And the outro.",
	"",
	"Body text.",
	"!!! todo \"Fix links\"",
	"",
	"More.",
}

func TestProcess_RemovesByDefault(t *testing.T) {
	out, found := Process(page, "guide.md", 4, Options{})

	assert.Equal(t, []string{"# Title", "", "", "Body text.", "", "More."}, out)
	assert.Equal(t, []Todo{
		{Path: "guide.md", Line: 7, Text: "Write the intro. And the outro."},
		{Path: "guide.md", Line: 12, Text: "Fix links"},
	}, found)
}

func TestProcess_ShowKeepsLines(t *testing.T) {
	out, found := Process(page, "guide.md", 0, Options{Show: true})
	assert.Equal(t, page, out)
	assert.Len(t, found, 2)
}

func TestProcess_Report(t *testing.T) {
	var logs bytes.Buffer
	Process(page, "guide.md", 0, Options{Report: true, Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	assert.Contains(t, logs.String(), "level=WARN msg=TODO")
	assert.Contains(t, logs.String(), "line=3")
}

func TestProcess_NestedMarkerStopsAtDedent(t *testing.T) {
	lines := []string{
		"- item",
		"    !!! todo",
		"        nested",
		"    back in list",
	}
	out, found := Process(lines, "p.md", 0, Options{})
	assert.Equal(t, []string{"- item", "    back in list"}, out)
	assert.Equal(t, "nested", found[0].Text)
}

func TestTodoString(t *testing.T) {
	assert.Equal(t, "a.md:3: x", Todo{Path: "a.md", Line: 3, Text: "x"}.String())
}
