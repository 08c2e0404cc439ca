package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\nkey: value\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_BOMAndCRLF(t *testing.T) {
	fm, body, had, err := Split([]byte("\uFEFF---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_EmptyFrontmatterBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("title: abc\ntags:\n  - one\n"))
	require.NoError(t, err)
	require.Equal(t, "abc", fields["title"])
	require.Equal(t, []any{"one"}, fields["tags"])

	fields, err = ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)

	_, err = ParseYAML([]byte(": not yaml"))
	require.Error(t, err)
}

func TestSkipLines(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"no front matter", []string{"# A", "body"}, []string{"# A", "body"}},
		{"block stripped", []string{"---", "title: x", "---", "# A"}, []string{"# A"}},
		{"unclosed block kept", []string{"---", "title: x", "# A"}, []string{"---", "title: x", "# A"}},
		{"only first block", []string{"---", "---", "---", "b", "---"}, []string{"---", "b", "---"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SkipLines(tt.in))
		})
	}
}

func TestDecodeAlias(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		kind  AliasKind
		names []string
	}{
		{"absent", nil, AliasNone, nil},
		{"single", "Intro", AliasSingle, []string{"Intro"}},
		{"many skips non-strings", []any{"A", 3, "B"}, AliasMany, []string{"A", "B"}},
		{"named", map[string]any{"name": "Core"}, AliasNamed, []string{"Core"}},
		{"mapping without name", map[string]any{"label": "x"}, AliasNone, nil},
		{"empty list", []any{}, AliasNone, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeAlias(tt.raw)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.names, got.Names())
		})
	}
}

func TestParse_DecodesMetaAndBodyLine(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: \"Home\"\nalias: [Start]\nmermaid_wikilinks: true\nlist_wikilinks: false\ntodos: true\n---\n# Body\n"))
	require.NoError(t, err)

	assert.Equal(t, "Home", doc.Meta.Title)
	assert.Equal(t, []string{"Start"}, doc.Meta.Alias.Names())
	require.NotNil(t, doc.Meta.MermaidWikilinks)
	assert.True(t, *doc.Meta.MermaidWikilinks)
	assert.False(t, doc.Meta.ListWikilinks)
	require.NotNil(t, doc.Meta.Todos)
	assert.True(t, *doc.Meta.Todos)
	assert.Equal(t, 7, doc.BodyLine)
	assert.Equal(t, "# Body\n", string(doc.Body))
}

func TestDecodeMeta_Defaults(t *testing.T) {
	m := DecodeMeta(nil)
	assert.True(t, m.ListWikilinks)
	assert.Nil(t, m.MermaidWikilinks)
	assert.Nil(t, m.Todos)
	assert.False(t, m.Alias.Declared())
}
