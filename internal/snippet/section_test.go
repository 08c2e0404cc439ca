package snippet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSection_RoundTrip(t *testing.T) {
	lines := []string{
		"intro",
		"-8<- [start: foo]",
		"    one",
		"      two",
		"-8<- [end: foo]",
		"outro",
	}

	got, err := ExtractSection("foo", lines, SectionOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"    one", "      two"}, got)

	got, err = ExtractSection("foo", lines, SectionOptions{Dedent: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "  two"}, got)
}

func TestExtractSection_MarkerHandling(t *testing.T) {
	lines := []string{
		"-8<- [start: outer]",
		"a",
		"-8<- [start: inner]",
		"b",
		"-8<- [end: inner]",
		";-8<- [start: outer]",
		"-8<- [start: outer]",
		"c",
		"-8<- [end: outer]",
		"d",
	}
	got, err := ExtractSection("outer", lines, SectionOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "-8<- [start: outer]", "c"}, got)
}

func TestExtractSection_EndBeforeStartStopsScan(t *testing.T) {
	lines := []string{"-8<- [end: foo]", "-8<- [start: foo]", "x", "-8<- [end: foo]"}
	_, err := ExtractSection("foo", lines, SectionOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSection))
}

func TestExtractSection_EscapedMarkersOutsideAreIgnored(t *testing.T) {
	lines := []string{";-8<- [start: foo]", "x", ";-8<- [end: foo]"}
	_, err := ExtractSection("foo", lines, SectionOptions{})
	assert.ErrorIs(t, err, ErrMissingSection)
}

func TestExtractSection_UnterminatedRunsToEnd(t *testing.T) {
	got, err := ExtractSection("foo", []string{"-8<- [start: foo]", "x", "y"}, SectionOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)
}

func TestExtractSection_CompiledFallback(t *testing.T) {
	generated := []string{"```juvix", "def := 1;", "```"}
	source := []string{"```juvix", "-- -8<- [start: def]", "def := 1;", "-- -8<- [end: def]", "```"}

	got, err := ExtractSection("def", generated, SectionOptions{Compiled: true, Fallback: source, FallbackPath: "a.juvix.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{"def := 1;"}, got)

	_, err = ExtractSection("other", generated, SectionOptions{Compiled: true, Fallback: source, FallbackPath: "a.juvix.md"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingCompiledSection)
	assert.ErrorIs(t, err, ErrMissingSection)

	_, err = ExtractSection("other", generated, SectionOptions{})
	assert.NotErrorIs(t, err, ErrMissingCompiledSection)
}

func TestDedent(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"common spaces", []string{"  a", "    b"}, []string{"a", "  b"}},
		{"blank lines ignored and emptied", []string{"  a", "   ", "  b"}, []string{"a", "", "b"}},
		{"mixed tabs and spaces share nothing", []string{"\ta", "  b"}, []string{"\ta", "  b"}},
		{"no indent", []string{"a", "  b"}, []string{"a", "  b"}},
		{"empty", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedent(tt.in))
		})
	}
}

func TestExpandTabs(t *testing.T) {
	assert.Equal(t, "    ", expandTabs("\t", 4))
	assert.Equal(t, "    ", expandTabs("  \t", 4))
	assert.Equal(t, "  ", expandTabs("  ", 4))
}
