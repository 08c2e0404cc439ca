package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"first h1", "Intro text\n\n# Getting Started\n\n# Second\n", "Getting Started"},
		{"inline markup flattened", "# The `core` *module*\n", "The core module"},
		{"setext heading", "Overview\n========\n\nbody\n", "Overview"},
		{"h2 only", "## Not a title\n", ""},
		{"heading in code block ignored", "```\n# nope\n```\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle([]byte(tt.body)))
		})
	}
}

func TestInferTitle(t *testing.T) {
	assert.Equal(t, "From Meta", InferTitle(`"From Meta"`, []byte("# Heading\n")))
	assert.Equal(t, "Heading", InferTitle("", []byte("# Heading\n")))
	assert.Equal(t, "", InferTitle("", []byte("no heading\n")))
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "a", StripQuotes(`'a'`))
	assert.Equal(t, "a", StripQuotes("`a`"))
	assert.Equal(t, `"a"`, StripQuotes(`""a""`))
	assert.Equal(t, "", StripQuotes(`"`))
}
