package compiled

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func TestMapper(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	out := filepath.Join(root, ".hooks", "generated")
	m, err := NewMapper(docs, out, ".juvix.md")
	require.NoError(t, err)

	assert.True(t, m.IsCompiled("a/b.juvix.md"))
	assert.False(t, m.IsCompiled("a/b.md"))
	assert.Equal(t, "a/b.md", m.PagePath("a/b.juvix.md"))
	assert.Equal(t, "a/c.md", m.PagePath("a/c.md"))
	assert.Equal(t, ".juvix.html", m.HTMLSuffix())

	got, ok := m.OutputPath(filepath.Join(docs, "lib", "nat.juvix.md"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(out, "lib", "nat.md"), got)

	_, ok = m.OutputPath(filepath.Join(root, "elsewhere.juvix.md"))
	assert.False(t, ok)
	_, ok = m.OutputPath(filepath.Join(docs, "plain.md"))
	assert.False(t, ok)
}

func TestMapper_ReadSource(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	out := filepath.Join(root, "gen")
	m, err := NewMapper(docs, out, ".juvix.md")
	require.NoError(t, err)

	src := filepath.Join(docs, "a.juvix.md")
	write(t, src, "source")
	data, generated, err := m.ReadSource(src)
	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, "source", string(data))

	write(t, filepath.Join(out, "a.md"), "generated")
	data, generated, err = m.ReadSource(src)
	require.NoError(t, err)
	assert.True(t, generated)
	assert.Equal(t, "generated", string(data))
}

func TestFingerprint_Stable(t *testing.T) {
	a, err := Fingerprint([]byte("---\ntitle: x\n---\nbody\n"))
	require.NoError(t, err)
	b, err := Fingerprint([]byte("---\ntitle: x\n---\nbody\n"))
	require.NoError(t, err)
	c, err := Fingerprint([]byte("---\ntitle: x\n---\nother\n"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestFingerprints_Check(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	src := filepath.Join(docs, "a.juvix.md")
	out := filepath.Join(root, "gen", "a.md")
	fps := NewFingerprints(filepath.Join(root, "hashes"), docs)

	write(t, src, "v1")
	state, err := fps.Check(src, out)
	require.NoError(t, err)
	assert.Equal(t, Missing, state)

	write(t, out, "generated v1")
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, old, old))
	state, err = fps.Check(src, out)
	require.NoError(t, err)
	assert.Equal(t, Fresh, state)
	assert.FileExists(t, filepath.Join(root, "hashes", "a.juvix.md.hash"))

	// Touched without a content change: still fresh.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, future, future))
	state, err = fps.Check(src, out)
	require.NoError(t, err)
	assert.Equal(t, Fresh, state)

	write(t, src, "v2")
	require.NoError(t, os.Chtimes(src, future, future))
	state, err = fps.Check(src, out)
	require.NoError(t, err)
	assert.Equal(t, Stale, state)
}
