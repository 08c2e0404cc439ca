package snippet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/doc.md", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body := "remote 1\r\nremote 2\n-8<- \"local.md\"\n-8<- \"" + "http://" + r.Host + "/leaf.md\"\n"
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/leaf.md", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "5")
		_, _ = w.Write([]byte("leaf\n"))
	})
	mux.HandleFunc("/section.md", func(w http.ResponseWriter, _ *http.Request) {
		body := "x\n-8<- [start: s]\n  in\n-8<- [end: s]\n"
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/empty.md", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "0")
	})
	mux.HandleFunc("/chunked.md", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("part"))
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte("more"))
	})
	mux.HandleFunc("/big.md", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "64")
		_, _ = w.Write(make([]byte, 64))
	})
	mux.HandleFunc("/header.md", func(w http.ResponseWriter, r *http.Request) {
		body := r.Header.Get("X-Token")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteCache_FetchAndMemoize(t *testing.T) {
	var hits atomic.Int32
	srv := remoteServer(t, &hits)
	cache, err := NewRemoteCache(RemoteOptions{MaxSize: 1024})
	require.NoError(t, err)

	lines, err := cache.Fetch(context.Background(), srv.URL+"/doc.md")
	require.NoError(t, err)
	assert.Equal(t, "remote 1", lines[0])
	assert.Equal(t, "remote 2", lines[1])

	_, err = cache.Fetch(context.Background(), srv.URL+"/doc.md")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
	_, err = cache.Fetch(context.Background(), srv.URL+"/doc.md")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRemoteCache_Failures(t *testing.T) {
	var hits atomic.Int32
	srv := remoteServer(t, &hits)
	cache, err := NewRemoteCache(RemoteOptions{MaxSize: 32})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.Fetch(ctx, srv.URL+"/chunked.md")
	assert.ErrorIs(t, err, ErrMissingContentLength)

	_, err = cache.Fetch(ctx, srv.URL+"/big.md")
	assert.ErrorIs(t, err, ErrSizeExceeded)

	_, err = cache.Fetch(ctx, srv.URL+"/nope.md")
	assert.ErrorIs(t, err, ErrMissingSnippet)

	lines, err := cache.Fetch(ctx, srv.URL+"/empty.md")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, lines)

	assert.Equal(t, 1, cache.Len(), "failures are not memoized")
}

func TestRemoteCache_RequestHeaders(t *testing.T) {
	var hits atomic.Int32
	srv := remoteServer(t, &hits)
	cache, err := NewRemoteCache(RemoteOptions{Headers: map[string]string{"X-Token": "secret"}})
	require.NoError(t, err)

	lines, err := cache.Fetch(context.Background(), srv.URL+"/header.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"secret"}, lines)
}

func TestEngine_RemoteSnippets(t *testing.T) {
	var hits atomic.Int32
	srv := remoteServer(t, &hits)
	dir := t.TempDir()
	writeFile(t, dir, "local.md", "must not be included\n")

	cache, err := NewRemoteCache(RemoteOptions{MaxSize: 1024})
	require.NoError(t, err)
	e := newTestEngine(t, ResolverOptions{BasePaths: []string{dir}, URLDownload: true, Dedent: true, Remote: cache})

	got, err := expand(t, e, `-8<- "`+srv.URL+`/doc.md"`, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"remote 1", "remote 2", "leaf"}, got)

	got, err = expand(t, e, `-8<- "`+srv.URL+`/section.md:s"`, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"in"}, got)

	got, err = expand(t, e, `-8<- "`+srv.URL+`/doc.md:2:2"`, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"remote 2"}, got)
}

func TestEngine_RemoteDisabledFallsBackToLocalLookup(t *testing.T) {
	var hits atomic.Int32
	srv := remoteServer(t, &hits)
	e := newTestEngine(t, ResolverOptions{BasePaths: []string{t.TempDir()}, URLDownload: false}, WithStrict(true))

	_, err := expand(t, e, `-8<- "`+srv.URL+`/doc.md"`, "")
	assert.ErrorIs(t, err, ErrMissingSnippet)
	assert.Equal(t, int32(0), hits.Load())
}
