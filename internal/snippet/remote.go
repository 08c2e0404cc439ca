package snippet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/metrics"
)

// DefaultRemoteCacheSize bounds the number of memoized downloads.
const DefaultRemoteCacheSize = 128

// RemoteOptions configures remote snippet downloads.
type RemoteOptions struct {
	// Timeout applies to each request; zero disables it.
	Timeout time.Duration
	// MaxSize rejects payloads whose declared length is at or above it; zero disables it.
	MaxSize   int64
	Headers   map[string]string
	CacheSize int
	Encoding  string
	Client    *http.Client
	Recorder  metrics.Recorder
}

// RemoteCache downloads remote snippets and memoizes them per URL.
//
// Entries live until Purge; there is no time-based expiry. Concurrent fetches
// of one URL share a single request. Failures are never cached.
type RemoteCache struct {
	client   *http.Client
	headers  map[string]string
	maxSize  int64
	decoder  decoder
	cache    *lru.Cache[string, []string]
	group    singleflight.Group
	recorder metrics.Recorder
}

// NewRemoteCache builds a RemoteCache from opts.
func NewRemoteCache(opts RemoteOptions) (*RemoteCache, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultRemoteCacheSize
	}
	cache, err := lru.New[string, []string](size)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to create remote snippet cache").Build()
	}
	dec, err := newDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	client := opts.Client
	if client == nil {
		// Compression is disabled so Content-Length reflects the payload size.
		client = &http.Client{
			Timeout:   opts.Timeout,
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment, DisableCompression: true},
		}
	}
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &RemoteCache{
		client:   client,
		headers:  opts.Headers,
		maxSize:  opts.MaxSize,
		decoder:  dec,
		cache:    cache,
		recorder: rec,
	}, nil
}

// Fetch returns the lines of the resource at url.
func (c *RemoteCache) Fetch(ctx context.Context, url string) ([]string, error) {
	if lines, ok := c.cache.Get(url); ok {
		c.recorder.IncRemoteCache(true)
		return clone(lines), nil
	}
	c.recorder.IncRemoteCache(false)

	v, err, _ := c.group.Do(url, func() (any, error) {
		if lines, ok := c.cache.Get(url); ok {
			return lines, nil
		}
		lines, err := c.download(ctx, url)
		if err != nil {
			return nil, err
		}
		c.cache.Add(url, lines)
		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]string)), nil
}

// Purge drops every memoized download. Call it between builds.
func (c *RemoteCache) Purge() {
	c.cache.Purge()
}

// Len reports the number of memoized downloads.
func (c *RemoteCache) Len() int {
	return c.cache.Len()
}

func (c *RemoteCache) download(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRemote, "invalid snippet url").
			WithContext("url", url).Build()
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "snippet download failed").
			WithContext("url", url).Retryable().Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Remote snippet not available", logfields.URL(url), logfields.Status(resp.StatusCode))
		return nil, ferrors.WrapError(fmt.Errorf("%w: status %d", ErrMissingSnippet, resp.StatusCode),
			ferrors.CategorySnippet, "cannot download snippet").
			WithContext("url", url).Build()
	}
	if resp.ContentLength < 0 {
		return nil, ferrors.WrapError(ErrMissingContentLength, ferrors.CategoryRemote, "cannot size remote snippet").
			WithContext("url", url).Build()
	}
	if c.maxSize > 0 && resp.ContentLength >= c.maxSize {
		return nil, ferrors.WrapError(ErrSizeExceeded, ferrors.CategoryRemote,
			fmt.Sprintf("refusing to read payloads larger than or equal to %d", c.maxSize)).
			WithContext("url", url).
			WithContext("content_length", resp.ContentLength).Build()
	}
	if resp.ContentLength == 0 {
		return []string{""}, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, resp.ContentLength))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to read remote snippet").
			WithContext("url", url).Retryable().Build()
	}
	lines, err := c.decoder.lines(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRemote, "failed to decode remote snippet").
			WithContext("url", url).Build()
	}
	slog.Debug("Downloaded remote snippet", logfields.URL(url), logfields.ContentLength(resp.ContentLength))
	return lines, nil
}

func clone(lines []string) []string {
	return append([]string(nil), lines...)
}
