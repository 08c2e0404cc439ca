package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	DefaultSiteURL     = "/"
	DefaultDocsDir     = "docs"
	DefaultOutputDir   = "site"
	DefaultCacheDir    = ".hooks"
	DefaultSuffix      = ".juvix.md"
	DefaultURLMaxSize  = 32 * 1024 * 1024
	DefaultURLTimeout  = 10 * time.Second
	DefaultTabLength   = 4
	DefaultCacheSize   = 128
	DefaultSubject     = "docweave.wikilinks.broken"
	DefaultServeAddr   = "127.0.0.1:8000"
	DefaultEncoding    = "utf-8"
	DefaultRefreshTick = 10 * time.Minute
)

func boolPtr(b bool) *bool { return &b }

func applyDefaults(c *Config) {
	if c.Site.Name == "" {
		c.Site.Name = "Documentation"
	}
	if c.Site.URL == "" {
		c.Site.URL = DefaultSiteURL
	}
	c.Site.URL = NormalizeSiteURL(c.Site.URL)
	if c.Site.DocsDir == "" {
		c.Site.DocsDir = DefaultDocsDir
	}
	if c.Site.OutputDir == "" {
		c.Site.OutputDir = DefaultOutputDir
	}
	if c.Site.CacheDir == "" {
		c.Site.CacheDir = DefaultCacheDir
	}

	s := &c.Snippets
	if len(s.BasePath) == 0 {
		s.BasePath = []string{".", "includes"}
	}
	if s.RestrictBasePath == nil {
		s.RestrictBasePath = boolPtr(true)
	}
	if s.Encoding == "" {
		s.Encoding = DefaultEncoding
	}
	if s.CheckPaths == nil {
		s.CheckPaths = boolPtr(true)
	}
	if s.URLDownload == nil {
		s.URLDownload = boolPtr(true)
	}
	if s.URLMaxSize == 0 {
		s.URLMaxSize = DefaultURLMaxSize
	}
	if s.URLTimeout == 0 {
		s.URLTimeout = DefaultURLTimeout
	}
	if s.DedentSubsections == nil {
		s.DedentSubsections = boolPtr(true)
	}
	if s.TabLength <= 0 {
		s.TabLength = DefaultTabLength
	}
	if s.CacheSize <= 0 {
		s.CacheSize = DefaultCacheSize
	}

	if c.Compiled.Suffix == "" {
		c.Compiled.Suffix = DefaultSuffix
	}
	if c.Compiled.OutputDir == "" {
		c.Compiled.OutputDir = filepath.Join(c.Site.CacheDir, "generated")
	}
	if c.Compiled.HashesDir == "" {
		c.Compiled.HashesDir = filepath.Join(c.Site.CacheDir, "hashes")
	}

	if c.Wikilinks.List == nil {
		c.Wikilinks.List = boolPtr(true)
	}
	if c.Build.Concurrency <= 0 {
		c.Build.Concurrency = runtime.NumCPU()
	}
	if c.Events.Subject == "" {
		c.Events.Subject = DefaultSubject
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultServeAddr
	}
	if c.Serve.RefreshInterval == 0 {
		c.Serve.RefreshInterval = DefaultRefreshTick
	}
}

// NormalizeSiteURL guarantees a trailing slash so page paths join beneath it.
func NormalizeSiteURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return DefaultSiteURL
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}
