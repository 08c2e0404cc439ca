package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// Environment variables recognised on top of the configuration file.
const (
	EnvSiteURL        = "SITE_URL"
	EnvSiteDir        = "SITE_DIR"
	EnvDocsDir        = "DOCS_DIRNAME"
	EnvCacheDir       = "CACHE_DIRNAME"
	EnvReportBroken   = "REPORT_BROKEN_WIKILINKS"
	EnvShowTodos      = "SHOW_TODOS_IN_MD"
	EnvReportTodos    = "REPORT_TODOS"
	EnvRemoveCache    = "REMOVE_CACHE"
	EnvProcessCompile = "PROCESS_JUVIX"
)

// loadEnvFile loads .env then .env.local from dir. Existing process
// environment variables are never overwritten.
func loadEnvFile(dir string) error {
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to load env file").
				WithContext("path", p).Build()
		}
	}
	return nil
}

func applyEnvOverrides(c *Config) {
	if v, ok := lookup(EnvSiteURL); ok {
		c.Site.URL = v
	}
	if v, ok := lookup(EnvSiteDir); ok {
		c.Site.OutputDir = v
	}
	if v, ok := lookup(EnvDocsDir); ok {
		c.Site.DocsDir = v
	}
	if v, ok := lookup(EnvCacheDir); ok {
		c.Site.CacheDir = v
	}
	if b, ok := lookupBool(EnvReportBroken); ok {
		c.Wikilinks.ReportBroken = b
	}
	if b, ok := lookupBool(EnvShowTodos); ok {
		c.Todos.Show = b
	}
	if b, ok := lookupBool(EnvReportTodos); ok {
		c.Todos.Report = b
	}
	if b, ok := lookupBool(EnvRemoveCache); ok {
		c.Build.RemoveCache = b
	}
	if b, ok := lookupBool(EnvProcessCompile); ok {
		c.Compiled.Enabled = b
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func lookupBool(key string) (bool, bool) {
	v, ok := lookup(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return false, false
	}
	return b, true
}
