package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "docweave.yaml"

// Config represents the docweave configuration file.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Nav       yaml.Node       `yaml:"nav,omitempty"`
	Snippets  SnippetsConfig  `yaml:"snippets"`
	Compiled  CompiledConfig  `yaml:"compiled"`
	Wikilinks WikilinksConfig `yaml:"wikilinks"`
	Todos     TodosConfig     `yaml:"todos"`
	Build     BuildConfig     `yaml:"build"`
	Store     StoreConfig     `yaml:"store"`
	Events    EventsConfig    `yaml:"events"`
	Serve     ServeConfig     `yaml:"serve"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// Root is the directory the configuration was loaded from. Relative paths resolve against it.
	Root string `yaml:"-"`
}

// SiteConfig describes the documentation site being built.
type SiteConfig struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	DocsDir   string `yaml:"docs_dir"`
	OutputDir string `yaml:"output_dir"`
	CacheDir  string `yaml:"cache_dir"`
}

// SnippetsConfig controls transclusion.
type SnippetsConfig struct {
	BasePath          []string          `yaml:"base_path"`
	RestrictBasePath  *bool             `yaml:"restrict_base_path,omitempty"`
	Encoding          string            `yaml:"encoding"`
	CheckPaths        *bool             `yaml:"check_paths,omitempty"`
	AutoAppend        []string          `yaml:"auto_append,omitempty"`
	URLDownload       *bool             `yaml:"url_download,omitempty"`
	URLMaxSize        int64             `yaml:"url_max_size"`
	URLTimeout        time.Duration     `yaml:"url_timeout"`
	URLRequestHeaders map[string]string `yaml:"url_request_headers,omitempty"`
	DedentSubsections *bool             `yaml:"dedent_subsections,omitempty"`
	AutoBaseDirs      bool              `yaml:"auto_base_dirs"`
	TabLength         int               `yaml:"tab_length"`
	CacheSize         int               `yaml:"cache_size"`
}

// CompiledConfig maps compiled-source files onto generated Markdown.
type CompiledConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Suffix    string `yaml:"suffix"`
	OutputDir string `yaml:"output_dir"`
	HashesDir string `yaml:"hashes_dir"`
}

// WikilinksConfig controls wikilink rendering and reporting.
type WikilinksConfig struct {
	ReportBroken bool  `yaml:"report_broken"`
	List         *bool `yaml:"list,omitempty"`
	Mermaid      bool  `yaml:"mermaid"`
	GraphSVG     bool  `yaml:"graph_svg"`
}

// TodosConfig controls `!!! todo` admonitions.
type TodosConfig struct {
	Show   bool `yaml:"show"`
	Report bool `yaml:"report"`
}

// BuildConfig controls the build pipeline.
type BuildConfig struct {
	Concurrency int  `yaml:"concurrency"`
	RemoveCache bool `yaml:"remove_cache"`
}

// StoreConfig configures link-graph persistence. Empty path disables it.
type StoreConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// EventsConfig configures broken-link event publishing. Empty URL disables it.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr            string        `yaml:"addr"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// MetricsConfig toggles Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load loads configuration from the specified file, applies environment
// overrides and defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(filepath.Dir(configPath)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			WithContext("path", configPath).Fatal().Build()
	}

	root, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve config dir").Build()
	}
	cfg.Root = root

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML without touching the environment or applying defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration rooted at dir with all defaults applied.
func Default(dir string) *Config {
	cfg := &Config{Root: dir}
	applyDefaults(cfg)
	return cfg
}

// Path resolves p against the configuration root unless it is absolute.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

func (c *Config) DocsPath() string   { return c.Path(c.Site.DocsDir) }
func (c *Config) OutputPath() string { return c.Path(c.Site.OutputDir) }
func (c *Config) CachePath() string  { return c.Path(c.Site.CacheDir) }

// HasNav reports whether an explicit nav tree was configured.
func (c *Config) HasNav() bool {
	return c.Nav.Kind != 0
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).Build()
	}
	return nil
}

const exampleConfig = `# docweave configuration
site:
  name: My Documentation
  url: https://example.com/docs/
  docs_dir: docs
  output_dir: site
  cache_dir: .hooks

nav:
  - Home: index.md
  - Guide:
      - guide/install.md
      - Usage: guide/usage.md

snippets:
  base_path: [".", "includes"]
  check_paths: true
  url_download: true
  url_max_size: 33554432
  url_timeout: 10s

compiled:
  enabled: false
  suffix: .juvix.md
  output_dir: .hooks/generated
  hashes_dir: .hooks/hashes

wikilinks:
  report_broken: true
  mermaid: false

todos:
  show: false
  report: false

build:
  concurrency: 4
`

// String renders a short human summary used in debug logs.
func (c *Config) String() string {
	return fmt.Sprintf("site=%q docs=%s out=%s cache=%s", c.Site.URL, c.Site.DocsDir, c.Site.OutputDir, c.Site.CacheDir)
}
