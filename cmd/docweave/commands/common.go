// Package commands implements the docweave command line.
package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docweave/internal/build"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/metrics"
)

// EnvLogLevel overrides the log level (debug, info, warn, error).
const EnvLogLevel = "DOCWEAVE_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docweave.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Build the site"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
	Serve     ServeCmd     `cmd:"" help:"Build, serve and rebuild on change"`
	Expand    ExpandCmd    `cmd:"" help:"Print a markdown file with its snippets expanded"`
	Graph     GraphCmd     `cmd:"" help:"Print the link graph of the last build (mermaid, dot, json, svg)"`
	Backlinks BacklinksCmd `cmd:"" help:"List the pages linking to a page URL"`
	Ver       VersionCmd   `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

// parseLogLevel honours --verbose first, then DOCWEAVE_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newBuildService wires the build service, with Prometheus metrics when
// enabled. The returned registry is nil when metrics are off.
func newBuildService(cfg *config.Config, logger *slog.Logger) (*build.DefaultBuildService, *prometheus.Registry) {
	svc := build.NewBuildService().WithLogger(logger)
	if !cfg.Metrics.Enabled {
		return svc, nil
	}
	reg := prometheus.NewRegistry()
	return svc.WithRecorder(metrics.NewPrometheusRecorder(reg)), reg
}
