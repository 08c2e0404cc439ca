package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/linkgraph"
	"git.home.luguber.info/inful/docweave/internal/todos"
	"git.home.luguber.info/inful/docweave/internal/wikilink"
)

// BuildService is the canonical interface for executing documentation builds.
type BuildService interface {
	// Run executes a complete build: discover → index → expand → render → artifacts.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a documentation build.
type BuildRequest struct {
	// Config is the loaded configuration for this build.
	Config *config.Config

	// Options provides optional build behavior modifiers.
	Options BuildOptions
}

// BuildOptions provides optional configuration for build behavior.
type BuildOptions struct {
	// Permissive degrades snippet failures to warnings even when
	// snippets.check_paths is on.
	Permissive bool

	// Concurrency overrides build.concurrency when positive.
	Concurrency int
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// ID identifies the build in logs, the graph store and events.
	ID string

	// Status indicates overall build outcome.
	Status BuildStatus

	// OutputPath is the site directory pages were written to.
	OutputPath string

	// Pages is the count of rendered pages.
	Pages int

	// Assets is the count of copied static files.
	Assets int

	// Graph holds the link-graph entries recorded during the build.
	Graph []linkgraph.ResultEntry

	// Broken lists unresolved wikilinks.
	Broken []wikilink.Broken

	// Todos lists `!!! todo` admonitions found in page sources.
	Todos []todos.Todo

	// StaleCompiled lists compiled sources whose generated output looks outdated.
	StaleCompiled []string

	// Duration is the total build execution time.
	Duration time.Duration

	// StartTime is when the build started.
	StartTime time.Time

	// EndTime is when the build completed.
	EndTime time.Time
}

// Links returns the total number of resolved wikilinks.
func (r *BuildResult) Links() int {
	n := 0
	for _, e := range r.Graph {
		n += len(e.Matches)
	}
	return n
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the build completed successfully.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusWarning indicates the build completed with degraded pages
	// (broken wikilinks or stale compiled output).
	BuildStatusWarning BuildStatus = "warning"

	// BuildStatusFailed indicates the build encountered an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning ||
		s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the build produced a site.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning
}
