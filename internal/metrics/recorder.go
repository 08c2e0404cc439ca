package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultMissing ResultLabel = "missing"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// BuildOutcome labels the final state of a build.
type BuildOutcome string

const (
	BuildSuccess  BuildOutcome = "success"
	BuildWarning  BuildOutcome = "warning"
	BuildFailed   BuildOutcome = "failed"
	BuildCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for builds, transclusion and wikilinks.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	IncPagesRendered(n int)
	// IncSnippet counts one resolved reference; kind is local, remote or compiled.
	IncSnippet(kind string, result ResultLabel)
	IncSnippetCycle()
	IncRemoteCache(hit bool)
	IncWikilink(resolved bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
func (NoopRecorder) IncPagesRendered(int)                       {}
func (NoopRecorder) IncSnippet(string, ResultLabel)             {}
func (NoopRecorder) IncSnippetCycle()                           {}
func (NoopRecorder) IncRemoteCache(bool)                        {}
func (NoopRecorder) IncWikilink(bool)                           {}
