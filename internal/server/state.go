package server

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/docweave/internal/build"
)

// BuildSnapshot summarizes the latest build.
type BuildSnapshot struct {
	ID       string    `json:"id,omitempty"`
	Status   string    `json:"status"`
	Pages    int       `json:"pages"`
	Links    int       `json:"links"`
	Broken   int       `json:"broken"`
	Finished time.Time `json:"finished"`
	Duration float64   `json:"duration_seconds"`
	Error    string    `json:"error,omitempty"`
}

// BuildState tracks the latest build outcome for the health endpoint.
type BuildState struct {
	mu   sync.RWMutex
	last *BuildSnapshot
}

// Record stores the outcome of a build. result may be nil when err is set.
func (s *BuildState) Record(result *build.BuildResult, err error) {
	snap := BuildSnapshot{Finished: time.Now().UTC(), Status: string(build.BuildStatusFailed)}
	if result != nil {
		snap.ID = result.ID
		snap.Status = string(result.Status)
		snap.Pages = result.Pages
		snap.Links = result.Links()
		snap.Broken = len(result.Broken)
		snap.Duration = result.Duration.Seconds()
	}
	if err != nil {
		snap.Error = err.Error()
	}
	s.mu.Lock()
	s.last = &snap
	s.mu.Unlock()
}

// Snapshot returns the latest build, if any.
func (s *BuildState) Snapshot() (BuildSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return BuildSnapshot{}, false
	}
	return *s.last, true
}
