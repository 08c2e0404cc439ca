package server

import (
	"encoding/json"
	"net/http"
	"time"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/graphstore"
	"git.home.luguber.info/inful/docweave/internal/linkgraph"
	"git.home.luguber.info/inful/docweave/internal/version"
)

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Uptime    float64        `json:"uptime"`
	LastBuild *BuildSnapshot `json:"last_build,omitempty"`
}

// BacklinksResponse is the /_docweave/backlinks payload.
type BacklinksResponse struct {
	URL       string                `json:"url"`
	Backlinks []graphstore.Backlink `json:"backlinks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.started).Seconds(),
	}
	if s.state != nil {
		if snap, ok := s.state.Snapshot(); ok {
			resp.LastBuild = &snap
			if snap.Error != "" {
				resp.Status = "degraded"
			}
		}
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleBacklinks(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("url query parameter is required").Build())
		return
	}

	var links []graphstore.Backlink
	if s.store != nil {
		got, err := s.store.Backlinks(r.Context(), target)
		if err != nil {
			s.adapter.WriteErrorResponse(w, r, err)
			return
		}
		links = got
	} else {
		doc, err := linkgraph.ReadGraph(s.cfg.CachePath())
		if err != nil {
			s.adapter.WriteErrorResponse(w, r, err)
			return
		}
		links = graphstore.BacklinksFrom(doc.Graph, target)
	}
	if links == nil {
		links = []graphstore.Backlink{}
	}
	s.writeJSON(w, r, http.StatusOK, BacklinksResponse{URL: target, Backlinks: links})
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.NewError(ferrors.CategoryNotFound, "build history requires store.sqlite_path").Build())
		return
	}
	builds, err := s.store.Builds(r.Context())
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}
	if builds == nil {
		builds = []graphstore.Summary{}
	}
	s.writeJSON(w, r, http.StatusOK, builds)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode response").Build())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
