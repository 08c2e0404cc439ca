// Package server serves a built site together with its link-graph artifacts,
// health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docweave/internal/config"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/graphstore"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/metrics"
)

// ArtifactPrefix is the URL prefix for build artifacts.
const ArtifactPrefix = "/_docweave"

// Options configures a Server.
type Options struct {
	Config *config.Config
	// Store answers backlink queries. When nil they are answered from graph.json.
	Store graphstore.Store
	// Registry enables /metrics when set.
	Registry *prometheus.Registry
	// State reports the latest build on /healthz. May be nil.
	State  *BuildState
	Logger *slog.Logger
}

// Server is the preview HTTP server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	store   graphstore.Store
	state   *BuildState
	adapter *ferrors.HTTPErrorAdapter
	logger  *slog.Logger
	started time.Time
}

// New creates a server and its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     opts.Config,
		store:   opts.Store,
		state:   opts.State,
		adapter: ferrors.NewHTTPErrorAdapter(logger),
		logger:  logger,
		started: time.Now(),
	}
	s.setupRoutes(opts.Registry)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes(reg *prometheus.Registry) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(Chain(s.logger, s.adapter))

	r.Get("/healthz", s.handleHealth)
	if reg != nil {
		r.Handle("/metrics", metrics.HTTPHandler(reg))
	}
	r.Route(ArtifactPrefix, func(r chi.Router) {
		r.Get("/backlinks", s.handleBacklinks)
		r.Get("/builds", s.handleBuilds)
		r.Get("/{artifact}", s.handleArtifact)
	})
	r.Handle("/*", http.FileServer(http.Dir(s.cfg.OutputPath())))

	s.router = r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving site", slog.String("addr", addr), logfields.Path(s.cfg.OutputPath()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "http server failed").
			WithContext("addr", addr).Build()
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryRuntime, "http server shutdown failed").Build()
		}
		return nil
	}
}

func (s *Server) artifactPath(name string) (string, bool) {
	switch name {
	case "graph.json", "aliases.json", "nodes.json", "graph.mmd", "graph.dot", "graph.svg":
		return filepath.Join(s.cfg.CachePath(), name), true
	}
	return "", false
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "artifact")
	path, ok := s.artifactPath(name)
	if !ok {
		s.adapter.WriteErrorResponse(w, r, ferrors.NewError(ferrors.CategoryNotFound, "unknown artifact").
			WithContext("artifact", name).Build())
		return
	}
	if _, err := os.Stat(path); err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.NewError(ferrors.CategoryNotFound, "artifact not built yet").
			WithContext("artifact", name).Build())
		return
	}
	http.ServeFile(w, r, path)
}
