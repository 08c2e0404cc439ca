package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docweave/internal/alias"
	"git.home.luguber.info/inful/docweave/internal/compiled"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/discovery"
	"git.home.luguber.info/inful/docweave/internal/events"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/graphstore"
	"git.home.luguber.info/inful/docweave/internal/linkgraph"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/metrics"
	"git.home.luguber.info/inful/docweave/internal/nav"
	"git.home.luguber.info/inful/docweave/internal/snippet"
)

// StoreFactory opens the graph store for a build. A nil store disables persistence.
type StoreFactory func(cfg *config.Config) (graphstore.Store, error)

// PublisherFactory creates the event publisher for a build.
type PublisherFactory func(cfg *config.Config, logger *slog.Logger) (events.Publisher, error)

// DefaultBuildService is the standard implementation of BuildService.
// It orchestrates discovery → alias index → page rendering → artifacts.
//
// The remote snippet cache is owned by the service so that consecutive
// builds can share it; it is purged at the end of every build.
type DefaultBuildService struct {
	recorder         metrics.Recorder
	logger           *slog.Logger
	storeFactory     StoreFactory
	publisherFactory PublisherFactory

	mu     sync.Mutex
	remote *snippet.RemoteCache
}

// NewBuildService creates a new DefaultBuildService with default factories.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		recorder:         metrics.NoopRecorder{},
		logger:           slog.Default(),
		storeFactory:     DefaultStoreFactory,
		publisherFactory: DefaultPublisherFactory,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	s.recorder = r
	return s
}

// WithLogger sets the logger.
func (s *DefaultBuildService) WithLogger(l *slog.Logger) *DefaultBuildService {
	s.logger = l
	return s
}

// WithStoreFactory allows injecting a custom graph store (for testing).
func (s *DefaultBuildService) WithStoreFactory(f StoreFactory) *DefaultBuildService {
	s.storeFactory = f
	return s
}

// WithPublisherFactory allows injecting a custom event publisher (for testing).
func (s *DefaultBuildService) WithPublisherFactory(f PublisherFactory) *DefaultBuildService {
	s.publisherFactory = f
	return s
}

// DefaultStoreFactory opens the SQLite store when store.sqlite_path is set.
func DefaultStoreFactory(cfg *config.Config) (graphstore.Store, error) {
	if cfg.Store.SQLitePath == "" {
		return nil, nil
	}
	store, err := graphstore.NewSQLiteStore(cfg.Path(cfg.Store.SQLitePath))
	if err != nil {
		return nil, err
	}
	return store, nil
}

// DefaultPublisherFactory connects to NATS when events.nats_url is set.
func DefaultPublisherFactory(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.Events.NATSURL == "" {
		return events.NoopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject, logger)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

func (s *DefaultBuildService) remoteCache(cfg *config.Config) (*snippet.RemoteCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remote == nil {
		r, err := NewRemoteCache(cfg, s.recorder)
		if err != nil {
			return nil, err
		}
		s.remote = r
	}
	return s.remote, nil
}

// buildState is shared by the pages of one build.
type buildState struct {
	id        string
	cfg       *config.Config
	logger    *slog.Logger
	docsDir   string
	outputDir string
	cacheDir  string
	mapper    *compiled.Mapper
	aliases   *alias.Resolver
	engine    *snippet.Engine
	graph     *linkgraph.Graph
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{ID: uuid.NewString(), StartTime: startTime}

	fail := func(status BuildStatus, outcome metrics.BuildOutcome, err error) (*BuildResult, error) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		s.recorder.IncBuildOutcome(outcome)
		s.recorder.ObserveBuildDuration(result.Duration)
		return result, err
	}

	cfg := req.Config
	if cfg == nil {
		return fail(BuildStatusFailed, metrics.BuildFailed, ferrors.ConfigError("config required").Build())
	}

	logger := s.logger.With(logfields.BuildID(result.ID))
	b := &buildState{
		id:        result.ID,
		cfg:       cfg,
		logger:    logger,
		docsDir:   cfg.DocsPath(),
		outputDir: cfg.OutputPath(),
		cacheDir:  cfg.CachePath(),
		graph:     linkgraph.New(),
	}
	result.OutputPath = b.outputDir

	remote, err := s.remoteCache(cfg)
	if err != nil {
		return fail(BuildStatusFailed, metrics.BuildFailed, err)
	}
	defer remote.Purge()

	// Stage 1: prepare cache dir
	stageStart := time.Now()
	logger.Info("Starting build", logfields.Path(b.docsDir), logfields.Stage("prepare"))
	if cfg.Build.RemoveCache {
		if err := cleanCache(cfg); err != nil {
			return fail(BuildStatusFailed, metrics.BuildFailed, err)
		}
	}
	if b.mapper, err = NewMapper(cfg); err != nil {
		return fail(BuildStatusFailed, metrics.BuildFailed, err)
	}
	s.recorder.ObserveStageDuration("prepare", time.Since(stageStart))

	// Stage 2: discovery
	stageStart = time.Now()
	exclude := []string{b.outputDir, b.cacheDir}
	if b.mapper != nil {
		exclude = append(exclude, b.mapper.OutputDir())
	}
	files, err := discovery.Discover(b.docsDir, discovery.Options{Exclude: exclude, Logger: logger})
	if err != nil {
		return fail(BuildStatusFailed, metrics.BuildFailed, stderrors.Join(ErrDiscovery, err))
	}
	var prints *compiled.Fingerprints
	if b.mapper != nil {
		prints = compiled.NewFingerprints(cfg.Path(cfg.Compiled.HashesDir), b.docsDir)
	}
	pages, stale, err := loadPages(discovery.Pages(files), b.mapper, prints, logger)
	if err != nil {
		return fail(BuildStatusFailed, metrics.BuildFailed, stderrors.Join(ErrDiscovery, err))
	}
	result.StaleCompiled = stale
	s.recorder.ObserveStageDuration("discovery", time.Since(stageStart))
	logger.Info("Discovered documentation", logfields.Count(len(pages)), logfields.Stage("discovery"))

	// Stage 3: alias index
	stageStart = time.Now()
	if b.aliases, err = s.buildIndex(b, pages); err != nil {
		return fail(BuildStatusFailed, metrics.BuildFailed, stderrors.Join(ErrArtifacts, err))
	}
	s.recorder.ObserveStageDuration("index", time.Since(stageStart))

	// Stage 4: pages
	stageStart = time.Now()
	strict := *cfg.Snippets.CheckPaths && !req.Options.Permissive
	if b.engine, err = NewSnippetEngine(cfg, b.mapper, remote, strict, s.recorder, logger); err != nil {
		return fail(BuildStatusFailed, metrics.BuildFailed, err)
	}
	outcomes, err := s.renderPages(ctx, b, pages, req.Options.Concurrency)
	if err != nil {
		if ctx.Err() != nil {
			return fail(BuildStatusCancelled, metrics.BuildCanceled, ctx.Err())
		}
		return fail(BuildStatusFailed, metrics.BuildFailed, stderrors.Join(ErrPage, err))
	}
	for _, o := range outcomes {
		result.Broken = append(result.Broken, o.broken...)
		result.Todos = append(result.Todos, o.todos...)
	}
	result.Pages = len(pages)
	s.recorder.IncPagesRendered(len(pages))

	assets := discovery.Assets(files)
	if err := copyAssets(assets, b.outputDir); err != nil {
		return fail(BuildStatusFailed, metrics.BuildFailed, err)
	}
	result.Assets = len(assets)
	s.recorder.ObserveStageDuration("render", time.Since(stageStart))

	// Stage 5: artifacts
	stageStart = time.Now()
	result.Graph = b.graph.Entries()
	if err := s.writeArtifacts(ctx, b); err != nil {
		return fail(BuildStatusFailed, metrics.BuildFailed, stderrors.Join(ErrArtifacts, err))
	}
	s.persist(ctx, b, result)
	s.publish(ctx, b, result)
	s.recorder.ObserveStageDuration("artifacts", time.Since(stageStart))

	result.Status = BuildStatusSuccess
	outcome := metrics.BuildSuccess
	if len(result.Broken) > 0 || len(result.StaleCompiled) > 0 {
		result.Status = BuildStatusWarning
		outcome = metrics.BuildWarning
	}
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	s.recorder.IncBuildOutcome(outcome)
	s.recorder.ObserveBuildDuration(result.Duration)

	logger.Info("Build finished",
		slog.String("outcome", string(result.Status)),
		logfields.Count(result.Pages),
		slog.Int("links", result.Links()),
		slog.Int("broken", len(result.Broken)),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
	return result, nil
}

// buildIndex registers navigation names and page aliases, then writes
// nodes.json and aliases.json.
func (s *DefaultBuildService) buildIndex(b *buildState, pages []*page) (*alias.Resolver, error) {
	var entries []nav.Entry
	if b.cfg.HasNav() {
		var err error
		if entries, err = nav.Parse(&b.cfg.Nav); err != nil {
			return nil, err
		}
	} else {
		np := make([]nav.Page, 0, len(pages))
		for _, p := range pages {
			np = append(np, nav.Page{Path: p.file.Rel, Title: p.title})
		}
		entries = nav.FromPages(np)
	}

	pairs := nav.Pairs(entries)
	if b.mapper != nil {
		for i := range pairs {
			pairs[i].Path = b.mapper.PagePath(pairs[i].Path)
		}
	}

	r := alias.New(b.cfg.Site.URL, b.logger)
	r.SeedNav(pairs)
	for _, p := range pages {
		r.AddPage(alias.Page{Path: p.pagePath, Alias: p.doc.Meta.Alias, Title: p.title})
	}
	if err := r.WriteNodes(b.cacheDir); err != nil {
		return nil, err
	}
	if err := r.WriteAliases(b.cacheDir); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *DefaultBuildService) renderPages(ctx context.Context, b *buildState, pages []*page, concurrency int) ([]pageOutcome, error) {
	if concurrency <= 0 {
		concurrency = b.cfg.Build.Concurrency
	}
	outcomes := make([]pageOutcome, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o, err := s.renderPage(gctx, b, p)
			if err != nil {
				return err
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Entries are recorded in page order so graph artifacts are stable across builds.
	for _, o := range outcomes {
		if o.entry != nil {
			b.graph.Record(*o.entry)
		}
	}
	return outcomes, nil
}

func (s *DefaultBuildService) writeArtifacts(ctx context.Context, b *buildState) error {
	if err := b.graph.WriteGraph(b.cacheDir); err != nil {
		return err
	}
	if err := b.graph.WriteSiteDiagram(b.cacheDir); err != nil {
		return err
	}
	if err := b.graph.WriteSiteDOT(ctx, b.cacheDir, b.cfg.Wikilinks.GraphSVG); err != nil {
		if !b.cfg.Wikilinks.GraphSVG {
			return err
		}
		b.logger.Warn("Failed to render link graph SVG", logfields.Error(err),
			logfields.Path(filepath.Join(b.cacheDir, linkgraph.DiagramsDir)))
	}
	return nil
}

// persist saves the graph to the store. Store failures never fail the build.
func (s *DefaultBuildService) persist(ctx context.Context, b *buildState, result *BuildResult) {
	store, err := s.storeFactory(b.cfg)
	if err != nil {
		b.logger.Warn("Graph store unavailable", logfields.Error(err))
		return
	}
	if store == nil {
		return
	}
	defer func() { _ = store.Close() }()
	err = store.SaveBuild(ctx, graphstore.Build{
		ID:      b.id,
		Started: result.StartTime,
		Pages:   result.Pages,
		Broken:  len(result.Broken),
		Nodes:   b.aliases.Nodes(),
		Entries: result.Graph,
	})
	if err != nil {
		b.logger.Warn("Failed to persist link graph", logfields.Error(err))
	}
}

// publish emits broken-wikilink events. Publishing failures never fail the build.
func (s *DefaultBuildService) publish(ctx context.Context, b *buildState, result *BuildResult) {
	if len(result.Broken) == 0 {
		return
	}
	pub, err := s.publisherFactory(b.cfg, b.logger)
	if err != nil {
		b.logger.Warn("Event publisher unavailable", logfields.Error(err))
		return
	}
	defer func() { _ = pub.Close() }()

	evts := make([]events.BrokenWikilinkEvent, 0, len(result.Broken))
	for _, br := range result.Broken {
		evts = append(evts, events.BrokenWikilinkEvent{
			Target:     br.Target,
			SourcePath: br.Page,
			SourceURL:  alias.HTML(b.aliases.URL(br.Page)),
			BuildID:    b.id,
			SiteURL:    b.cfg.Site.URL,
			Timestamp:  result.StartTime,
		})
	}
	if err := pub.PublishBrokenWikilinks(ctx, evts); err != nil {
		b.logger.Warn("Failed to publish broken wikilink events", logfields.Error(err), logfields.Count(len(evts)))
	}
}
