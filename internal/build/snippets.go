package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docweave/internal/compiled"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/discovery"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/metrics"
	"git.home.luguber.info/inful/docweave/internal/snippet"
)

// NewRemoteCache builds the download cache described by cfg. The cache is
// meant to outlive a single build and be purged between builds.
func NewRemoteCache(cfg *config.Config, recorder metrics.Recorder) (*snippet.RemoteCache, error) {
	s := cfg.Snippets
	return snippet.NewRemoteCache(snippet.RemoteOptions{
		Timeout:   s.URLTimeout,
		MaxSize:   s.URLMaxSize,
		Headers:   s.URLRequestHeaders,
		CacheSize: s.CacheSize,
		Encoding:  s.Encoding,
		Recorder:  recorder,
	})
}

// NewMapper returns the compiled-source mapper, or nil when compiled sources
// are disabled.
func NewMapper(cfg *config.Config) (*compiled.Mapper, error) {
	if !cfg.Compiled.Enabled {
		return nil, nil
	}
	return compiled.NewMapper(cfg.DocsPath(), cfg.Path(cfg.Compiled.OutputDir), cfg.Compiled.Suffix)
}

// BasePaths returns the snippet search path: configured entries resolved
// against the config root, followed by auto-discovered directories.
func BasePaths(cfg *config.Config) ([]string, error) {
	paths := make([]string, 0, len(cfg.Snippets.BasePath))
	for _, p := range cfg.Snippets.BasePath {
		paths = append(paths, cfg.Path(p))
	}
	if cfg.Snippets.AutoBaseDirs {
		dirs, err := discovery.AutoBaseDirs(cfg.Root)
		if err != nil {
			return nil, err
		}
		for _, d := range dirs {
			paths = append(paths, filepath.Join(cfg.Root, d))
		}
	}
	return paths, nil
}

// NewSnippetEngine wires a snippet engine from cfg. mapper and remote may be nil.
func NewSnippetEngine(cfg *config.Config, mapper *compiled.Mapper, remote *snippet.RemoteCache,
	strict bool, recorder metrics.Recorder, logger *slog.Logger,
) (*snippet.Engine, error) {
	bases, err := BasePaths(cfg)
	if err != nil {
		return nil, err
	}
	opts := snippet.ResolverOptions{
		BasePaths:   bases,
		Restrict:    *cfg.Snippets.RestrictBasePath,
		Encoding:    cfg.Snippets.Encoding,
		URLDownload: *cfg.Snippets.URLDownload,
		Dedent:      *cfg.Snippets.DedentSubsections,
		Remote:      remote,
	}
	if mapper != nil {
		opts.Redirector = mapper
	}
	resolver, err := snippet.NewResolver(opts)
	if err != nil {
		return nil, err
	}
	return snippet.NewEngine(resolver,
		snippet.WithStrict(strict),
		snippet.WithTabLength(cfg.Snippets.TabLength),
		snippet.WithAutoAppend(cfg.Snippets.AutoAppend),
		snippet.WithRecorder(recorder),
		snippet.WithLogger(logger),
	), nil
}

// ExpandFile expands the snippets of a single file and returns the result.
// Front matter is kept. Compiled sources are read from their generated output
// when it exists.
func ExpandFile(ctx context.Context, cfg *config.Config, path string, strict bool, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mapper, err := NewMapper(cfg)
	if err != nil {
		return "", err
	}
	remote, err := NewRemoteCache(cfg, metrics.NoopRecorder{})
	if err != nil {
		return "", err
	}
	engine, err := NewSnippetEngine(cfg, mapper, remote, strict, metrics.NoopRecorder{}, logger)
	if err != nil {
		return "", err
	}

	read := path
	var data []byte
	if mapper != nil && mapper.IsCompiled(path) {
		if out, ok := mapper.OutputPath(path); ok {
			if _, statErr := os.Stat(out); statErr == nil {
				read = out
			}
		}
	}
	data, err = os.ReadFile(read)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read file").
			WithContext("path", path).Build()
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	out, err := engine.ExpandDocument(ctx, lines, snippet.DocumentID(read))
	if err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}
