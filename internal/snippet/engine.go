package snippet

import (
	"context"
	"log/slog"
	"strings"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/metrics"
)

// Engine expands transclusion markers.
//
// An Engine holds no per-document state and may be shared by concurrent
// expansions; each top-level call owns its visited set.
type Engine struct {
	resolver   *Resolver
	strict     bool
	tabLength  int
	autoAppend []string
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrict makes the first failed reference abort expansion. Otherwise
// failures are logged and replaced by nothing.
func WithStrict(strict bool) Option { return func(e *Engine) { e.strict = strict } }

// WithTabLength sets the tab stop used when propagating indentation.
func WithTabLength(n int) Option { return func(e *Engine) { e.tabLength = n } }

// WithAutoAppend adds references included at the end of every document.
func WithAutoAppend(refs []string) Option {
	return func(e *Engine) { e.autoAppend = append([]string(nil), refs...) }
}

func WithRecorder(r metrics.Recorder) Option { return func(e *Engine) { e.recorder = r } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// NewEngine creates an Engine over resolver.
func NewEngine(resolver *Resolver, opts ...Option) *Engine {
	e := &Engine{
		resolver:  resolver,
		strict:    true,
		tabLength: 4,
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// expansion is the state of one top-level call.
type expansion struct {
	page    string
	visited map[string]bool
}

// Expand expands lines belonging to the document identified by docID.
// docID is marked as visited so the document never includes itself.
func (e *Engine) Expand(ctx context.Context, lines []string, docID string) ([]string, error) {
	st := &expansion{page: docID, visited: map[string]bool{}}
	if docID != "" {
		st.visited[docID] = true
	}
	return e.expand(ctx, st, lines, false)
}

// ExpandDocument is Expand with the configured auto-append references added
// as a trailing block.
func (e *Engine) ExpandDocument(ctx context.Context, lines []string, docID string) ([]string, error) {
	if len(e.autoAppend) > 0 {
		lines = append(append([]string(nil), lines...), autoAppendBlock(e.autoAppend)...)
	}
	return e.Expand(ctx, lines, docID)
}

func autoAppendBlock(refs []string) []string {
	return strings.Split("\n\n-8<-\n"+strings.Join(refs, "\n\n")+"\n-8<-\n", "\n")
}

func (e *Engine) expand(ctx context.Context, st *expansion, lines []string, fromURL bool) ([]string, error) {
	out := make([]string, 0, len(lines))
	block := false
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ml := scanMarkerLine(line)
		var indent, raw string
		switch {
		case ml.kind != lineText && ml.escaped:
			out = append(out, strings.Replace(line, ";", "", 1))
			continue
		case ml.kind == lineBlock:
			block = !block
			continue
		case ml.kind == lineInline:
			if block {
				continue
			}
			indent, raw = ml.indent, ml.ref
		case !block:
			out = append(out, line)
			continue
		default:
			s := strings.TrimSuffix(line, "\r")
			rest := strings.TrimLeft(s, " \t")
			indent, raw = s[:len(s)-len(rest)], strings.TrimSpace(rest)
			if raw == "" {
				out = append(out, "")
				continue
			}
		}

		if strings.HasPrefix(raw, ";") {
			continue
		}
		included, err := e.include(ctx, st, raw, fromURL)
		if err != nil {
			return nil, err
		}
		prefix := expandTabs(indent, e.tabLength)
		for _, l := range included {
			out = append(out, prefix+l)
		}
	}
	return out, nil
}

func (e *Engine) include(ctx context.Context, st *expansion, raw string, fromURL bool) ([]string, error) {
	ref := ParseReference(raw)
	if ref.Path == "" {
		return e.fail(st, ref, KindLocal, missingSnippet(raw))
	}
	if fromURL && !ref.IsURL() {
		return nil, nil
	}

	loc, err := e.resolver.Locate(ref)
	if err != nil {
		return e.fail(st, ref, loc.Kind, err)
	}
	if st.visited[loc.ID] {
		e.recorder.IncSnippetCycle()
		e.logger.Debug("Skipping snippet already being expanded",
			logfields.Page(st.page), logfields.Snippet(raw), logfields.Path(loc.ID))
		return nil, nil
	}

	lines, err := e.resolver.Load(ctx, loc, ref)
	if err != nil {
		return e.fail(st, ref, loc.Kind, err)
	}

	st.visited[loc.ID] = true
	defer delete(st.visited, loc.ID)

	nested, err := e.expand(ctx, st, lines, loc.Kind == KindRemote)
	if err != nil {
		return nil, err
	}
	e.recorder.IncSnippet(string(loc.Kind), metrics.ResultSuccess)
	return nested, nil
}

// fail applies the strict or permissive policy to a failed reference.
func (e *Engine) fail(st *expansion, ref Reference, kind Kind, err error) ([]string, error) {
	e.recorder.IncSnippet(string(kind), metrics.ResultMissing)
	if c, ok := err.(*ferrors.ClassifiedError); ok {
		err = c.WithContext("page", st.page)
	}
	if e.strict {
		return nil, err
	}
	attrs := []any{logfields.Page(st.page), logfields.Snippet(ref.Raw), logfields.Error(err)}
	if ref.Section != "" {
		attrs = append(attrs, logfields.Section(ref.Section))
	}
	e.logger.Warn("Snippet could not be included", attrs...)
	return nil, nil
}
