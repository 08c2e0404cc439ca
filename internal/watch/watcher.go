// Package watch rebuilds the site when its sources change and refreshes it
// periodically so remote snippets are fetched again.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/logfields"
)

// Filter decides which paths may trigger a rebuild.
type Filter struct {
	// Skip lists absolute directories whose events are ignored, such as the
	// site output and the cache dir.
	Skip []string
	// Allow lists absolute directories inside Skip that are still watched,
	// such as the compiled output dir.
	Allow []string
	// Ignore applies .gitignore/.docignore patterns to paths below IgnoreRoot.
	Ignore     gitignore.Matcher
	IgnoreRoot string
}

// Ignored reports whether events for path should be dropped.
func (f Filter) Ignored(path string) bool {
	return f.ignored(path, false)
}

func (f Filter) ignored(path string, dir bool) bool {
	if shouldIgnoreName(filepath.Base(path)) || f.matchIgnore(path, dir) {
		return true
	}
	for _, a := range f.Allow {
		if within(a, path) {
			return false
		}
	}
	for _, s := range f.Skip {
		if within(s, path) {
			return true
		}
	}
	return false
}

// skipDir reports whether a directory is not worth watching at all.
func (f Filter) skipDir(path string) bool {
	for _, a := range f.Allow {
		if within(a, path) || within(path, a) {
			return false
		}
	}
	return f.ignored(path, true)
}

func (f Filter) matchIgnore(path string, dir bool) bool {
	if f.Ignore == nil || f.IgnoreRoot == "" || path == f.IgnoreRoot || !within(f.IgnoreRoot, path) {
		return false
	}
	rel, err := filepath.Rel(f.IgnoreRoot, path)
	if err != nil {
		return false
	}
	return f.Ignore.Match(strings.Split(filepath.ToSlash(rel), "/"), dir)
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// shouldIgnoreName is true for hidden files and editor temp/swap files.
func shouldIgnoreName(base string) bool {
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")
}

// Watcher reports filesystem changes under a set of roots.
type Watcher struct {
	fsw    *fsnotify.Watcher
	filter Filter
	logger *slog.Logger
}

// NewWatcher watches every directory below roots that the filter keeps.
// Missing roots are skipped.
func NewWatcher(roots []string, filter Filter, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w := &Watcher{fsw: fsw, filter: filter, logger: logger}
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		if st, err := os.Stat(abs); err != nil || !st.IsDir() {
			continue
		}
		w.addRecursive(abs)
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && w.filter.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// WatchList returns the directories currently watched.
func (w *Watcher) WatchList() []string {
	return w.fsw.WatchList()
}

// Run calls trigger for every relevant change until ctx is done.
func (w *Watcher) Run(ctx context.Context, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev, trigger)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event, trigger func()) {
	if w.filter.Ignored(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addRecursive(ev.Name)
		}
	}
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
