// Package discovery finds the pages and assets of a docs directory.
package discovery

import (
	"bufio"
	"bytes"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/logfields"
)

// IgnoreFiles are read from the docs dir root, in order.
var IgnoreFiles = []string{".gitignore", ".docignore"}

// File is a discovered page or asset.
type File struct {
	// Abs is the absolute path on disk.
	Abs string
	// Rel is slash-separated and relative to the docs dir.
	Rel     string
	IsAsset bool
	Size    int64
	ModTime int64
}

// Options tune a discovery walk.
type Options struct {
	// Exclude lists absolute directories that are never entered, such as the
	// compiled output dir when it lives under the docs dir.
	Exclude []string
	Logger  *slog.Logger
}

// Discover walks docsDir and returns its pages and assets sorted by Rel.
func Discover(docsDir string, opts Options) ([]File, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	root, err := filepath.Abs(docsDir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "invalid docs dir").WithContext("path", docsDir).Build()
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, ferrors.NewError(ferrors.CategoryNotFound, "docs dir does not exist").WithContext("path", root).Build()
	}

	matcher, err := LoadIgnore(root)
	if err != nil {
		return nil, err
	}
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, e := range opts.Exclude {
		if abs, err := filepath.Abs(e); err == nil {
			excluded[abs] = true
		}
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		name := d.Name()
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")

		if d.IsDir() {
			if strings.HasPrefix(name, ".") || excluded[path] || matcher.Match(parts, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || matcher.Match(parts, false) {
			return nil
		}
		md, asset := IsMarkdown(name), IsAsset(name)
		if !md && !asset {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		files = append(files, File{
			Abs:     path,
			Rel:     filepath.ToSlash(rel),
			IsAsset: asset,
			Size:    fi.Size(),
			ModTime: fi.ModTime().UnixNano(),
		})
		logger.Debug("Discovered file", logfields.Path(filepath.ToSlash(rel)), slog.Bool("asset", asset))
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to walk docs dir").WithContext("path", root).Build()
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// Pages filters files down to Markdown pages.
func Pages(files []File) []File {
	var out []File
	for _, f := range files {
		if !f.IsAsset {
			out = append(out, f)
		}
	}
	return out
}

// Assets filters files down to non-Markdown assets.
func Assets(files []File) []File {
	var out []File
	for _, f := range files {
		if f.IsAsset {
			out = append(out, f)
		}
	}
	return out
}

// LoadIgnore builds a matcher from the ignore files at the docs root. Missing
// files are fine.
func LoadIgnore(root string) (gitignore.Matcher, error) {
	var patterns []gitignore.Pattern
	for _, name := range IgnoreFiles {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read ignore file").
				WithContext("path", filepath.Join(root, name)).Build()
		}
		patterns = append(patterns, ParsePatterns(data)...)
	}
	return gitignore.NewMatcher(patterns), nil
}

// ParsePatterns parses gitignore-style lines.
func ParsePatterns(data []byte) []gitignore.Pattern {
	var patterns []gitignore.Pattern
	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		line := strings.TrimRight(s.Text(), " \r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns
}

// IsMarkdown reports whether name is a Markdown page.
func IsMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

// IsAsset reports whether name is a static asset copied into the site.
func IsAsset(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".bmp", ".ico",
		".pdf", ".mp4", ".webm", ".ogv",
		".css", ".js", ".csv", ".json", ".yaml", ".yml", ".xml":
		return true
	}
	return false
}

// excludedBaseDirPrefixes name directories never added as snippet base paths.
var excludedBaseDirPrefixes = []string{".", "__", "site", "env", "venv"}

// AutoBaseDirs lists every directory below root, relative to root, except
// those whose name starts with one of the excluded prefixes. Excluded
// directories are not descended into.
func AutoBaseDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		for _, p := range excludedBaseDirPrefixes {
			if strings.HasPrefix(d.Name(), p) {
				return filepath.SkipDir
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		dirs = append(dirs, rel)
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to list base dirs").WithContext("path", root).Build()
	}
	return dirs, nil
}
