package build

import (
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/discovery"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// cleanCache empties the cache dir. Generated compiled output and recorded
// fingerprints are kept since docweave cannot regenerate them.
func cleanCache(cfg *config.Config) error {
	dir := cfg.CachePath()
	keep := map[string]bool{
		filepath.Clean(cfg.Path(cfg.Compiled.OutputDir)): true,
		filepath.Clean(cfg.Path(cfg.Compiled.HashesDir)): true,
	}
	if cfg.Store.SQLitePath != "" {
		keep[filepath.Clean(cfg.Path(cfg.Store.SQLitePath))] = true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read cache dir").
			WithContext("path", dir).Build()
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if keep[filepath.Clean(p)] {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to clear cache dir").
				WithContext("path", p).Build()
		}
	}
	return nil
}

// copyAssets copies static files into the site dir, preserving their layout.
func copyAssets(assets []discovery.File, outputDir string) error {
	for _, a := range assets {
		dst := filepath.Join(outputDir, filepath.FromSlash(a.Rel))
		if err := copyFile(a.Abs, dst); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to copy asset").
				WithContext("path", a.Rel).Build()
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
