package alias

import (
	"encoding/json"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// Artifact file names written to the cache dir.
const (
	NodesFile   = "nodes.json"
	AliasesFile = "aliases.json"
)

// NodesDocument is the on-disk form of nodes.json.
type NodesDocument struct {
	Nodes map[string]Node `json:"nodes"`
}

// AliasesDocument is the on-disk form of aliases.json.
type AliasesDocument struct {
	AliasesFor map[string][]string `json:"aliases_for"`
	URLFor     map[string][]string `json:"url_for"`
}

// WriteNodes replaces dir/nodes.json.
func (r *Resolver) WriteNodes(dir string) error {
	return writeJSON(filepath.Join(dir, NodesFile), NodesDocument{Nodes: r.Nodes()})
}

// WriteAliases replaces dir/aliases.json.
func (r *Resolver) WriteAliases(dir string) error {
	aliasesFor, urlFor := r.Aliases()
	return writeJSON(filepath.Join(dir, AliasesFile), AliasesDocument{AliasesFor: aliasesFor, URLFor: urlFor})
}

// ReadAliases loads an aliases.json written by WriteAliases.
func ReadAliases(dir string) (AliasesDocument, error) {
	var doc AliasesDocument
	err := readJSON(filepath.Join(dir, AliasesFile), &doc)
	return doc, err
}

// ReadNodes loads a nodes.json written by WriteNodes.
func ReadNodes(dir string) (NodesDocument, error) {
	var doc NodesDocument
	err := readJSON(filepath.Join(dir, NodesFile), &doc)
	return doc, err
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode artifact").
			WithContext("path", path).Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create cache dir").
			WithContext("path", filepath.Dir(path)).Build()
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write artifact").
			WithContext("path", path).Build()
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ferrors.NewError(ferrors.CategoryNotFound, "artifact not built yet").
				WithContext("path", path).Build()
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read artifact").
			WithContext("path", path).Build()
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "corrupt artifact").
			WithContext("path", path).Build()
	}
	return nil
}
