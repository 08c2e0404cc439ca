// Package build provides the canonical build execution pipeline for docweave.
//
// A build discovers the docs tree, registers every page with the alias
// resolver, expands snippets and renders each page with wikilinks resolved,
// then writes the link-graph artifacts. All execution paths (CLI, watch
// loop, tests) route through BuildService.
//
// The package also defines sentinel errors for classifying high-level
// pipeline failures. They should be wrapped with context at the call site.
package build
