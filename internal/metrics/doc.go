// Package metrics provides the observability hooks for docweave builds.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never needs nil checks at call sites:
//
//	engine := snippet.NewEngine(resolver, snippet.WithRecorder(recorder))
//
// NewPrometheusRecorder activates Prometheus collection against a registry;
// HTTPHandler exposes that registry on the preview server.
package metrics
