package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docweave"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	pages         prom.Counter
	snippets      *prom.CounterVec
	cycles        prom.Counter
	remoteCache   *prom.CounterVec
	wikilinks     *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil registry gets a fresh private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		pages: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Pages rendered across builds",
		}),
		snippets: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "snippets_total",
			Help:      "Transcluded references by kind and result",
		}, []string{"kind", "result"}),
		cycles: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "snippet_cycles_skipped_total",
			Help:      "References skipped because they were already being expanded",
		}),
		remoteCache: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "remote_snippet_cache_total",
			Help:      "Remote snippet cache lookups by result",
		}, []string{"result"}),
		wikilinks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "wikilinks_total",
			Help:      "Wikilinks by resolution result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome, pr.pages,
		pr.snippets, pr.cycles, pr.remoteCache, pr.wikilinks)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncPagesRendered(n int) {
	if p == nil {
		return
	}
	p.pages.Add(float64(n))
}

func (p *PrometheusRecorder) IncSnippet(kind string, result ResultLabel) {
	if p == nil {
		return
	}
	p.snippets.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) IncSnippetCycle() {
	if p == nil {
		return
	}
	p.cycles.Inc()
}

func (p *PrometheusRecorder) IncRemoteCache(hit bool) {
	if p == nil {
		return
	}
	p.remoteCache.WithLabelValues(hitLabel(hit)).Inc()
}

func (p *PrometheusRecorder) IncWikilink(resolved bool) {
	if p == nil {
		return
	}
	res := "broken"
	if resolved {
		res = "resolved"
	}
	p.wikilinks.WithLabelValues(res).Inc()
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
