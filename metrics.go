package opuspdf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of a ProcessFile request, used as metric label values.
const (
	OutcomeCacheHit           = "cache_hit"
	OutcomeGenerated          = "generated"
	OutcomeFallbackNotPDF     = "fallback_not_pdf"
	OutcomeFallbackMissing    = "fallback_missing_file"
	OutcomeFallbackNoTemplate = "fallback_no_template"
	OutcomeFallbackRender     = "fallback_render"
	OutcomeFallbackMerge      = "fallback_merge"
	OutcomeFallbackCache      = "fallback_cache"
)

type metrics struct {
	requests       *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	mergeFailures  prometheus.Counter
}

// newMetrics registers the cover collectors on reg. A nil reg keeps them
// on a private registry so nothing is exported.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opuspdf",
			Name:      "cover_requests_total",
			Help:      "Cover file requests by outcome.",
		}, []string{"outcome"}),
		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opuspdf",
			Name:      "cover_render_duration_seconds",
			Help:      "Time spent rendering a cover PDF.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		}, []string{"engine", "result"}),
		mergeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "opuspdf",
			Name:      "cover_merge_failures_total",
			Help:      "Failed merges of a cover with its original file.",
		}),
	}
}

func (m *metrics) outcome(name string) {
	m.requests.WithLabelValues(name).Inc()
}
