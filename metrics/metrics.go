package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of one explainer engine.
type Metrics struct {
	ClassifierCalls prometheus.Counter
	ClassifierRows  prometheus.Counter

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	ScoreSeconds *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. Engines sharing a
// registry pass one wrapped with a distinct engine label.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ClassifierCalls: f.NewCounter(prometheus.CounterOpts{
			Name: "sbe_classifier_calls_total",
			Help: "Number of classifier invocations (single or batched)",
		}),
		ClassifierRows: f.NewCounter(prometheus.CounterOpts{
			Name: "sbe_classifier_rows_total",
			Help: "Number of rows passed to the classifier",
		}),
		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sbe_cache_hits_total",
				Help: "Memo lookups served from cache",
			},
			[]string{"cache"},
		),
		CacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sbe_cache_misses_total",
				Help: "Memo lookups that had to compute",
			},
			[]string{"cache"},
		),
		ScoreSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sbe_score_seconds",
				Help:    "Time spent computing one score",
				Buckets: prometheus.ExponentialBuckets(1e-5, 4, 12),
			},
			[]string{"kind"},
		),
	}
}
