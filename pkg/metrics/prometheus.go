// Package metrics exposes the worker's Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all advisor metrics.
type Metrics struct {
	EnvelopesTotal   *prometheus.CounterVec
	SuggestionsTotal prometheus.Counter
	ErrorsTotal      prometheus.Counter
	DiscardedTotal   *prometheus.CounterVec

	ModelLatency      *prometheus.HistogramVec
	ModelRetriesTotal *prometheus.CounterVec
	ValidationFailed  *prometheus.CounterVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	PromptTokens prometheus.Histogram
}

// New registers the metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on the given registerer; tests pass their
// own registry to avoid duplicate registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EnvelopesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_envelopes_total",
				Help: "Total number of inbound envelopes by kind",
			},
			[]string{"kind"},
		),
		SuggestionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_suggestions_total",
				Help: "Total number of SUGGESTION envelopes emitted",
			},
		),
		ErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_errors_total",
				Help: "Total number of ERROR envelopes emitted",
			},
		),
		DiscardedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_discarded_total",
				Help: "Total number of discarded inbound messages",
			},
			[]string{"reason"},
		),
		ModelLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_model_latency_seconds",
				Help:    "Model backend call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		ModelRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_model_retries_total",
				Help: "Total retried model attempts by failure class",
			},
			[]string{"reason"},
		),
		ValidationFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_validation_failures_total",
				Help: "Total response validation failures by stage",
			},
			[]string{"stage"},
		),
		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_cache_hits_total",
				Help: "Total response cache hits",
			},
		),
		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_cache_misses_total",
				Help: "Total response cache misses",
			},
		),
		PromptTokens: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "advisor_prompt_tokens",
				Help:    "Token count of prompts sent to the model backend",
				Buckets: prometheus.ExponentialBuckets(64, 2, 10),
			},
		),
	}
}

// ObserveModelCall records one model backend call.
func (m *Metrics) ObserveModelCall(model string, duration time.Duration) {
	m.ModelLatency.WithLabelValues(model).Observe(duration.Seconds())
}
