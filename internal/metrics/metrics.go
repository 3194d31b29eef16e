// Package metrics holds the prometheus collectors of the variant cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "resizer"
	subsystem = "cache"
)

const (
	// StatusSuccess signifies a derivation that ended with a cached file.
	StatusSuccess = "success"
	// StatusFailure signifies a derivation that failed.
	StatusFailure = "failure"
)

type Metrics struct {
	requests           *prometheus.CounterVec
	derivations        *prometheus.CounterVec
	derivationDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Number of resolved variant requests by cache status.",
		}, []string{"status"}),
		derivations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "derivations_total",
			Help:      "Number of variants derived from originals by result.",
		}, []string{"result"}),
		derivationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "derivation_duration_seconds",
			Help:      "Time spent decoding, resizing, encoding and persisting a variant.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
	}
}

// Request counts a resolve call. Safe to call on a nil receiver.
func (m *Metrics) Request(status string) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(status).Inc()
}

// Derivation records the outcome of one derivation. Safe to call on a nil receiver.
func (m *Metrics) Derivation(result string, took time.Duration) {
	if m == nil {
		return
	}

	m.derivations.WithLabelValues(result).Inc()
	m.derivationDuration.Observe(took.Seconds())
}
