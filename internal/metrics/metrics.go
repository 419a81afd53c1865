// Package metrics exposes Prometheus collectors for indexing, change
// detection and answering. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors of one process.
type Metrics struct {
	chunks     *prometheus.CounterVec
	changes    *prometheus.CounterVec
	requests   *prometheus.CounterVec
	confidence prometheus.Histogram
	duration   prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webrag",
			Name:      "chunks_total",
			Help:      "Chunks accepted by the chunking strategy, by strategy.",
		}, []string{"strategy"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webrag",
			Name:      "page_changes_total",
			Help:      "Pages classified by the change detector, by status.",
		}, []string{"status"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webrag",
			Name:      "rag_requests_total",
			Help:      "Answer requests, by outcome (answered, no_context, error).",
		}, []string{"outcome"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "webrag",
			Name:      "rag_confidence",
			Help:      "Confidence of returned answers.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "webrag",
			Name:      "rag_duration_seconds",
			Help:      "End-to-end answer latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.chunks, m.changes, m.requests, m.confidence, m.duration)
	}
	return m
}

// ChunksAccepted counts n accepted chunks for strategy.
func (m *Metrics) ChunksAccepted(strategy string, n int) {
	if m == nil {
		return
	}
	m.chunks.WithLabelValues(strategy).Add(float64(n))
}

// PageClassified counts one change-detector decision.
func (m *Metrics) PageClassified(status string) {
	if m == nil {
		return
	}
	m.changes.WithLabelValues(status).Inc()
}

// Answered records a finished request with its outcome, confidence and start time.
func (m *Metrics) Answered(outcome string, confidence float64, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.Observe(time.Since(start).Seconds())
	if outcome != OutcomeError {
		m.confidence.Observe(confidence)
	}
}

// Request outcomes.
const (
	OutcomeAnswered  = "answered"
	OutcomeNoContext = "no_context"
	OutcomeError     = "error"
)
