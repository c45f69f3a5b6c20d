package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Feedback Assistant Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shipsy",
			Subsystem: "assistant",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shipsy",
			Subsystem: "assistant",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Processed feedback by classification outcome
	FeedbackProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shipsy",
			Subsystem: "assistant",
			Name:      "feedback_processed_total",
			Help:      "Total feedback events processed, by category and priority",
		},
		[]string{"category", "priority"},
	)

	// Feedback pipeline runs that ended in the degraded default result
	FeedbackDegradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shipsy",
			Subsystem: "assistant",
			Name:      "feedback_degraded_total",
			Help:      "Total feedback pipeline runs that returned the degraded default",
		},
	)

	// Store operation failures
	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shipsy",
			Subsystem: "assistant",
			Name:      "store_errors_total",
			Help:      "Total failed store operations, by operation",
		},
		[]string{"op"},
	)

	// Embedding fallbacks
	EmbeddingFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shipsy",
			Subsystem: "assistant",
			Name:      "embedding_fallback_total",
			Help:      "Total embeddings produced by the local hash fallback",
		},
	)

	// Context assembly duration
	ContextAssemblyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "shipsy",
			Subsystem: "assistant",
			Name:      "context_assembly_duration_seconds",
			Help:      "Context assembly duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2},
		},
	)

	// LLM completion duration
	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "shipsy",
			Subsystem: "assistant",
			Name:      "completion_duration_seconds",
			Help:      "Chat completion duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)
)

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordFeedback records a processed feedback event
func RecordFeedback(category, priority string) {
	FeedbackProcessedTotal.WithLabelValues(category, priority).Inc()
}

// RecordStoreError records a failed store operation
func RecordStoreError(op string) {
	StoreErrorsTotal.WithLabelValues(op).Inc()
}
