// Package metrics provides Prometheus metrics for hnsum.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled requests by entry point and outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hnsum",
			Name:      "requests_total",
			Help:      "Total number of pipeline requests",
		},
		[]string{"entry", "outcome"},
	)

	// InferenceAttempts counts individual calls to the model.
	InferenceAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hnsum",
			Name:      "inference_attempts_total",
			Help:      "Total number of model invocation attempts",
		},
		[]string{"mode", "status"},
	)

	// InferenceDuration measures a single model attempt.
	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hnsum",
			Name:      "inference_duration_seconds",
			Help:      "Duration of model invocation attempts in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)

	// FetchDuration measures source page fetches.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hnsum",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of source page fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// StreamedTokens counts token events forwarded to callers.
	StreamedTokens = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hnsum",
			Name:      "streamed_tokens_total",
			Help:      "Total number of token events relayed to callers",
		},
	)
)

// transient is implemented by errors that usually clear on their own.
type transient interface {
	Transient() bool
}

func status(err error) string {
	if err == nil {
		return "ok"
	}
	var t transient
	if errors.As(err, &t) && t.Transient() {
		return "transient_error"
	}
	return "error"
}

// RecordInference records one model attempt.
func RecordInference(mode string, seconds float64, err error) {
	InferenceAttempts.WithLabelValues(mode, status(err)).Inc()
	InferenceDuration.WithLabelValues(mode).Observe(seconds)
}

// RecordFetch records one page fetch.
func RecordFetch(seconds float64, err error) {
	FetchDuration.WithLabelValues(status(err)).Observe(seconds)
}

// RecordRequest records the outcome of an entry point.
func RecordRequest(entry, outcome string) {
	RequestsTotal.WithLabelValues(entry, outcome).Inc()
}

// RecordStreamedTokens adds n relayed token events.
func RecordStreamedTokens(n int) {
	StreamedTokens.Add(float64(n))
}
