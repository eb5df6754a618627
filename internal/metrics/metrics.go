// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "neurobank"

var (
	// FlashcardReviews counts graded reviews by outcome (easy, medium, hard, custom).
	FlashcardReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flashcard_reviews_total",
		Help:      "Flashcard reviews by outcome.",
	}, []string{"outcome"})

	// FlashcardsRefreshed counts cards moved back to remaining by the due sweep.
	FlashcardsRefreshed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flashcards_refreshed_total",
		Help:      "Completed flashcards returned to the remaining pile.",
	})

	// StatsRecorded counts daily counter increments by kind.
	StatsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_recorded_total",
		Help:      "Daily statistics increments by kind.",
	}, []string{"kind"})

	// StatsVerifications counts verify runs by result (clean, repaired, failed).
	StatsVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_verifications_total",
		Help:      "Statistics verification runs by result.",
	}, []string{"result"})

	// AIRequests counts text generation calls by operation and result.
	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_requests_total",
		Help:      "Text generation requests by operation and result.",
	}, []string{"operation", "result"})

	// JobsProcessed counts background jobs by name and result.
	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_processed_total",
		Help:      "Background jobs by name and result.",
	}, []string{"job", "result"})

	// JobQueueDepth reports pending jobs in the maintenance pool.
	JobQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "job_queue_depth",
		Help:      "Jobs waiting in the maintenance queue.",
	})

	// HTTPRequests counts served requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Result maps an error to the "ok"/"error" label used by the counters above.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
