package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aura_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Mood classification, one observation per upstream attempt
	ClassificationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_mood_classification_attempts_total",
			Help: "Classification attempts by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // endpoint: primary|fallback, outcome: success|failure
	)

	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aura_mood_classification_duration_seconds",
			Help:    "Upstream classification call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"endpoint"},
	)

	ClassificationResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_mood_classification_results_total",
			Help: "Final classification outcomes",
		},
		[]string{"source", "label"}, // source: primary|fallback|unavailable
	)

	MoodGateRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aura_mood_gate_rejections_total",
			Help: "Mood operations rejected because the feature is disabled for the user",
		},
	)

	// Trending cache
	TrendingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aura_trending_cache_hits_total",
			Help: "Trending cache hits",
		},
	)

	TrendingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aura_trending_cache_misses_total",
			Help: "Trending cache misses",
		},
	)

	// Storage
	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_storage_errors_total",
			Help: "Storage errors by SQLSTATE class",
		},
		[]string{"class"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_rate_limited_total",
			Help: "Requests rejected by the per-user rate limiter",
		},
		[]string{"route"},
	)
)

func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordClassificationAttempt(endpoint string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ClassificationAttempts.WithLabelValues(endpoint, outcome).Inc()
	ClassificationDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordClassificationResult(source, label string) {
	ClassificationResults.WithLabelValues(source, label).Inc()
}

func RecordGateRejection() {
	MoodGateRejections.Inc()
}

func RecordTrendingCache(hit bool) {
	if hit {
		TrendingCacheHits.Inc()
		return
	}
	TrendingCacheMisses.Inc()
}

func RecordStorageError(class string) {
	if class == "" {
		class = "unknown"
	}
	StorageErrors.WithLabelValues(class).Inc()
}

func RecordRateLimited(route string) {
	RateLimited.WithLabelValues(route).Inc()
}
