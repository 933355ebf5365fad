// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

/*
Package metrics defines the Prometheus collectors exported at /metrics.

Groups:
  - api_*: request count, latency and in-flight gauge per endpoint
  - dataset_*: GeoJSON load duration, feature counts and failures
  - routing_*: outbound OSRM calls
  - nearest_*: nearest-professional search outcomes
  - cache_*: route and session cache efficiency
  - circuit_breaker_*: routing breaker state
  - operations_in_flight: long operations currently running (busy indicator)
*/
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	DatasetLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Time to fetch and parse a GeoJSON dataset",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"dataset"},
	)

	DatasetFeatures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dataset_features",
			Help: "Number of features loaded per dataset",
		},
		[]string{"dataset"},
	)

	DatasetSkippedFeatures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dataset_skipped_features",
			Help: "Number of features dropped for unusable geometry",
		},
		[]string{"dataset"},
	)

	DatasetLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_load_errors_total",
			Help: "Total number of failed dataset loads",
		},
		[]string{"dataset", "required"},
	)

	DatasetLastLoad = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_last_load_timestamp",
			Help: "Unix time of the last successful catalog build",
		},
	)

	RoutingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_requests_total",
			Help: "Total number of routing service requests",
		},
		[]string{"result"}, // success, error, no_route, cached
	)

	RoutingRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "routing_request_duration_seconds",
			Help:    "Routing service round trip in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	NearestSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearest_searches_total",
			Help: "Total number of nearest-professional searches",
		},
		[]string{"outcome"}, // found, no_candidate, no_route, error
	)

	NearestCandidatesRouted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nearest_candidates_routed",
			Help:    "Candidates sent to the routing service per search",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 10, 15, 20},
		},
	)

	NearestCandidateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nearest_candidate_failures_total",
			Help: "Candidates excluded because their route failed",
		},
	)

	OperationsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "operations_in_flight",
			Help: "Long-running operations currently executing",
		},
		[]string{"operation"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // route, session
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Total number of map sessions created",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight API gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDatasetLoad records one dataset fetch. required distinguishes the
// mandatory layers from the decorative commune layer.
func RecordDatasetLoad(dataset string, required bool, duration time.Duration, features, skipped int, err error) {
	DatasetLoadDuration.WithLabelValues(dataset).Observe(duration.Seconds())
	if err != nil {
		req := "false"
		if required {
			req = "true"
		}
		DatasetLoadErrors.WithLabelValues(dataset, req).Inc()
		return
	}
	DatasetFeatures.WithLabelValues(dataset).Set(float64(features))
	DatasetSkippedFeatures.WithLabelValues(dataset).Set(float64(skipped))
}

// RecordRoutingRequest records one outbound routing call.
func RecordRoutingRequest(result string, duration time.Duration) {
	RoutingRequestsTotal.WithLabelValues(result).Inc()
	if result != "cached" {
		RoutingRequestDuration.Observe(duration.Seconds())
	}
}

// RecordNearestSearch records the outcome of one search.
func RecordNearestSearch(outcome string, routed, failed int) {
	NearestSearchesTotal.WithLabelValues(outcome).Inc()
	NearestCandidatesRouted.Observe(float64(routed))
	NearestCandidateFailures.Add(float64(failed))
}

// TrackOperation marks an operation as running and returns the function that
// marks it finished. Callers defer the returned function.
//
//	defer metrics.TrackOperation("nearest_search")()
func TrackOperation(operation string) func() {
	g := OperationsInFlight.WithLabelValues(operation)
	g.Inc()
	return g.Dec
}
