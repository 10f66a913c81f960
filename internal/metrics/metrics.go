// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

// Package metrics holds the Prometheus collectors for Bridgeboard.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reload Metrics
	ReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridgeboard_reloads_total",
			Help: "Total number of leaderboard and resource reloads",
		},
		[]string{"kind", "type", "result"}, // result: "success", "failure"
	)

	ReloadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridgeboard_reload_duration_seconds",
			Help:    "Duration of reloads in seconds, including rate limit waits",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)

	ReloadCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridgeboard_reload_cycle_duration_seconds",
			Help:    "Duration of a full orchestrator scheduling pass",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	LevelStates = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridgeboard_level_states",
			Help: "Number of tracked (level, type) pairs per reload state",
		},
		[]string{"state"},
	)

	// Backend Metrics
	BackendCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridgeboard_backend_calls_total",
			Help: "Total number of rate-limited calls to the leaderboard backend",
		},
		[]string{"op", "result"},
	)

	RateLimitWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridgeboard_rate_limit_wait_seconds",
			Help:    "Time spent waiting for a rate limiter slot",
			Buckets: []float64{0.001, 0.01, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"limiter"},
	)

	IDInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridgeboard_id_invalidations_total",
			Help: "Total number of cached leaderboard IDs dropped after access-denied responses",
		},
	)

	// Username Metrics
	UsernameQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridgeboard_username_queue_depth",
			Help: "Pending username lookups per priority tier",
		},
		[]string{"tier"},
	)

	UsernamesResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridgeboard_usernames_resolved_total",
			Help: "Total number of usernames resolved",
		},
	)

	UsernameBatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridgeboard_username_batch_failures_total",
			Help: "Total number of failed username lookup batches",
		},
	)

	// History Metrics
	HistorySnapshots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridgeboard_history_snapshots_total",
			Help: "Total number of global and sum-of-best history snapshots",
		},
		[]string{"kind", "result"},
	)

	CheatFlags = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridgeboard_cheat_flags_total",
			Help: "Total number of owners whose earlier scores were removed",
		},
	)

	// Store Metrics
	StoreCommitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridgeboard_store_commit_duration_seconds",
			Help:    "Duration of BadgerDB read-write transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	StoreCommitErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridgeboard_store_commit_errors_total",
			Help: "Total number of failed BadgerDB transactions",
		},
	)

	StoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridgeboard_store_gc_runs_total",
			Help: "Total number of value log GC passes",
		},
		[]string{"result"},
	)

	// Ops HTTP Metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridgeboard_http_requests_total",
			Help: "Total number of ops HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridgeboard_http_request_duration_seconds",
			Help:    "Ops HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridgeboard_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridgeboard_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridgeboard_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordReload records one reload of kind ("level", "campaign_index",
// "weekly_index", "buckets") and board type ("" for non-board resources).
func RecordReload(kind, boardType string, duration time.Duration, err error) {
	ReloadsTotal.WithLabelValues(kind, boardType, result(err)).Inc()
	ReloadDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordBackendCall records one backend call by operation name.
func RecordBackendCall(op string, err error) {
	BackendCalls.WithLabelValues(op, result(err)).Inc()
}

// RecordRateLimitWait records time spent blocked on a limiter.
func RecordRateLimitWait(limiter string, wait time.Duration) {
	RateLimitWait.WithLabelValues(limiter).Observe(wait.Seconds())
}

// RecordHistorySnapshot records a global or sum-of-best snapshot.
func RecordHistorySnapshot(kind string, err error) {
	HistorySnapshots.WithLabelValues(kind, result(err)).Inc()
}

// RecordStoreCommit records a read-write transaction.
func RecordStoreCommit(duration time.Duration, err error) {
	StoreCommitDuration.Observe(duration.Seconds())
	if err != nil {
		StoreCommitErrors.Inc()
	}
}

// RecordStoreGC records one value log GC pass.
func RecordStoreGC(err error) {
	StoreGCRuns.WithLabelValues(result(err)).Inc()
}

// RecordHTTPRequest records one ops HTTP request by route pattern.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// SetLevelStates replaces the per-state gauge values.
func SetLevelStates(counts map[string]int) {
	LevelStates.Reset()
	for state, n := range counts {
		LevelStates.WithLabelValues(state).Set(float64(n))
	}
}
