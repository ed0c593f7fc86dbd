// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

// Package metrics provides Prometheus instrumentation for the generation
// pipeline: Plex API request counts and latency, rate-limit retries,
// circuit-breaker state, filter reject reasons, and per-stage durations.
//
// The engine is single-shot, so metrics are read in tests via
// prometheus/client_golang/prometheus/testutil; long-running deployments can
// expose the default registry however they serve HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlexRequestsTotal counts Plex API requests by endpoint class and outcome.
	PlexRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aria_plex_requests_total",
			Help: "Total Plex API requests",
		},
		[]string{"endpoint", "status"},
	)

	// PlexRequestDuration tracks Plex API request latency.
	PlexRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aria_plex_request_duration_seconds",
			Help:    "Plex API request latency",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// PlexRateLimitRetries counts HTTP 429 backoff retries.
	PlexRateLimitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aria_plex_rate_limit_retries_total",
			Help: "Plex API rate-limit (HTTP 429) retries",
		},
	)

	// CircuitBreakerState reports breaker state: 0=closed, 1=open, 2=half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aria_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts breaker state transitions.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aria_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// FilterRejects counts candidate rejections by reason.
	FilterRejects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aria_filter_rejects_total",
			Help: "Candidate tracks rejected by the static filter",
		},
		[]string{"reason"},
	)

	// StageDuration tracks pipeline stage durations.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aria_stage_duration_seconds",
			Help:    "Generation pipeline stage duration",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	// TracksSelected reports the size of the final selection.
	TracksSelected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aria_tracks_selected",
			Help: "Tracks in the final playlist of the last run",
		},
	)

	// PathfinderNodes counts neighbor fetches spent by the sonic-journey BFS.
	PathfinderNodes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aria_pathfinder_nodes_total",
			Help: "Neighbor fetches consumed by sonic-journey pathfinding",
		},
	)
)
