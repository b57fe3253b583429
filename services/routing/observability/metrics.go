// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the routing service.
//
// # Description
//
// Metrics cover the three hot paths of the service:
//   - Provider gateway calls (per-provider counters, latency, fallback depth)
//   - Detour search attempts and outcomes
//   - Decision engine verdicts
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. All metrics live in the
// default Prometheus registry under the "margsathi" namespace and register
// at package import.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "margsathi"

// Subsystem for routing metrics
const routingSubsystem = "routing"

var (
	// ProviderRequests counts gateway dispatches by provider and outcome.
	// Labels: provider (mapbox, google, mapmyindia, osrm), outcome
	// (success, error, empty)
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: routingSubsystem,
			Name:      "provider_requests_total",
			Help:      "Total provider route fetches by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// ProviderLatency measures provider round-trip latency.
	// Labels: provider
	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: routingSubsystem,
			Name:      "provider_latency_seconds",
			Help:      "Provider route fetch round-trip latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"provider"},
	)

	// FallbackDepth measures how far down the provider chain a
	// successful fetch had to go. Zero means the first eligible
	// provider answered.
	FallbackDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: routingSubsystem,
			Name:      "gateway_fallback_depth",
			Help:      "Provider chain depth of successful route fetches",
			Buckets:   []float64{0, 1, 2, 3},
		},
	)

	// GatewayExhaustions counts fetches where every eligible provider
	// failed.
	GatewayExhaustions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: routingSubsystem,
			Name:      "gateway_exhaustions_total",
			Help:      "Total route fetches that exhausted all eligible providers",
		},
	)

	// DetourAttempts counts detour candidate attempts by outcome.
	// Labels: outcome (accepted, rejected, provider_failed)
	DetourAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: routingSubsystem,
			Name:      "detour_attempts_total",
			Help:      "Total detour candidate attempts by outcome",
		},
		[]string{"outcome"},
	)

	// DetourSearches counts whole detour searches by result.
	// Labels: result (found, none, skipped)
	DetourSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: routingSubsystem,
			Name:      "detour_searches_total",
			Help:      "Total detour searches by result",
		},
		[]string{"result"},
	)

	// Decisions counts decision engine verdicts.
	// Labels: decision (REROUTE, CONTINUE)
	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: routingSubsystem,
			Name:      "decisions_total",
			Help:      "Total impact evaluation verdicts by decision",
		},
		[]string{"decision"},
	)
)

// Detour attempt outcomes.
const (
	// DetourAccepted means a candidate passed avoidance verification.
	DetourAccepted = "accepted"

	// DetourRejected means a candidate route still crossed the
	// restricted zone or matched the baseline geometry.
	DetourRejected = "rejected"

	// DetourProviderFailed means no provider could route through the
	// candidate waypoint.
	DetourProviderFailed = "provider_failed"
)

// Detour search results.
const (
	// SearchFound means the search produced a verified detour.
	SearchFound = "found"

	// SearchNone means every candidate was tried and none verified.
	SearchNone = "none"

	// SearchSkipped means the event was not relevant to the route and
	// no candidates were generated.
	SearchSkipped = "skipped"
)

// RecordDecision counts one decision engine verdict.
func RecordDecision(decision string) {
	Decisions.WithLabelValues(decision).Inc()
}

// RecordDetourAttempt counts one detour candidate outcome.
func RecordDetourAttempt(outcome string) {
	DetourAttempts.WithLabelValues(outcome).Inc()
}

// RecordDetourSearch counts one whole detour search result.
func RecordDetourSearch(result string) {
	DetourSearches.WithLabelValues(result).Inc()
}
