// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package providers abstracts external route-computation backends behind
// one contract and layers ordered fallback, capability filtering, rate
// limiting and circuit breaking on top.
//
// # Description
//
// Each backend (Mapbox, OSRM, Google Directions, Mappls) is a typed HTTP
// client implementing Provider. The Gateway tries providers in configured
// priority order; a failure or empty result from one provider advances to
// the next and never aborts the fetch. Only when every eligible provider
// has failed does the Gateway surface ErrAllProvidersExhausted.
//
// All geometry crosses this boundary as polyline6 strings; clients whose
// backend speaks a different precision normalize before returning.
package providers

import (
	"context"
	"errors"
	"time"

	"github.com/margsathi/margsathi/pkg/geo"
)

// defaultTimeout bounds every outbound provider call.
const defaultTimeout = 10 * time.Second

var (
	// ErrNotConfigured means the provider is missing its API key or base
	// URL and cannot be dispatched to.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrNoRoute means the provider answered successfully but produced no
	// route. Treated exactly like a provider failure for fallback.
	ErrNoRoute = errors.New("provider returned no route")

	// ErrAllProvidersExhausted is the gateway's terminal failure: every
	// eligible provider was tried and none produced a route. Callers must
	// surface this, not retry transparently.
	ErrAllProvidersExhausted = errors.New("all routing providers exhausted")
)

// Request describes one route fetch.
type Request struct {
	// Origin and Destination bound the route.
	Origin      geo.Coordinate
	Destination geo.Coordinate

	// Via are intermediate waypoints the route must pass through, in
	// order. The detour search injects exactly one.
	Via []geo.Coordinate

	// Mode is the normalized travel mode (driving, walking, cycling).
	Mode string

	// AvoidPoints are coordinates the route should stay clear of. Only
	// avoidance-capable providers may receive a non-empty list; the
	// gateway filters the rest out before dispatch. Points are ordered
	// nearest-to-event first so per-provider caps keep the core of the
	// exclusion zone.
	AvoidPoints []geo.Coordinate

	// Alternatives asks the provider for alternative routes when it
	// supports them; only the primary route is returned either way.
	Alternatives bool
}

// Route is one route as returned by a provider, already normalized.
type Route struct {
	// Geometry is the polyline6-encoded path.
	Geometry string

	// DistanceMeters and DurationSeconds summarize the route.
	DistanceMeters  float64
	DurationSeconds float64

	// Steps carries turn-by-turn instructions when available.
	Steps []Step
}

// Step is one turn-by-turn instruction.
type Step struct {
	Instruction    string
	Name           string
	DistanceMeters float64
	DurationSecs   float64
}

// Provider is the uniform contract every routing backend implements.
//
// Implementations are stateless between calls and safe for concurrent
// use. FetchRoute honors context cancellation; an abandoned call has no
// side effects (provider reads are idempotent GETs).
type Provider interface {
	// Name returns the stable identifier used in configuration, logs and
	// candidate tagging ("mapbox", "osrm", "google", "mapmyindia").
	Name() string

	// Configured reports whether the provider has everything it needs
	// (API key, base URL) to be dispatched to.
	Configured() bool

	// SupportsAvoidance reports whether the provider can honor
	// Request.AvoidPoints natively.
	SupportsAvoidance() bool

	// FetchRoute fetches one route. It returns ErrNoRoute when the
	// backend answers without a usable route, or a wrapped transport or
	// parse error otherwise.
	FetchRoute(ctx context.Context, req Request) (*Route, error)
}

// profileFor maps the normalized travel mode onto the OSRM-style profile
// names most providers use.
func profileFor(mode string) string {
	switch mode {
	case "walk", "walking":
		return "walking"
	case "bike", "cycling":
		return "cycling"
	default:
		return "driving"
	}
}
