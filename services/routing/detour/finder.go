// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package detour searches for an alternative route around a disruptive
// event using perpendicular offset waypoints.
//
// # Description
//
// The search is generate-and-verify. A via-point perpendicular to the
// route at a fixed offset forces most routing backends to plan around the
// event without needing native polygon exclusion, but an injected
// via-point does not guarantee the resulting path actually clears the
// zone. Every candidate route is therefore verified against the event's
// restricted cell zone before it is accepted.
//
// Candidates are tried in a fixed order, nearer offsets before farther
// and left before right at each offset, and the first verified candidate
// wins. The order is part of the observable contract.
package detour

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/margsathi/margsathi/pkg/geo"
	"github.com/margsathi/margsathi/pkg/logging"
	"github.com/margsathi/margsathi/services/routing/datatypes"
	"github.com/margsathi/margsathi/services/routing/observability"
	"github.com/margsathi/margsathi/services/routing/providers"
	"github.com/margsathi/margsathi/services/routing/spatial"
)

var tracer = otel.Tracer("margsathi/detour")

// DefaultOffsetsKm are the perpendicular offset distances tried, in
// order. Two kilometers clears a typical city disruption at moderate
// detour cost; 3.5 km is the wider second attempt.
var DefaultOffsetsKm = []float64{2.0, 3.5}

// Options tunes the detour search.
type Options struct {
	// OffsetsKm overrides DefaultOffsetsKm. Must be ascending.
	OffsetsKm []float64

	// RingScaleMeters converts an event radius into a hex ring size.
	// Defaults to spatial.DefaultRingScaleMeters.
	RingScaleMeters float64

	// Logger defaults to logging.Default() when nil.
	Logger *logging.Logger
}

// Finder runs perpendicular-offset detour searches against a provider
// gateway.
//
// # Thread Safety
//
// Finder is safe for concurrent use.
type Finder struct {
	index     *spatial.Index
	gateway   *providers.Gateway
	offsetsKm []float64
	ringScale float64
	logger    *logging.Logger
}

// NewFinder creates a Finder over the given spatial index and gateway.
func NewFinder(index *spatial.Index, gateway *providers.Gateway, opts Options) *Finder {
	offsets := opts.OffsetsKm
	if len(offsets) == 0 {
		offsets = DefaultOffsetsKm
	}
	ringScale := opts.RingScaleMeters
	if ringScale <= 0 {
		ringScale = spatial.DefaultRingScaleMeters
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Finder{
		index:     index,
		gateway:   gateway,
		offsetsKm: offsets,
		ringScale: ringScale,
		logger:    logger,
	}
}

// FindDetour searches for a route from source to destination that
// avoids the event's restricted zone.
//
// # Inputs
//
//   - event: Must carry a location; the affected radius sizes the zone
//   - source, destination: Route endpoints
//   - currentPath: The active route's decoded geometry, non-empty
//   - mode: Travel mode passed through to providers
//   - preferredProvider: Tried first by the gateway, usually the
//     provider that produced the baseline route
//
// # Outputs
//
//   - *RouteCandidate: The first verified detour, IsDetour set, or nil
//     when the event is irrelevant to the path or no candidate
//     verified. A nil result is not an error; the caller falls back to
//     the plain decision path.
func (f *Finder) FindDetour(ctx context.Context, event datatypes.Event, source, destination geo.Coordinate, currentPath geo.Path, mode, preferredProvider string) *datatypes.RouteCandidate {
	if !event.HasLocation() || len(currentPath) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "detour.find")
	defer span.End()

	eventLoc := *event.Location
	routeCells := f.index.CellsOfPath(currentPath)
	k := spatial.RingForRadius(event.AffectedRadiusMeters, f.ringScale)
	span.SetAttributes(
		attribute.Int("detour.ring_k", k),
		attribute.Int("detour.route_cells", len(routeCells)),
	)

	// The relevance gate: an event nowhere near the path costs zero
	// provider calls.
	if !f.index.IsRelevant(eventLoc, routeCells, k) {
		f.logger.Info("event not relevant to path, skipping detour search",
			"event_type", event.Type, "ring_k", k)
		span.SetAttributes(attribute.String("detour.result", observability.SearchSkipped))
		observability.RecordDetourSearch(observability.SearchSkipped)
		return nil
	}

	restrictedZone := f.index.RestrictedZoneOf(eventLoc, k)
	avoidPoints := f.index.AvoidancePoints(eventLoc, k)
	localBearing := spatial.LocalBearing(currentPath, eventLoc)
	currentEncoded := geo.Encode(currentPath)

	for i, candidate := range f.candidates(eventLoc, localBearing) {
		result, err := f.gateway.FetchRoute(ctx, providers.Request{
			Origin:      source,
			Destination: destination,
			Via:         []geo.Coordinate{candidate},
			Mode:        mode,
			AvoidPoints: avoidPoints,
		}, preferredProvider)
		if err != nil {
			f.logger.Warn("detour candidate fetch failed",
				"candidate", i, "error", err)
			observability.RecordDetourAttempt(observability.DetourProviderFailed)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			continue
		}

		if !f.verify(result.Route.Geometry, currentEncoded, restrictedZone) {
			f.logger.Info("detour candidate rejected by verification", "candidate", i)
			observability.RecordDetourAttempt(observability.DetourRejected)
			continue
		}

		f.logger.Info("detour found",
			"candidate", i, "provider", result.Provider)
		span.SetAttributes(
			attribute.String("detour.result", observability.SearchFound),
			attribute.Int("detour.winning_candidate", i),
		)
		observability.RecordDetourAttempt(observability.DetourAccepted)
		observability.RecordDetourSearch(observability.SearchFound)

		detour := candidateFrom(result)
		detour.IsDetour = true
		return detour
	}

	span.SetAttributes(attribute.String("detour.result", observability.SearchNone))
	observability.RecordDetourSearch(observability.SearchNone)
	return nil
}

// candidates builds the fixed-order offset waypoints: for each offset
// distance, left side then right side.
func (f *Finder) candidates(eventLoc geo.Coordinate, bearingDeg float64) []geo.Coordinate {
	points := make([]geo.Coordinate, 0, 2*len(f.offsetsKm))
	for _, km := range f.offsetsKm {
		points = append(points,
			spatial.PerpendicularPoint(eventLoc, bearingDeg, km, spatial.SideLeft),
			spatial.PerpendicularPoint(eventLoc, bearingDeg, km, spatial.SideRight),
		)
	}
	return points
}

// verify accepts a candidate only when its path decodes, clears the
// restricted zone, and differs from the current geometry.
func (f *Finder) verify(encoded, currentEncoded string, restrictedZone spatial.CellSet) bool {
	if encoded == "" || encoded == currentEncoded {
		return false
	}
	path, err := geo.Decode(encoded)
	if err != nil {
		f.logger.Warn("detour candidate geometry undecodable", "error", err)
		return false
	}
	return f.index.PathAvoids(path, restrictedZone)
}

// candidateFrom converts a gateway result into the shared candidate type.
func candidateFrom(result *providers.Result) *datatypes.RouteCandidate {
	steps := make([]datatypes.RouteStep, 0, len(result.Route.Steps))
	for _, s := range result.Route.Steps {
		steps = append(steps, datatypes.RouteStep{
			Instruction:    s.Instruction,
			Name:           s.Name,
			DistanceMeters: s.DistanceMeters,
			DurationSecs:   s.DurationSecs,
		})
	}
	return &datatypes.RouteCandidate{
		Geometry:        result.Route.Geometry,
		DistanceMeters:  result.Route.DistanceMeters,
		DurationSeconds: result.Route.DurationSeconds,
		Provider:        result.Provider,
		Steps:           steps,
	}
}
