// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package decision evaluates whether an active route should be recalculated
// because of an external event.
//
// # Description
//
// The engine answers one question: does this event block this route badly
// enough to justify a reroute? It combines event proximity (planar
// point-to-segment distance against the impact radius), position along the
// route (events near the endpoints are ignored), and event severity.
//
// Evaluations are pure functions of their inputs. Nothing is cached; an
// event moving or a route changing is picked up on the next call.
//
// # Thread Safety
//
// Engine is safe for concurrent use.
package decision

import (
	"context"
	"fmt"
	"math"

	"github.com/margsathi/margsathi/pkg/geo"
	"github.com/margsathi/margsathi/pkg/logging"
	"github.com/margsathi/margsathi/services/routing/datatypes"
	"github.com/margsathi/margsathi/services/routing/observability"
	"github.com/margsathi/margsathi/services/routing/providers"
)

// DefaultImpactRadiusMeters is used when an event carries no radius.
const DefaultImpactRadiusMeters = 500.0

// Endpoint guard: events whose closest segment falls in the first or last
// tenth of the route are ignored, a detour cannot meaningfully help there.
const (
	endpointGuardLowPct  = 10.0
	endpointGuardHighPct = 90.0
)

// Engine evaluates event impact and generates baseline routes.
type Engine struct {
	defaultRadius float64
	gateway       *providers.Gateway
	logger        *logging.Logger
}

// NewEngine creates an engine over the given gateway. A nil logger
// falls back to logging.Default().
func NewEngine(gateway *providers.Gateway, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		defaultRadius: DefaultImpactRadiusMeters,
		gateway:       gateway,
		logger:        logger,
	}
}

// SetDefaultRadius overrides the radius applied to events that report
// none. Values <= 0 are ignored.
func (e *Engine) SetDefaultRadius(meters float64) {
	if meters > 0 {
		e.defaultRadius = meters
	}
}

// EvaluateImpact decides whether path should be recalculated because of
// event.
//
// # Inputs
//
//   - path: Decoded route geometry, at least 2 points for a usable answer
//   - event: The event to test; a missing radius takes the default
//
// # Outputs
//
//   - Evaluation: Decision, reason text, and the full impact details
//     record. Never an error: degenerate inputs produce a CONTINUE
//     verdict with an explanatory reason.
func (e *Engine) EvaluateImpact(path geo.Path, event datatypes.Event) datatypes.Evaluation {
	severity := datatypes.NormalizeSeverity(string(event.Severity))

	if len(path) < 2 {
		return e.record(datatypes.Evaluation{
			Decision: datatypes.DecisionContinue,
			Reason:   "Invalid or empty route geometry",
			Details: datatypes.ImpactDetails{
				ClosestIndex:  -1,
				ImpactRadius:  e.impactRadius(event),
				EventSeverity: string(severity),
			},
		})
	}

	if !event.HasLocation() {
		return e.record(datatypes.Evaluation{
			Decision: datatypes.DecisionContinue,
			Reason:   "Event has no location, nothing to evaluate",
			Details: datatypes.ImpactDetails{
				ClosestIndex:  -1,
				ImpactRadius:  e.impactRadius(event),
				EventSeverity: string(severity),
			},
		})
	}

	impactRadius := e.impactRadius(event)
	minDistance, closestIndex := geo.NearestSegment(path, *event.Location)
	isOnRoute := minDistance <= impactRadius

	totalSegments := len(path) - 1
	segmentPct := 100 * float64(closestIndex) / float64(totalSegments)

	details := datatypes.ImpactDetails{
		MinDistanceMeters: roundTenth(minDistance),
		IsOnRoute:         isOnRoute,
		ClosestIndex:      closestIndex,
		SegmentPercentage: roundTenth(segmentPct),
		ImpactRadius:      impactRadius,
		EventSeverity:     string(severity),
	}

	if !isOnRoute {
		return e.record(datatypes.Evaluation{
			Decision: datatypes.DecisionContinue,
			Reason:   fmt.Sprintf("Event is clear of route path (closest point: %dm away)", int(minDistance)),
			Details:  details,
		})
	}

	if segmentPct < endpointGuardLowPct || segmentPct > endpointGuardHighPct {
		return e.record(datatypes.Evaluation{
			Decision: datatypes.DecisionContinue,
			Reason:   fmt.Sprintf("Event is on route but too close to start/end (%d%%). Ignoring.", int(segmentPct)),
			Details:  details,
		})
	}

	switch {
	case severity.TriggersReroute():
		eventType := event.Type
		if eventType == "" {
			eventType = "Unknown"
		}
		return e.record(datatypes.Evaluation{
			Decision: datatypes.DecisionReroute,
			Reason:   fmt.Sprintf("Critical event (%s) blocking route at %d%% mark.", eventType, int(segmentPct)),
			Details:  details,
		})
	case severity == datatypes.SeverityMedium:
		return e.record(datatypes.Evaluation{
			Decision: datatypes.DecisionContinue,
			Reason:   "Event is on route but severity is not critical",
			Details:  details,
		})
	default:
		return e.record(datatypes.Evaluation{
			Decision: datatypes.DecisionContinue,
			Reason:   "Low severity event on route, safe to proceed",
			Details:  details,
		})
	}
}

// GenerateBaselineRoute asks the gateway for the best available route
// and marks it as the baseline for downstream consistency checks.
//
// # Outputs
//
//   - *RouteCandidate: The baseline route, Provider tagged
//   - error: Wraps providers.ErrAllProvidersExhausted when every
//     provider failed; the caller decides whether that is fatal
func (e *Engine) GenerateBaselineRoute(ctx context.Context, origin, destination geo.Coordinate, mode, preferredProvider string) (*datatypes.RouteCandidate, error) {
	e.logger.Info("generating baseline route",
		"origin", origin.String(), "destination", destination.String(), "mode", mode)

	result, err := e.gateway.FetchRoute(ctx, providers.Request{
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
	}, preferredProvider)
	if err != nil {
		return nil, fmt.Errorf("baseline route: %w", err)
	}

	e.logger.Info("baseline route generated", "provider", result.Provider)

	candidate := candidateFrom(result)
	candidate.IsBaseline = true
	return candidate, nil
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

// impactRadius resolves the radius to test against: the event's own
// reported extent, or the engine default when unreported.
func (e *Engine) impactRadius(event datatypes.Event) float64 {
	if event.AffectedRadiusMeters > 0 {
		return event.AffectedRadiusMeters
	}
	return e.defaultRadius
}

func (e *Engine) record(eval datatypes.Evaluation) datatypes.Evaluation {
	observability.RecordDecision(string(eval.Decision))
	return eval
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
