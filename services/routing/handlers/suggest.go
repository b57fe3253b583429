// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/margsathi/margsathi/pkg/geo"
	"github.com/margsathi/margsathi/pkg/validation"
	"github.com/margsathi/margsathi/services/routing/datatypes"
	"github.com/margsathi/margsathi/services/routing/providers"
)

// HandleSuggestRoute plans a route between two coordinates, reacting to
// a known event along the way.
//
// # Description
//
// The flow mirrors a navigation client asking "how do I get there given
// this disruption":
//
//  1. Generate the baseline route via the decision engine.
//  2. If an event with a location is present, run the detour search
//     against the baseline, preferring the baseline's provider.
//  3. If no detour verifies, fall back to a plain impact evaluation so
//     the response still explains the event's effect.
//
// Responds 502 when every provider failed for the baseline; an event
// with no viable detour is not an error.
func HandleSuggestRoute(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.SuggestRouteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		mode, err := validation.SanitizeMode(req.Mode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		origin := req.Origin.Coordinate()
		destination := req.Destination.Coordinate()

		// An event in play biases toward the avoidance-capable provider
		// so the baseline and detour come from the same engine.
		preferred := req.PreferredProvider
		if preferred == "" && req.EventLocation != nil {
			preferred = "mapbox"
		}

		baseline, err := deps.Engine.GenerateBaselineRoute(c.Request.Context(), origin, destination, mode, preferred)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, providers.ErrAllProvidersExhausted) {
				status = http.StatusBadGateway
			}
			c.JSON(status, gin.H{"error": "Routing provider failed: " + err.Error()})
			return
		}

		final := baseline
		rerouted := false
		reason := "Dynamic Route"

		if req.Event != "" && req.EventLocation != nil {
			eventLoc := req.EventLocation.Coordinate()
			event := datatypes.Event{
				Type:                 req.Event,
				Location:             &eventLoc,
				Severity:             datatypes.NormalizeSeverity(req.EventSeverity),
				AffectedRadiusMeters: req.EventRadiusMeters,
			}

			path, decodeErr := geo.Decode(baseline.Geometry)
			if decodeErr != nil {
				deps.logger().Warn("baseline geometry undecodable, skipping event handling",
					"error", decodeErr)
			} else {
				if d := deps.Finder.FindDetour(c.Request.Context(), event, origin, destination, path, mode, baseline.Provider); d != nil {
					final = d
					rerouted = true
					reason = "Detour: Optimized to avoid " + req.Event
				} else {
					eval := deps.Engine.EvaluateImpact(path, event)
					reason = eval.Reason
				}
			}
		}

		detailed, decodeErr := geo.Decode(final.Geometry)
		if decodeErr != nil {
			deps.logger().Warn("final geometry undecodable", "error", decodeErr)
		}

		c.JSON(http.StatusOK, datatypes.SuggestRouteResponse{
			Rerouted:         rerouted,
			Reason:           reason,
			Geometry:         final.Geometry,
			DetailedGeometry: detailed,
			DistanceMeters:   math.Round(final.DistanceMeters*100) / 100,
			DistanceKm:       math.Round(final.DistanceMeters/10) / 100,
			DurationSeconds:  math.Round(final.DurationSeconds*10) / 10,
			DurationMinutes:  math.Round(final.DurationSeconds/6) / 10,
			EstimatedCO2Kg:   EstimateCO2Kg(final.DistanceMeters, mode),
			Steps:            final.Steps,
			Debug: gin.H{
				"provider_used": final.Provider,
				"event_active":  req.Event != "",
				"is_baseline":   final.IsBaseline,
				"is_detour":     final.IsDetour,
			},
		})
	}
}

// HandleRecalculateRoute re-runs the suggestion flow for an active
// trip. A separate route keeps the endpoint contract stable if
// recalculation ever diverges (e.g. sticky provider selection).
func HandleRecalculateRoute(deps Deps) gin.HandlerFunc {
	return HandleSuggestRoute(deps)
}
