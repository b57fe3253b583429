// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/margsathi/margsathi/pkg/geo"
	"github.com/margsathi/margsathi/pkg/validation"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("travelmode", func(fl validator.FieldLevel) bool {
			_, err := validation.SanitizeMode(fl.Field().String())
			return err == nil
		})
	}
}

// LatLon is the request-side coordinate pair. Binding validation enforces
// the geographic range before anything reaches the core. Pointers keep
// "required" meaning "field present": 0 sits on the equator and the prime
// meridian and must bind.
type LatLon struct {
	Lat *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" binding:"required,gte=-180,lte=180"`
}

// Coordinate converts the bound pair to the core coordinate type. A field
// that skipped binding reads as 0.
func (l LatLon) Coordinate() geo.Coordinate {
	var c geo.Coordinate
	if l.Lat != nil {
		c.Lat = *l.Lat
	}
	if l.Lon != nil {
		c.Lon = *l.Lon
	}
	return c
}

// SuggestRouteRequest asks for a route from origin to destination,
// optionally considering a disruptive event along the way.
type SuggestRouteRequest struct {
	Origin      LatLon `json:"origin" binding:"required"`
	Destination LatLon `json:"destination" binding:"required"`

	// Mode is the travel mode: car/driving, bike/cycling, walk/walking.
	Mode string `json:"mode,omitempty" binding:"omitempty,travelmode"`

	// Event describes the disruption, when one is known.
	Event string `json:"event,omitempty"`

	// EventLocation is where the disruption sits. Routing only reacts to
	// the event when both Event and EventLocation are present.
	EventLocation *LatLon `json:"event_location,omitempty"`

	// EventSeverity grades the disruption; defaults to LOW.
	EventSeverity string `json:"event_severity,omitempty"`

	// EventRadiusMeters is the reported extent of the disruption.
	EventRadiusMeters float64 `json:"event_radius_meters,omitempty"`

	// PreferredProvider pins the first provider to try, when configured.
	PreferredProvider string `json:"preferred_provider,omitempty"`
}

// SuggestRouteResponse is the orchestration-layer answer: the chosen route
// with its metrics and an explanation of any event-driven adjustment.
type SuggestRouteResponse struct {
	Rerouted bool   `json:"rerouted"`
	Reason   string `json:"reason"`

	Geometry         string     `json:"geometry"`
	DetailedGeometry geo.Path   `json:"detailed_geometry,omitempty"`
	DistanceMeters   float64    `json:"distance_meters"`
	DistanceKm       float64    `json:"distance_km"`
	DurationSeconds  float64    `json:"duration_seconds"`
	DurationMinutes  float64    `json:"duration_minutes"`
	EstimatedCO2Kg   float64    `json:"estimated_co2_kg"`
	Steps            []RouteStep `json:"steps,omitempty"`

	Debug map[string]any `json:"debug,omitempty"`
}

// EvaluateImpactRequest asks only for the reroute/continue verdict on an
// existing route geometry, without computing any detour.
type EvaluateImpactRequest struct {
	// Geometry is the polyline6-encoded current route.
	Geometry string `json:"geometry" binding:"required"`

	EventType         string  `json:"event_type,omitempty"`
	EventLocation     LatLon  `json:"event_location" binding:"required"`
	EventSeverity     string  `json:"event_severity,omitempty"`
	EventRadiusMeters float64 `json:"event_radius_meters,omitempty"`
}

// ReportEventRequest feeds a classifier observation into the decision
// pipeline: classify, gate on confidence, then evaluate against the route.
type ReportEventRequest struct {
	// Kind selects the classifier input family, e.g. "image" or "sensor".
	Kind string `json:"kind" binding:"required"`

	// Payload is the classifier-specific input description. Opaque here.
	Payload map[string]any `json:"payload,omitempty"`

	// Location of the observation, when the capture device knows it.
	Location *LatLon `json:"location,omitempty"`

	// Geometry is the polyline6-encoded route the event is checked against.
	Geometry string `json:"geometry" binding:"required"`
}
