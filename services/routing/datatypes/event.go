// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the wire and domain types shared across the
// routing service: events, decisions, and route candidates.
//
// Inputs are normalized into these structs at the request boundary; the
// core packages never see loosely typed maps.
package datatypes

import (
	"strings"
	"time"

	"github.com/margsathi/margsathi/pkg/geo"
)

// Severity grades how disruptive an event is. The decision logic is
// deliberately coarse: HIGH, CRITICAL and SEVERE all trigger rerouting,
// MEDIUM and below do not. The finer tiers exist for reporting only.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
	SeveritySevere   Severity = "SEVERE"
)

// NormalizeSeverity maps free-form severity text onto the known grades.
// Unknown or empty input degrades to LOW rather than erroring; a garbled
// severity must never block a routing answer.
func NormalizeSeverity(raw string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(raw))) {
	case SeverityMedium:
		return SeverityMedium
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	case SeveritySevere:
		return SeveritySevere
	default:
		return SeverityLow
	}
}

// TriggersReroute reports whether this grade is disruptive enough to
// justify a detour when the event sits on the route.
func (s Severity) TriggersReroute() bool {
	switch s {
	case SeverityHigh, SeverityCritical, SeveritySevere:
		return true
	default:
		return false
	}
}

// Event is a reported mobility disruption: a road closure, protest,
// accident or similar. Events are produced upstream (detector or manual
// report) and are read-only to the routing core.
type Event struct {
	// Type is a free-form tag such as "Accident" or "Political Rally".
	Type string `json:"type"`

	// Location is the reported position of the event. Nil means the event
	// carries no usable location and cannot drive spatial decisions.
	Location *geo.Coordinate `json:"location,omitempty"`

	// Severity grades the disruption; see NormalizeSeverity.
	Severity Severity `json:"severity"`

	// AffectedRadiusMeters is the reported extent of the disruption.
	// Zero means unreported; consumers substitute their default.
	AffectedRadiusMeters float64 `json:"affected_radius_meters,omitempty"`

	// Timestamp is when the event was observed, if known.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// HasLocation reports whether the event carries a usable position.
func (e Event) HasLocation() bool {
	return e.Location != nil
}
