// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Decision is the routing verdict for an evaluated event.
type Decision string

const (
	// DecisionReroute means the event blocks the route badly enough that a
	// detour should be computed.
	DecisionReroute Decision = "REROUTE"

	// DecisionContinue means the current route remains acceptable.
	DecisionContinue Decision = "CONTINUE"
)

// ImpactDetails is the impact-analysis record attached to every decision.
// Callers build explanation text from these fields, so the set and meaning
// of the fields is part of the contract.
type ImpactDetails struct {
	// MinDistanceMeters is the smallest distance from the event to any
	// route segment, rounded to one decimal.
	MinDistanceMeters float64 `json:"min_distance_meters"`

	// IsOnRoute is true when MinDistanceMeters is within the impact radius.
	IsOnRoute bool `json:"is_on_route"`

	// ClosestIndex is the index of the closest route segment, -1 when the
	// geometry was invalid.
	ClosestIndex int `json:"closest_index"`

	// SegmentPercentage locates the closest segment along the route as a
	// percentage of total segments, rounded to one decimal.
	SegmentPercentage float64 `json:"segment_percentage"`

	// ImpactRadius is the radius in meters the evaluation used.
	ImpactRadius float64 `json:"impact_radius"`

	// EventSeverity is the normalized severity string the evaluation used.
	EventSeverity string `json:"event_severity"`
}

// Evaluation pairs a Decision with a human-readable reason and the impact
// details behind it. Evaluations are computed fresh per call, never cached.
type Evaluation struct {
	Decision Decision      `json:"decision"`
	Reason   string        `json:"reason"`
	Details  ImpactDetails `json:"details"`
}

// RouteStep is one turn-by-turn instruction as reported by a provider.
// Providers differ in how much they fill in; the fields are passed through.
type RouteStep struct {
	Instruction    string  `json:"instruction,omitempty"`
	Name           string  `json:"name,omitempty"`
	DistanceMeters float64 `json:"distance_meters,omitempty"`
	DurationSecs   float64 `json:"duration_seconds,omitempty"`
}

// RouteCandidate is one route produced by the provider gateway. Ownership
// is transient: it is consumed once by the decision engine or the detour
// search and either returned to the caller or discarded.
type RouteCandidate struct {
	// Geometry is the polyline6-encoded path.
	Geometry string `json:"geometry"`

	// DistanceMeters and DurationSeconds summarize the route.
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`

	// Provider names the backend that produced this candidate. The
	// follow-up detour call prefers the same provider for consistency.
	Provider string `json:"provider"`

	// IsBaseline marks the unmodified pre-event route.
	IsBaseline bool `json:"is_baseline,omitempty"`

	// IsDetour marks a candidate accepted by the detour search.
	IsDetour bool `json:"is_detour,omitempty"`

	// Steps carries turn-by-turn instructions when the provider supplied
	// them.
	Steps []RouteStep `json:"steps,omitempty"`
}
