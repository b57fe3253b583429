// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package spatial implements the hex-grid spatial index the rerouting core
// uses for relevance testing and detour validation.
//
// # Description
//
// Every route point is assigned to one fixed-resolution H3 cell, turning
// the expensive "is this event near this polyline" question into O(1) set
// lookups: an event is relevant when its cell neighborhood intersects the
// route's cell set, and a candidate detour is valid when its cell set is
// disjoint from the event's restricted zone.
//
// Resolution 9 cells have an edge length of roughly 174 m, which bounds
// the precision of every membership test. That is acceptable here because
// reported event radii are themselves imprecise.
//
// # Error Policy
//
// Spatial computations never fail for out-of-range numeric input; they
// degrade to the zero cell or an empty set. Only the provider gateway
// surfaces hard errors in this system.
package spatial

import (
	"log/slog"
	"math"

	"github.com/uber/h3-go/v4"

	"github.com/margsathi/margsathi/pkg/geo"
)

// DefaultResolution is the H3 resolution the whole system indexes at.
// Changing it rescales every membership test; it is fixed by design.
const DefaultResolution = 9

// DefaultRingScaleMeters converts a reported event radius into a
// neighbor-ring radius: one ring per ~350 m, the across-flats width of a
// resolution-9 cell. Empirically chosen; configurable, not an invariant.
const DefaultRingScaleMeters = 350.0

// Cell is one fixed-resolution hexagonal partition of the globe.
type Cell = h3.Cell

// CellSet is an unordered, duplicate-free set of cells.
type CellSet map[Cell]struct{}

// Contains reports set membership.
func (s CellSet) Contains(c Cell) bool {
	_, ok := s[c]
	return ok
}

// Intersects reports whether the two sets share any cell.
func (s CellSet) Intersects(other CellSet) bool {
	small, large := s, other
	if len(other) < len(s) {
		small, large = other, s
	}
	for c := range small {
		if large.Contains(c) {
			return true
		}
	}
	return false
}

// Index assigns coordinates to hex cells at one fixed resolution.
//
// Index is stateless apart from read-only configuration and is safe for
// concurrent use.
type Index struct {
	resolution int
}

// New creates an Index at the given H3 resolution.
func New(resolution int) *Index {
	if resolution < 0 || resolution > 15 {
		resolution = DefaultResolution
	}
	return &Index{resolution: resolution}
}

// Default returns the resolution-9 index the routing core runs on.
func Default() *Index {
	return New(DefaultResolution)
}

// Resolution returns the fixed H3 resolution of this index.
func (x *Index) Resolution() int { return x.resolution }

// CellOf deterministically maps a coordinate to its cell. Invalid input
// degrades to the zero cell, which matches nothing.
func (x *Index) CellOf(c geo.Coordinate) Cell {
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: c.Lat, Lng: c.Lon}, x.resolution)
	if err != nil {
		slog.Warn("cell assignment failed, degrading to zero cell",
			"lat", c.Lat, "lon", c.Lon, "error", err)
		return 0
	}
	return cell
}

// CellsOfPath maps every path point to its cell and returns the set.
// Duplicates collapse; order is irrelevant.
func (x *Index) CellsOfPath(path geo.Path) CellSet {
	cells := make(CellSet, len(path))
	for _, p := range path {
		if cell := x.CellOf(p); cell != 0 {
			cells[cell] = struct{}{}
		}
	}
	return cells
}

// NeighborRing returns all cells within k grid steps of center, inclusive
// of center itself. k=0 returns {center}; negative k is clamped to 0.
func (x *Index) NeighborRing(center Cell, k int) CellSet {
	if k < 0 {
		k = 0
	}
	ring, err := h3.GridDisk(center, k)
	if err != nil {
		slog.Warn("grid disk failed, degrading to center cell", "cell", center, "k", k, "error", err)
		return CellSet{center: {}}
	}
	cells := make(CellSet, len(ring))
	for _, c := range ring {
		cells[c] = struct{}{}
	}
	return cells
}

// IsRelevant reports whether an event at eventCoord affects a route whose
// cell set is routeCells, considering k neighbor rings around the event.
//
// The direct-hit check runs first so the common case never pays for a
// neighbor-ring expansion.
func (x *Index) IsRelevant(eventCoord geo.Coordinate, routeCells CellSet, k int) bool {
	eventCell := x.CellOf(eventCoord)
	if routeCells.Contains(eventCell) {
		return true
	}
	if k <= 0 {
		return false
	}
	return x.NeighborRing(eventCell, k).Intersects(routeCells)
}

// RestrictedZoneOf returns the cell set considered "inside" an event's
// impact area: the k-ring around the event's own cell.
func (x *Index) RestrictedZoneOf(eventCoord geo.Coordinate, k int) CellSet {
	return x.NeighborRing(x.CellOf(eventCoord), k)
}

// PathAvoids reports whether a candidate path stays entirely clear of the
// restricted zone. True iff the path's cell set and the zone are disjoint.
func (x *Index) PathAvoids(candidate geo.Path, restrictedZone CellSet) bool {
	return !x.CellsOfPath(candidate).Intersects(restrictedZone)
}

// AvoidancePoints returns the center coordinates of every cell in the
// k-ring around the event, for translation into provider-native exclusion
// syntax. The event's own cell center comes first; callers that must cap
// the list keep the nearest-to-event points by construction.
func (x *Index) AvoidancePoints(eventCoord geo.Coordinate, k int) []geo.Coordinate {
	eventCell := x.CellOf(eventCoord)
	ring, err := h3.GridDisk(eventCell, max(0, k))
	if err != nil {
		ring = []Cell{eventCell}
	}
	points := make([]geo.Coordinate, 0, len(ring))
	for _, c := range ring {
		ll, err := h3.CellToLatLng(c)
		if err != nil {
			continue
		}
		points = append(points, geo.Coordinate{Lat: ll.Lat, Lon: ll.Lng})
	}
	return points
}

// RingForRadius converts a reported event radius in meters into a
// neighbor-ring radius using the given scale. The result is never below 1,
// so every event restricts at least its immediate neighborhood.
func RingForRadius(radiusMeters, ringScaleMeters float64) int {
	if ringScaleMeters <= 0 {
		ringScaleMeters = DefaultRingScaleMeters
	}
	k := int(math.Round(radiusMeters / ringScaleMeters))
	if k < 1 {
		k = 1
	}
	return k
}
