// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geo

import "math"

const (
	// EarthRadiusMeters is the mean Earth radius used by all spherical math.
	EarthRadiusMeters = 6371000.0

	// Meters-per-degree factors for the equirectangular projection.
	// Longitude is additionally scaled by cos(latitude).
	metersPerDegreeLat = 111132.0
	metersPerDegreeLon = 111319.0
)

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PointToSegmentMeters returns the minimum distance in meters from point p
// to the segment (a, b).
//
// The three points are projected to local planar meters before the
// point-segment math runs. At city scale the projection error is far below
// the precision of any reported event radius.
func PointToSegmentMeters(p, a, b Coordinate) float64 {
	px, py := toPlanarMeters(p)
	ax, ay := toPlanarMeters(a)
	bx, by := toPlanarMeters(b)

	dx := bx - ax
	dy := by - ay
	if dx == 0 && dy == 0 {
		return math.Hypot(px-ax, py-ay)
	}

	// Project p onto the segment and clamp to [0, 1].
	t := ((px-ax)*dx + (py-ay)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))

	cx := ax + t*dx
	cy := ay + t*dy
	return math.Hypot(px-cx, py-cy)
}

// NearestSegment scans every consecutive segment of path and returns the
// minimum distance from p to the path in meters together with the index of
// the closest segment. Ties keep the earliest index.
//
// A path with fewer than two points has no segments; the function returns
// (+Inf, -1) and the caller decides how to treat the invalid geometry.
func NearestSegment(path Path, p Coordinate) (float64, int) {
	if len(path) < 2 {
		return math.Inf(1), -1
	}
	minDist := math.Inf(1)
	closest := -1
	for i := 0; i < len(path)-1; i++ {
		d := PointToSegmentMeters(p, path[i], path[i+1])
		if d < minDist {
			minDist = d
			closest = i
		}
	}
	return minDist, closest
}

// NearestPointIndex returns the index of the path point closest to p by
// planar squared distance in degrees. Ties keep the earliest index.
//
// This is intentionally cruder than NearestSegment: it is used only to pick
// a representative point for local bearing, where a neighbor either side is
// equally acceptable.
func NearestPointIndex(path Path, p Coordinate) int {
	if len(path) == 0 {
		return -1
	}
	best := 0
	bestDist := math.Inf(1)
	for i, pt := range path {
		dLat := pt.Lat - p.Lat
		dLon := pt.Lon - p.Lon
		d := dLat*dLat + dLon*dLon
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func toPlanarMeters(c Coordinate) (x, y float64) {
	y = c.Lat * metersPerDegreeLat
	x = c.Lon * metersPerDegreeLon * math.Cos(toRadians(c.Lat))
	return x, y
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
