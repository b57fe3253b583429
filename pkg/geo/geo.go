// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package geo provides the geometric primitives the routing core is built on:
// coordinates, paths, the polyline6 wire codec, and the distance math used
// for proximity checks.
//
// # Contract
//
// The rest of the system treats this package as a fixed utility:
//
//   - Decode / Encode round-trip a path through the polyline6 wire format
//     (signed delta coding, scale factor 1e6).
//   - PointToSegmentMeters and NearestSegment answer point-vs-path proximity
//     questions in meters.
//
// Distance math uses a planar equirectangular projection, which is accurate
// enough at city scale where segments are short. Functions here never return
// errors for out-of-range numeric input; they clamp and keep going.
package geo

import "fmt"

// Coordinate is an immutable (latitude, longitude) pair in degrees.
//
// Valid range is latitude [-90, 90] and longitude [-180, 180]. Construction
// does not enforce the range; use pkg/validation at the request boundary.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the coordinate as "lat,lon" with six decimal places,
// matching the precision of the polyline6 wire format.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Path is an ordered sequence of coordinates from route start to route end.
// Order is semantically meaningful; a path with fewer than two points cannot
// be evaluated for proximity.
type Path []Coordinate
