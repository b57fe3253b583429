// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package spatial

import (
	"math"

	"github.com/margsathi/margsathi/pkg/geo"
)

// earthRadiusKm is the mean Earth radius used by the spherical projection.
const earthRadiusKm = 6371.0

// Side selects which side of a bearing a perpendicular offset lands on.
type Side string

const (
	// SideLeft offsets at bearing minus 90 degrees.
	SideLeft Side = "left"

	// SideRight offsets at bearing plus 90 degrees.
	SideRight Side = "right"
)

// Bearing returns the initial great-circle compass bearing from p1 to p2,
// normalized into [0, 360).
func Bearing(p1, p2 geo.Coordinate) float64 {
	lat1 := radians(p1.Lat)
	lat2 := radians(p2.Lat)
	dLon := radians(p2.Lon - p1.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return math.Mod(degrees(math.Atan2(y, x))+360, 360)
}

// PerpendicularPoint projects a point distanceKm away from origin,
// perpendicular to the given bearing on the requested side, using the
// spherical law of cosines.
//
// Left is bearing-90, right is bearing+90, both wrapped into [0, 360).
// The detour search relies on this left/right asymmetry being exact: the
// candidate order is part of the observable contract.
func PerpendicularPoint(origin geo.Coordinate, bearingDeg, distanceKm float64, side Side) geo.Coordinate {
	var offsetBearing float64
	if side == SideLeft {
		offsetBearing = math.Mod(bearingDeg-90+360, 360)
	} else {
		offsetBearing = math.Mod(bearingDeg+90, 360)
	}

	lat := radians(origin.Lat)
	lon := radians(origin.Lon)
	brng := radians(offsetBearing)
	angular := distanceKm / earthRadiusKm

	newLat := math.Asin(math.Sin(lat)*math.Cos(angular) +
		math.Cos(lat)*math.Sin(angular)*math.Cos(brng))
	newLon := lon + math.Atan2(
		math.Sin(brng)*math.Sin(angular)*math.Cos(lat),
		math.Cos(angular)-math.Sin(lat)*math.Sin(newLat),
	)

	return geo.Coordinate{Lat: degrees(newLat), Lon: degrees(newLon)}
}

// LocalBearing returns the bearing of the route segment closest to the
// given point: the bearing from the nearest path point to its successor,
// or from its predecessor when the nearest point ends the path.
//
// Paths with fewer than two points have no bearing; 0 is returned.
func LocalBearing(path geo.Path, at geo.Coordinate) float64 {
	if len(path) < 2 {
		return 0
	}
	idx := geo.NearestPointIndex(path, at)
	if idx < len(path)-1 {
		return Bearing(path[idx], path[idx+1])
	}
	return Bearing(path[idx-1], path[idx])
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
