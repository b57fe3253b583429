// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geo

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

// polyline6 is the shared wire codec: two dimensions, scale factor 1e6.
// Every routing provider we talk to is asked for polyline6 geometry, so a
// single codec covers the whole system.
var polyline6 = &polyline.Codec{Dim: 2, Scale: 1e6}

// Decode converts a polyline6-encoded string into a Path.
//
// # Inputs
//
//   - encoded: the encoded polyline string as received from a provider
//
// # Outputs
//
//   - Path: decoded (lat, lon) sequence in wire order
//   - error: non-nil if the string is malformed or has trailing garbage
func Decode(encoded string) (Path, error) {
	if encoded == "" {
		return nil, nil
	}
	coords, rest, err := polyline6.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("decode polyline: %d trailing bytes", len(rest))
	}
	path := make(Path, 0, len(coords))
	for _, c := range coords {
		path = append(path, Coordinate{Lat: c[0], Lon: c[1]})
	}
	return path, nil
}

// Encode converts a Path into its polyline6-encoded string form.
// Encode(Decode(s)) == s for any well-formed s, and Decode(Encode(p))
// reproduces p within the 1e-6 degree precision of the format.
func Encode(path Path) string {
	if len(path) == 0 {
		return ""
	}
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline6.EncodeCoords(nil, coords))
}
