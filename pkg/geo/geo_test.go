// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Polyline Codec Tests
// =============================================================================

func TestPolylineRoundTrip(t *testing.T) {
	t.Run("path survives encode then decode", func(t *testing.T) {
		original := Path{
			{Lat: 12.935000, Lon: 77.624000},
			{Lat: 12.937500, Lon: 77.627000},
			{Lat: 12.940000, Lon: 77.630000},
		}

		encoded := Encode(original)
		require.NotEmpty(t, encoded)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		require.Len(t, decoded, len(original))

		for i := range original {
			assert.InDelta(t, original[i].Lat, decoded[i].Lat, 1e-6)
			assert.InDelta(t, original[i].Lon, decoded[i].Lon, 1e-6)
		}
	})

	t.Run("negative coordinates round-trip", func(t *testing.T) {
		original := Path{
			{Lat: -33.867487, Lon: 151.206990},
			{Lat: -33.868120, Lon: 151.204512},
		}

		decoded, err := Decode(Encode(original))
		require.NoError(t, err)
		require.Len(t, decoded, 2)
		for i := range original {
			assert.InDelta(t, original[i].Lat, decoded[i].Lat, 1e-6)
			assert.InDelta(t, original[i].Lon, decoded[i].Lon, 1e-6)
		}
	})

	t.Run("long path round-trips within tolerance", func(t *testing.T) {
		original := make(Path, 0, 1000)
		for i := 0; i < 1000; i++ {
			original = append(original, Coordinate{
				Lat: 12.9 + float64(i)*0.0001,
				Lon: 77.6 + float64(i)*0.00013,
			})
		}

		decoded, err := Decode(Encode(original))
		require.NoError(t, err)
		require.Len(t, decoded, 1000)
		for i := range original {
			assert.InDelta(t, original[i].Lat, decoded[i].Lat, 1e-6)
			assert.InDelta(t, original[i].Lon, decoded[i].Lon, 1e-6)
		}
	})

	t.Run("empty string decodes to nil path", func(t *testing.T) {
		decoded, err := Decode("")
		require.NoError(t, err)
		assert.Nil(t, decoded)
	})

	t.Run("empty path encodes to empty string", func(t *testing.T) {
		assert.Equal(t, "", Encode(nil))
	})
}

// =============================================================================
// Distance Tests
// =============================================================================

func TestHaversine(t *testing.T) {
	// Bengaluru city-center to airport is roughly 28 km as the crow flies.
	center := Coordinate{Lat: 12.9716, Lon: 77.5946}
	airport := Coordinate{Lat: 13.1986, Lon: 77.7066}

	d := Haversine(center, airport)
	assert.InDelta(t, 28000, d, 3000)

	t.Run("zero distance to self", func(t *testing.T) {
		assert.InDelta(t, 0, Haversine(center, center), 0.001)
	})
}

func TestPointToSegmentMeters(t *testing.T) {
	t.Run("point on the segment is at zero distance", func(t *testing.T) {
		a := Coordinate{Lat: 12.93, Lon: 77.62}
		b := Coordinate{Lat: 12.94, Lon: 77.62}
		mid := Coordinate{Lat: 12.935, Lon: 77.62}

		assert.InDelta(t, 0, PointToSegmentMeters(mid, a, b), 1.0)
	})

	t.Run("degenerate segment falls back to point distance", func(t *testing.T) {
		// Lon 0 keeps the per-point cos(lat) projection from adding an
		// x offset, so the distance is purely the latitude delta.
		a := Coordinate{Lat: 12.93, Lon: 0}
		p := Coordinate{Lat: 12.94, Lon: 0}

		d := PointToSegmentMeters(p, a, a)
		// One hundredth of a degree of latitude is about 1111 meters.
		assert.InDelta(t, 1111, d, 20)
	})

	t.Run("projection clamps beyond segment ends", func(t *testing.T) {
		a := Coordinate{Lat: 12.93, Lon: 0}
		b := Coordinate{Lat: 12.94, Lon: 0}
		beyond := Coordinate{Lat: 12.95, Lon: 0}

		d := PointToSegmentMeters(beyond, a, b)
		assert.InDelta(t, 1111, d, 20)
	})
}

func TestNearestSegment(t *testing.T) {
	path := Path{
		{Lat: 12.930, Lon: 77.620},
		{Lat: 12.935, Lon: 77.625},
		{Lat: 12.940, Lon: 77.630},
	}

	t.Run("finds the closest segment index", func(t *testing.T) {
		near := Coordinate{Lat: 12.9375, Lon: 77.6275}
		d, idx := NearestSegment(path, near)
		assert.Equal(t, 1, idx)
		assert.Less(t, d, 100.0)
	})

	t.Run("too few points yields no segment", func(t *testing.T) {
		d, idx := NearestSegment(Path{{Lat: 12.93, Lon: 77.62}}, Coordinate{})
		assert.Equal(t, -1, idx)
		assert.True(t, math.IsInf(d, 1))
	})
}

func TestNearestPointIndex(t *testing.T) {
	path := Path{
		{Lat: 12.930, Lon: 77.620},
		{Lat: 12.935, Lon: 77.625},
		{Lat: 12.940, Lon: 77.630},
	}

	assert.Equal(t, 1, NearestPointIndex(path, Coordinate{Lat: 12.9351, Lon: 77.6249}))
	assert.Equal(t, 0, NearestPointIndex(path, Coordinate{Lat: 12.0, Lon: 77.0}))
	assert.Equal(t, -1, NearestPointIndex(nil, Coordinate{}))

	t.Run("tie keeps the earliest index", func(t *testing.T) {
		symmetric := Path{
			{Lat: 12.0, Lon: 77.620},
			{Lat: 13.0, Lon: 77.620},
		}
		// Equidistant from both points; the 0.5 deltas are exactly
		// representable, so the squared distances tie bit-for-bit.
		mid := Coordinate{Lat: 12.5, Lon: 77.620}
		assert.Equal(t, 0, NearestPointIndex(symmetric, mid))
	})
}
