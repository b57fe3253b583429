// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package detour

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/margsathi/margsathi/pkg/geo"
	"github.com/margsathi/margsathi/services/routing/datatypes"
	"github.com/margsathi/margsathi/services/routing/providers"
	"github.com/margsathi/margsathi/services/routing/spatial"
)

// scriptedProvider replays a fixed sequence of responses and records
// every request it saw.
type scriptedProvider struct {
	name     string
	script   []scriptEntry
	requests []providers.Request
}

type scriptEntry struct {
	route *providers.Route
	err   error
}

func (s *scriptedProvider) Name() string            { return s.name }
func (s *scriptedProvider) Configured() bool        { return true }
func (s *scriptedProvider) SupportsAvoidance() bool { return true }

func (s *scriptedProvider) FetchRoute(ctx context.Context, req providers.Request) (*providers.Route, error) {
	s.requests = append(s.requests, req)
	if len(s.script) == 0 {
		return nil, providers.ErrNoRoute
	}
	entry := s.script[0]
	s.script = s.script[1:]
	return entry.route, entry.err
}

// currentPath runs north along longitude 77.60, about 2.2km long.
func currentPath() geo.Path {
	path := make(geo.Path, 0, 21)
	for i := 0; i <= 20; i++ {
		path = append(path, geo.Coordinate{
			Lat: 12.9000 + float64(i)*0.001,
			Lon: 77.6000,
		})
	}
	return path
}

// avoidingPath runs parallel roughly 2.2km east, well clear of any
// res-9 ring around the current path.
func avoidingPath() geo.Path {
	path := make(geo.Path, 0, 21)
	for i := 0; i <= 20; i++ {
		path = append(path, geo.Coordinate{
			Lat: 12.9000 + float64(i)*0.001,
			Lon: 77.6200,
		})
	}
	return path
}

func midpointEvent(radius float64) datatypes.Event {
	loc := geo.Coordinate{Lat: 12.9100, Lon: 77.6000}
	return datatypes.Event{
		Type:                 "Political Rally",
		Location:             &loc,
		Severity:             datatypes.SeverityHigh,
		AffectedRadiusMeters: radius,
	}
}

func newTestFinder(p providers.Provider) *Finder {
	g := providers.NewGateway([]providers.Provider{p}, providers.GatewayOptions{})
	return NewFinder(spatial.Default(), g, Options{})
}

func TestFindDetour_IrrelevantEventMakesNoProviderCalls(t *testing.T) {
	stub := &scriptedProvider{name: "mapbox"}
	f := newTestFinder(stub)

	// Event about 5km east of the path.
	far := geo.Coordinate{Lat: 12.9100, Lon: 77.6500}
	event := datatypes.Event{
		Type:                 "Accident",
		Location:             &far,
		Severity:             datatypes.SeverityHigh,
		AffectedRadiusMeters: 500,
	}

	result := f.FindDetour(context.Background(), event,
		currentPath()[0], currentPath()[20], currentPath(), "driving", "")

	assert.Nil(t, result)
	assert.Empty(t, stub.requests, "irrelevant events must not reach the gateway")
}

func TestFindDetour_MissingPreconditions(t *testing.T) {
	stub := &scriptedProvider{name: "mapbox"}
	f := newTestFinder(stub)
	path := currentPath()

	noLoc := datatypes.Event{Type: "Accident", Severity: datatypes.SeverityHigh}
	assert.Nil(t, f.FindDetour(context.Background(), noLoc, path[0], path[20], path, "driving", ""))

	assert.Nil(t, f.FindDetour(context.Background(), midpointEvent(500), path[0], path[20], nil, "driving", ""))
	assert.Empty(t, stub.requests)
}

func TestFindDetour_FirstValidCandidateWins(t *testing.T) {
	detourRoute := &providers.Route{
		Geometry:        geo.Encode(avoidingPath()),
		DistanceMeters:  9000,
		DurationSeconds: 1500,
	}
	stub := &scriptedProvider{name: "mapbox", script: []scriptEntry{{route: detourRoute}}}
	f := newTestFinder(stub)
	path := currentPath()

	result := f.FindDetour(context.Background(), midpointEvent(500),
		path[0], path[20], path, "driving", "")

	require.NotNil(t, result)
	assert.True(t, result.IsDetour)
	assert.False(t, result.IsBaseline)
	assert.Equal(t, "mapbox", result.Provider)
	assert.Len(t, stub.requests, 1, "search stops at the first verified candidate")
}

func TestFindDetour_CandidateOrderIsDeterministic(t *testing.T) {
	// Every candidate fails so the full order is observable.
	stub := &scriptedProvider{name: "mapbox"}
	f := newTestFinder(stub)
	path := currentPath()
	event := midpointEvent(500)

	result := f.FindDetour(context.Background(), event, path[0], path[20], path, "driving", "")
	assert.Nil(t, result)
	require.Len(t, stub.requests, 4)

	// Offsets ascend: 2.0km, 2.0km, 3.5km, 3.5km from the event.
	wantKm := []float64{2.0, 2.0, 3.5, 3.5}
	vias := make([]geo.Coordinate, 0, 4)
	for i, req := range stub.requests {
		require.Len(t, req.Via, 1)
		vias = append(vias, req.Via[0])
		dist := geo.Haversine(*event.Location, req.Via[0])
		assert.InDelta(t, wantKm[i]*1000, dist, 30, "candidate %d offset distance", i)
	}

	// The path heads north, so left of travel is west (smaller lon)
	// and right is east. Left before right at each distance.
	assert.Less(t, vias[0].Lon, event.Location.Lon, "candidate 0 is the left offset")
	assert.Greater(t, vias[1].Lon, event.Location.Lon, "candidate 1 is the right offset")
	assert.Less(t, vias[2].Lon, event.Location.Lon, "candidate 2 is the left offset")
	assert.Greater(t, vias[3].Lon, event.Location.Lon, "candidate 3 is the right offset")
}

func TestFindDetour_RejectsRouteThroughRestrictedZone(t *testing.T) {
	// Both scripted responses re-use the current geometry shifted by a
	// hair, still crossing the event cell, then the search exhausts.
	through := make(geo.Path, len(currentPath()))
	copy(through, currentPath())
	through[0].Lon += 0.00001

	badRoute := &providers.Route{Geometry: geo.Encode(through), DistanceMeters: 5000, DurationSeconds: 800}
	stub := &scriptedProvider{name: "mapbox", script: []scriptEntry{
		{route: badRoute}, {route: badRoute}, {route: badRoute}, {route: badRoute},
	}}
	f := newTestFinder(stub)
	path := currentPath()

	result := f.FindDetour(context.Background(), midpointEvent(500),
		path[0], path[20], path, "driving", "")

	assert.Nil(t, result, "routes through the restricted zone must be rejected")
	assert.Len(t, stub.requests, 4)
}

func TestFindDetour_RejectsUnchangedGeometry(t *testing.T) {
	path := currentPath()
	sameRoute := &providers.Route{Geometry: geo.Encode(path), DistanceMeters: 5000, DurationSeconds: 800}
	good := &providers.Route{Geometry: geo.Encode(avoidingPath()), DistanceMeters: 9000, DurationSeconds: 1500}
	stub := &scriptedProvider{name: "mapbox", script: []scriptEntry{
		{route: sameRoute}, {route: good},
	}}
	f := newTestFinder(stub)

	result := f.FindDetour(context.Background(), midpointEvent(500),
		path[0], path[20], path, "driving", "")

	require.NotNil(t, result)
	assert.Equal(t, geo.Encode(avoidingPath()), result.Geometry)
	assert.Len(t, stub.requests, 2, "identical geometry is rejected, next candidate tried")
}

func TestFindDetour_AvoidPointsPassedToGateway(t *testing.T) {
	stub := &scriptedProvider{name: "mapbox"}
	f := newTestFinder(stub)
	path := currentPath()
	event := midpointEvent(700) // k = 2, 19 cells

	f.FindDetour(context.Background(), event, path[0], path[20], path, "driving", "")
	require.NotEmpty(t, stub.requests)

	avoid := stub.requests[0].AvoidPoints
	assert.Len(t, avoid, 19)

	// First avoidance point is the event's own cell center.
	assert.Less(t, geo.Haversine(*event.Location, avoid[0]), 250.0)
}

func TestFindDetour_ProviderExhaustionFallsThroughToNil(t *testing.T) {
	stub := &scriptedProvider{name: "mapbox", script: []scriptEntry{
		{err: assert.AnError}, {err: assert.AnError}, {err: assert.AnError}, {err: assert.AnError},
	}}
	f := newTestFinder(stub)
	path := currentPath()

	result := f.FindDetour(context.Background(), midpointEvent(500),
		path[0], path[20], path, "driving", "")
	assert.Nil(t, result)
}
