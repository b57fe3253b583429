// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package decision

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/margsathi/margsathi/pkg/geo"
	"github.com/margsathi/margsathi/services/routing/datatypes"
	"github.com/margsathi/margsathi/services/routing/providers"
)

// straightPath builds a north-south path with n points roughly 111m apart.
func straightPath(n int) geo.Path {
	path := make(geo.Path, 0, n)
	for i := 0; i < n; i++ {
		path = append(path, geo.Coordinate{
			Lat: 12.9000 + float64(i)*0.001,
			Lon: 77.6000,
		})
	}
	return path
}

// midpointEvent places an event directly on the path near its middle.
func midpointEvent(path geo.Path, severity datatypes.Severity) datatypes.Event {
	mid := path[len(path)/2]
	return datatypes.Event{
		Type:     "Accident",
		Location: &mid,
		Severity: severity,
	}
}

func TestEvaluateImpact_InvalidGeometry(t *testing.T) {
	e := NewEngine(nil, nil)

	for _, path := range []geo.Path{nil, {}, {{Lat: 12.9, Lon: 77.6}}} {
		eval := e.EvaluateImpact(path, datatypes.Event{Severity: datatypes.SeverityHigh})
		assert.Equal(t, datatypes.DecisionContinue, eval.Decision)
		assert.Equal(t, "Invalid or empty route geometry", eval.Reason)
		assert.Equal(t, -1, eval.Details.ClosestIndex)
	}
}

func TestEvaluateImpact_NoLocation(t *testing.T) {
	e := NewEngine(nil, nil)
	eval := e.EvaluateImpact(straightPath(20), datatypes.Event{
		Type:     "Accident",
		Severity: datatypes.SeverityCritical,
	})

	assert.Equal(t, datatypes.DecisionContinue, eval.Decision)
	assert.Contains(t, eval.Reason, "no location")
}

func TestEvaluateImpact_ClearOfRoute(t *testing.T) {
	e := NewEngine(nil, nil)

	// Event roughly 5.4km east of the path.
	far := geo.Coordinate{Lat: 12.910, Lon: 77.650}
	eval := e.EvaluateImpact(straightPath(20), datatypes.Event{
		Type:     "Accident",
		Location: &far,
		Severity: datatypes.SeverityCritical,
	})

	assert.Equal(t, datatypes.DecisionContinue, eval.Decision)
	assert.Contains(t, eval.Reason, "clear of route path")
	assert.False(t, eval.Details.IsOnRoute)
	assert.Greater(t, eval.Details.MinDistanceMeters, 1000.0)
}

func TestEvaluateImpact_HighSeverityMidRoute(t *testing.T) {
	e := NewEngine(nil, nil)
	path := straightPath(20)

	eval := e.EvaluateImpact(path, midpointEvent(path, datatypes.SeverityHigh))

	assert.Equal(t, datatypes.DecisionReroute, eval.Decision)
	assert.Contains(t, eval.Reason, "Critical event (Accident)")
	assert.True(t, eval.Details.IsOnRoute)
	assert.Equal(t, "HIGH", eval.Details.EventSeverity)
	assert.InDelta(t, 500.0, eval.Details.ImpactRadius, 0.01)
}

func TestEvaluateImpact_SeverityBranches(t *testing.T) {
	e := NewEngine(nil, nil)
	path := straightPath(20)

	cases := []struct {
		severity datatypes.Severity
		want     datatypes.Decision
	}{
		{datatypes.SeverityHigh, datatypes.DecisionReroute},
		{datatypes.SeverityCritical, datatypes.DecisionReroute},
		{datatypes.SeveritySevere, datatypes.DecisionReroute},
		{datatypes.SeverityMedium, datatypes.DecisionContinue},
		{datatypes.SeverityLow, datatypes.DecisionContinue},
		{"nonsense", datatypes.DecisionContinue},
	}
	for _, tt := range cases {
		t.Run(string(tt.severity), func(t *testing.T) {
			eval := e.EvaluateImpact(path, midpointEvent(path, tt.severity))
			assert.Equal(t, tt.want, eval.Decision)
		})
	}
}

func TestEvaluateImpact_EndpointGuard(t *testing.T) {
	e := NewEngine(nil, nil)
	path := straightPath(50)

	// Event on the second point: segment index 1 of 49, ~2%.
	near := path[1]
	eval := e.EvaluateImpact(path, datatypes.Event{
		Type:     "Accident",
		Location: &near,
		Severity: datatypes.SeverityHigh,
	})
	assert.Equal(t, datatypes.DecisionContinue, eval.Decision)
	assert.Contains(t, eval.Reason, "too close to start/end")

	// Event near the destination, ~96%.
	tail := path[len(path)-2]
	eval = e.EvaluateImpact(path, datatypes.Event{
		Type:     "Accident",
		Location: &tail,
		Severity: datatypes.SeverityHigh,
	})
	assert.Equal(t, datatypes.DecisionContinue, eval.Decision)
	assert.Contains(t, eval.Reason, "too close to start/end")
}

func TestEvaluateImpact_ShortPathEventNearStart(t *testing.T) {
	// On a 3-point route the first segment covers half of it, so an event
	// sitting just past the origin still lands on segment 0 at the 0%
	// mark and the endpoint guard holds the current route.
	path := geo.Path{
		{Lat: 12.935, Lon: 77.624},
		{Lat: 12.9375, Lon: 77.627},
		{Lat: 12.940, Lon: 77.630},
	}
	loc := geo.Coordinate{Lat: 12.9365, Lon: 77.6255}
	engine := NewEngine(nil, nil)

	eval := engine.EvaluateImpact(path, datatypes.Event{
		Type:                 "Accident",
		Location:             &loc,
		Severity:             datatypes.SeverityHigh,
		AffectedRadiusMeters: 500,
	})

	assert.Equal(t, datatypes.DecisionContinue, eval.Decision)
	assert.Contains(t, eval.Reason, "too close to start/end")
	assert.True(t, eval.Details.IsOnRoute)
	assert.Equal(t, 0, eval.Details.ClosestIndex)
	assert.Zero(t, eval.Details.SegmentPercentage)
}

func TestEvaluateImpact_CustomRadius(t *testing.T) {
	e := NewEngine(nil, nil)
	path := straightPath(20)

	// Event ~330m east of the path midpoint. Inside a 400m radius,
	// outside the 100m one.
	offset := geo.Coordinate{Lat: path[10].Lat, Lon: path[10].Lon + 0.003}

	wide := e.EvaluateImpact(path, datatypes.Event{
		Type: "Waterlogging", Location: &offset,
		Severity: datatypes.SeverityHigh, AffectedRadiusMeters: 400,
	})
	assert.Equal(t, datatypes.DecisionReroute, wide.Decision)

	tight := e.EvaluateImpact(path, datatypes.Event{
		Type: "Waterlogging", Location: &offset,
		Severity: datatypes.SeverityHigh, AffectedRadiusMeters: 100,
	})
	assert.Equal(t, datatypes.DecisionContinue, tight.Decision)
	assert.False(t, tight.Details.IsOnRoute)
}

func TestEvaluateImpact_DetailsRounding(t *testing.T) {
	e := NewEngine(nil, nil)
	path := straightPath(20)
	eval := e.EvaluateImpact(path, midpointEvent(path, datatypes.SeverityLow))

	// One decimal means scaling by 10 lands on a whole number.
	assert.InDelta(t, math.Round(eval.Details.MinDistanceMeters*10), eval.Details.MinDistanceMeters*10, 1e-6)
	assert.InDelta(t, math.Round(eval.Details.SegmentPercentage*10), eval.Details.SegmentPercentage*10, 1e-6)

	// The midpoint of 19 segments is segment 9: 47.4% after rounding.
	assert.InDelta(t, 47.4, eval.Details.SegmentPercentage, 0.01)
}

func TestGenerateBaselineRoute(t *testing.T) {
	stub := &stubProvider{name: "mapbox", route: &providers.Route{
		Geometry:        geo.Encode(straightPath(5)),
		DistanceMeters:  4500,
		DurationSeconds: 900,
		Steps:           []providers.Step{{Instruction: "Head north"}},
	}}
	g := providers.NewGateway([]providers.Provider{stub}, providers.GatewayOptions{})
	e := NewEngine(g, nil)

	candidate, err := e.GenerateBaselineRoute(context.Background(),
		geo.Coordinate{Lat: 12.9166, Lon: 77.6101},
		geo.Coordinate{Lat: 12.9757, Lon: 77.6068},
		"driving", "")
	require.NoError(t, err)

	assert.True(t, candidate.IsBaseline)
	assert.False(t, candidate.IsDetour)
	assert.Equal(t, "mapbox", candidate.Provider)
	assert.InDelta(t, 4500.0, candidate.DistanceMeters, 0.01)
	require.Len(t, candidate.Steps, 1)
	assert.Equal(t, "Head north", candidate.Steps[0].Instruction)
}

func TestGenerateBaselineRoute_AllProvidersFail(t *testing.T) {
	stub := &stubProvider{name: "mapbox", err: assert.AnError}
	g := providers.NewGateway([]providers.Provider{stub}, providers.GatewayOptions{})
	e := NewEngine(g, nil)

	_, err := e.GenerateBaselineRoute(context.Background(),
		geo.Coordinate{Lat: 12.9166, Lon: 77.6101},
		geo.Coordinate{Lat: 12.9757, Lon: 77.6068},
		"driving", "")
	assert.ErrorIs(t, err, providers.ErrAllProvidersExhausted)
}

// stubProvider is a minimal in-package provider stub.
type stubProvider struct {
	name  string
	route *providers.Route
	err   error
}

func (s *stubProvider) Name() string            { return s.name }
func (s *stubProvider) Configured() bool        { return true }
func (s *stubProvider) SupportsAvoidance() bool { return true }

func (s *stubProvider) FetchRoute(ctx context.Context, req providers.Request) (*providers.Route, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.route, nil
}
