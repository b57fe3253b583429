// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/twpayne/go-polyline"

	"github.com/margsathi/margsathi/pkg/geo"
)

const googleDefaultBaseURL = "https://maps.googleapis.com/maps/api/directions/json"

// GoogleClient talks to the Google Directions API. Google encodes
// geometry at 1e5 precision, so the client re-encodes to the polyline6
// contract the rest of the system expects. No point-exclusion support.
type GoogleClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewGoogleClient creates a Google Directions client. An empty apiKey
// leaves the client unconfigured.
func NewGoogleClient(apiKey, baseURL string) *GoogleClient {
	if baseURL == "" {
		baseURL = googleDefaultBaseURL
	}
	return &GoogleClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *GoogleClient) Name() string            { return "google" }
func (c *GoogleClient) Configured() bool        { return c.apiKey != "" }
func (c *GoogleClient) SupportsAvoidance() bool { return false }

type googleResponse struct {
	Status string        `json:"status"`
	Routes []googleRoute `json:"routes"`
}

type googleRoute struct {
	OverviewPolyline struct {
		Points string `json:"points"`
	} `json:"overview_polyline"`
	Legs []googleLeg `json:"legs"`
}

type googleLeg struct {
	Distance googleValue  `json:"distance"`
	Duration googleValue  `json:"duration"`
	Steps    []googleStep `json:"steps"`
}

type googleValue struct {
	Value float64 `json:"value"`
}

type googleStep struct {
	HTMLInstructions string      `json:"html_instructions"`
	Distance         googleValue `json:"distance"`
	Duration         googleValue `json:"duration"`
}

func (c *GoogleClient) FetchRoute(ctx context.Context, req Request) (*Route, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("origin", fmt.Sprintf("%f,%f", req.Origin.Lat, req.Origin.Lon))
	params.Set("destination", fmt.Sprintf("%f,%f", req.Destination.Lat, req.Destination.Lon))
	params.Set("mode", googleMode(req.Mode))
	if len(req.Via) > 0 {
		parts := make([]string, 0, len(req.Via))
		for _, v := range req.Via {
			parts = append(parts, fmt.Sprintf("via:%f,%f", v.Lat, v.Lon))
		}
		params.Set("waypoints", strings.Join(parts, "|"))
	}
	if req.Alternatives {
		params.Set("alternatives", "true")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google: build request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("google: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: status %d", resp.StatusCode)
	}

	var parsed googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("google: decode response: %w", err)
	}
	if parsed.Status != "OK" || len(parsed.Routes) == 0 {
		return nil, ErrNoRoute
	}

	best := parsed.Routes[0]
	geometry, err := reencodePolyline5(best.OverviewPolyline.Points)
	if err != nil {
		return nil, fmt.Errorf("google: normalize geometry: %w", err)
	}

	route := &Route{Geometry: geometry}
	for _, leg := range best.Legs {
		route.DistanceMeters += leg.Distance.Value
		route.DurationSeconds += leg.Duration.Value
		for _, s := range leg.Steps {
			route.Steps = append(route.Steps, Step{
				Instruction:    s.HTMLInstructions,
				DistanceMeters: s.Distance.Value,
				DurationSecs:   s.Duration.Value,
			})
		}
	}
	return route, nil
}

// reencodePolyline5 converts Google's 1e5-precision polyline into the
// system-wide polyline6 format.
func reencodePolyline5(encoded string) (string, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return "", err
	}
	path := make(geo.Path, 0, len(coords))
	for _, c := range coords {
		path = append(path, geo.Coordinate{Lat: c[0], Lon: c[1]})
	}
	return geo.Encode(path), nil
}

func googleMode(mode string) string {
	switch profileFor(mode) {
	case "walking":
		return "walking"
	case "cycling":
		return "bicycling"
	default:
		return "driving"
	}
}
