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
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	mapboxDefaultBaseURL = "https://api.mapbox.com/directions/v5/mapbox"

	// mapboxExcludeCap is the maximum number of exclusion points the
	// Directions API accepts per request. Excess points are dropped;
	// the request ordering keeps the nearest-to-event ones.
	mapboxExcludeCap = 50
)

// MapboxClient talks to the Mapbox Directions API. It is the only
// provider in the chain with native point-exclusion support, which makes
// it the preferred backend whenever an avoidance zone is in play.
type MapboxClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewMapboxClient creates a Mapbox client. An empty apiKey leaves the
// client unconfigured; the gateway will skip it.
func NewMapboxClient(apiKey, baseURL string) *MapboxClient {
	if baseURL == "" {
		baseURL = mapboxDefaultBaseURL
	}
	return &MapboxClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *MapboxClient) Name() string            { return "mapbox" }
func (c *MapboxClient) Configured() bool        { return c.apiKey != "" }
func (c *MapboxClient) SupportsAvoidance() bool { return true }

type mapboxResponse struct {
	Code   string        `json:"code"`
	Routes []mapboxRoute `json:"routes"`
}

type mapboxRoute struct {
	Geometry string      `json:"geometry"`
	Distance float64     `json:"distance"`
	Duration float64     `json:"duration"`
	Legs     []mapboxLeg `json:"legs"`
}

type mapboxLeg struct {
	Steps []mapboxStep `json:"steps"`
}

type mapboxStep struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Maneuver struct {
		Instruction string `json:"instruction"`
	} `json:"maneuver"`
}

// FetchRoute requests a route, translating avoid points into the
// Directions API's "exclude=point(lon lat)" syntax.
func (c *MapboxClient) FetchRoute(ctx context.Context, req Request) (*Route, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	coords := coordinateList(req)
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, profileFor(req.Mode), coords)

	params := url.Values{}
	params.Set("access_token", c.apiKey)
	params.Set("geometries", "polyline6")
	params.Set("overview", "full")
	params.Set("steps", "true")
	params.Set("alternatives", fmt.Sprintf("%t", req.Alternatives))

	if len(req.AvoidPoints) > 0 {
		points := req.AvoidPoints
		if len(points) > mapboxExcludeCap {
			points = points[:mapboxExcludeCap]
		}
		parts := make([]string, 0, len(points))
		for _, p := range points {
			parts = append(parts, fmt.Sprintf("point(%f %f)", p.Lon, p.Lat))
		}
		params.Set("exclude", strings.Join(parts, ","))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("mapbox: build request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mapbox: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("mapbox: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("mapbox: decode response: %w", err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, ErrNoRoute
	}

	best := parsed.Routes[0]
	route := &Route{
		Geometry:        best.Geometry,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
	}
	for _, leg := range best.Legs {
		for _, s := range leg.Steps {
			route.Steps = append(route.Steps, Step{
				Instruction:    s.Maneuver.Instruction,
				Name:           s.Name,
				DistanceMeters: s.Distance,
				DurationSecs:   s.Duration,
			})
		}
	}
	return route, nil
}

// coordinateList formats origin, via points and destination as the
// "lon,lat;lon,lat" path segment shared by the OSRM-style APIs.
func coordinateList(req Request) string {
	parts := make([]string, 0, len(req.Via)+2)
	parts = append(parts, fmt.Sprintf("%f,%f", req.Origin.Lon, req.Origin.Lat))
	for _, v := range req.Via {
		parts = append(parts, fmt.Sprintf("%f,%f", v.Lon, v.Lat))
	}
	parts = append(parts, fmt.Sprintf("%f,%f", req.Destination.Lon, req.Destination.Lat))
	return strings.Join(parts, ";")
}
