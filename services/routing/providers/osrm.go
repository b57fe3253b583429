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
)

const osrmDefaultBaseURL = "https://router.project-osrm.org"

// OSRMClient talks to an OSRM instance. The public demo server needs no
// API key, which makes OSRM the fallback of last resort that is always
// configured. OSRM has no point-exclusion support.
type OSRMClient struct {
	baseURL string
	http    *http.Client
}

// NewOSRMClient creates an OSRM client against the given base URL, or the
// public demo server when empty.
func NewOSRMClient(baseURL string) *OSRMClient {
	if baseURL == "" {
		baseURL = osrmDefaultBaseURL
	}
	return &OSRMClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *OSRMClient) Name() string            { return "osrm" }
func (c *OSRMClient) Configured() bool        { return true }
func (c *OSRMClient) SupportsAvoidance() bool { return false }

type osrmResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry string    `json:"geometry"`
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Legs     []osrmLeg `json:"legs"`
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmStep struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// toRoute flattens an OSRM-shaped route, legs included, into the
// provider-neutral Route. Mappls shares this response shape.
func (r osrmRoute) toRoute() *Route {
	route := &Route{
		Geometry:        r.Geometry,
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
	}
	for _, leg := range r.Legs {
		for _, s := range leg.Steps {
			route.Steps = append(route.Steps, Step{
				Name:           s.Name,
				DistanceMeters: s.Distance,
				DurationSecs:   s.Duration,
			})
		}
	}
	return route
}

func (c *OSRMClient) FetchRoute(ctx context.Context, req Request) (*Route, error) {
	params := url.Values{}
	params.Set("overview", "full")
	params.Set("geometries", "polyline6")
	params.Set("steps", "true")

	endpoint := fmt.Sprintf("%s/route/v1/%s/%s?%s",
		c.baseURL, profileFor(req.Mode), coordinateList(req), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("osrm: build request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("osrm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osrm: status %d", resp.StatusCode)
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("osrm: decode response: %w", err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, ErrNoRoute
	}

	return parsed.Routes[0].toRoute(), nil
}
