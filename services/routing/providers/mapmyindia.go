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

const mapplsDefaultBaseURL = "https://apis.mappls.com/advancedmaps/v1"

// MapplsClient talks to the MapMyIndia (Mappls) routing API. The API
// key is part of the URL path rather than a query parameter. Mappls
// follows the OSRM response shape and supports polyline6 natively but
// has no point-exclusion support.
type MapplsClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewMapplsClient creates a Mappls routing client. An empty apiKey
// leaves the client unconfigured.
func NewMapplsClient(apiKey, baseURL string) *MapplsClient {
	if baseURL == "" {
		baseURL = mapplsDefaultBaseURL
	}
	return &MapplsClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *MapplsClient) Name() string            { return "mapmyindia" }
func (c *MapplsClient) Configured() bool        { return c.apiKey != "" }
func (c *MapplsClient) SupportsAvoidance() bool { return false }

func (c *MapplsClient) FetchRoute(ctx context.Context, req Request) (*Route, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	coords := make([]string, 0, 2+len(req.Via))
	coords = append(coords, fmt.Sprintf("%f,%f", req.Origin.Lon, req.Origin.Lat))
	for _, v := range req.Via {
		coords = append(coords, fmt.Sprintf("%f,%f", v.Lon, v.Lat))
	}
	coords = append(coords, fmt.Sprintf("%f,%f", req.Destination.Lon, req.Destination.Lat))

	params := url.Values{}
	params.Set("geometries", "polyline6")
	params.Set("overview", "full")
	params.Set("steps", "true")
	if req.Alternatives {
		params.Set("alternatives", "true")
	}

	endpoint := fmt.Sprintf("%s/%s/route_adv/%s/%s?%s",
		c.baseURL, c.apiKey, profileFor(req.Mode), strings.Join(coords, ";"), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("mapmyindia: build request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mapmyindia: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapmyindia: status %d", resp.StatusCode)
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("mapmyindia: decode response: %w", err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, ErrNoRoute
	}

	return parsed.Routes[0].toRoute(), nil
}
