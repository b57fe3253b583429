// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for values that
// cross the request boundary and end up in provider URLs.
//
// Coordinates and travel modes are interpolated into outbound provider
// requests, so they are validated once here and treated as trusted inside
// the core.
package validation

import (
	"fmt"
	"math"
	"strings"
)

// ValidCoordinate checks that lat/lon are finite and inside the valid
// geographic range (latitude [-90, 90], longitude [-180, 180]).
//
// Returns an error describing the first violation found.
//
// Example:
//
//	if err := validation.ValidCoordinate(req.Origin.Lat, req.Origin.Lon); err != nil {
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	    return
//	}
func ValidCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return fmt.Errorf("latitude is not a finite number")
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return fmt.Errorf("longitude is not a finite number")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %.6f out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %.6f out of range [-180, 180]", lon)
	}
	return nil
}

// travelModes is the set of accepted travel mode tags after normalization.
var travelModes = map[string]struct{}{
	"driving": {},
	"car":     {},
	"walking": {},
	"walk":    {},
	"cycling": {},
	"bike":    {},
}

// SanitizeMode normalizes and validates a travel mode tag.
// Returns the lowercase mode if accepted, or an error if unknown.
func SanitizeMode(mode string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		return "driving", nil
	}
	if _, ok := travelModes[normalized]; !ok {
		return "", fmt.Errorf("unknown travel mode %q", mode)
	}
	return normalized, nil
}

// ValidateWebhookURL checks that a webhook callback URL is http(s) and
// non-empty. Full reachability is the partner's problem; this only rejects
// obviously unusable values.
func ValidateWebhookURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("webhook url cannot be empty")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return fmt.Errorf("webhook url must start with http:// or https://")
	}
	return nil
}
