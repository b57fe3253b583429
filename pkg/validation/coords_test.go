// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"math"
	"testing"
)

func TestValidCoordinate(t *testing.T) {
	valid := []struct {
		name     string
		lat, lon float64
	}{
		{"bengaluru", 12.9716, 77.5946},
		{"equator meridian", 0, 0},
		{"extreme corners", -90, 180},
	}
	for _, tc := range valid {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidCoordinate(tc.lat, tc.lon); err != nil {
				t.Errorf("ValidCoordinate(%v, %v) = %v, want nil", tc.lat, tc.lon, err)
			}
		})
	}

	invalid := []struct {
		name     string
		lat, lon float64
	}{
		{"lat too high", 90.5, 0},
		{"lon too low", 0, -180.01},
		{"nan lat", math.NaN(), 77},
		{"inf lon", 12, math.Inf(1)},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidCoordinate(tc.lat, tc.lon); err == nil {
				t.Errorf("ValidCoordinate(%v, %v) = nil, want error", tc.lat, tc.lon)
			}
		})
	}
}

func TestSanitizeMode(t *testing.T) {
	got, err := SanitizeMode("  Driving ")
	if err != nil || got != "driving" {
		t.Errorf("SanitizeMode(Driving) = (%q, %v), want (driving, nil)", got, err)
	}

	got, err = SanitizeMode("")
	if err != nil || got != "driving" {
		t.Errorf("SanitizeMode(empty) = (%q, %v), want default driving", got, err)
	}

	if _, err := SanitizeMode("teleport"); err == nil {
		t.Error("SanitizeMode(teleport) = nil error, want rejection")
	}
}

func TestValidateWebhookURL(t *testing.T) {
	if err := ValidateWebhookURL("https://partner.example.com/hook"); err != nil {
		t.Errorf("valid https url rejected: %v", err)
	}
	if err := ValidateWebhookURL("ftp://partner.example.com"); err == nil {
		t.Error("ftp url accepted, want rejection")
	}
	if err := ValidateWebhookURL("   "); err == nil {
		t.Error("blank url accepted, want rejection")
	}
}
