// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import "math"

// EstimateSpeedMps returns a rough urban travel speed for a mode.
func EstimateSpeedMps(mode string) float64 {
	switch mode {
	case "walk", "walking":
		return 1.4 // ~5 km/h
	case "bike", "cycling":
		return 4.1 // ~15 km/h
	default:
		return 13.9 // car ~50 km/h urban average
	}
}

// EstimateCO2Kg estimates route emissions in kilograms.
// Very rough, illustrative values only (kg per km).
func EstimateCO2Kg(distanceMeters float64, mode string) float64 {
	switch mode {
	case "walk", "walking", "bike", "cycling":
		return 0.0
	default: // car
		return math.Round(distanceMeters/1000.0*0.18*1000) / 1000
	}
}
