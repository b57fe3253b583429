// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

// ServiceConfig is the root configuration for the routing service.
type ServiceConfig struct {
	// Server: HTTP listener and telemetry endpoints
	Server ServerConfig `yaml:"server"`

	// Providers: routing backend credentials and fallback order
	Providers ProvidersConfig `yaml:"providers"`

	// Detour: detour search tuning
	Detour DetourConfig `yaml:"detour"`

	// Spatial: hex index tuning
	Spatial SpatialConfig `yaml:"spatial"`

	// Logging: log level and optional file sink
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port int `yaml:"port"` // e.g. 8000

	// OTLPEndpoint receives traces over gRPC. Empty disables tracing.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
}

type ProvidersConfig struct {
	// Chain is the fallback priority order by provider name.
	Chain []string `yaml:"chain"`

	Mapbox     ProviderConfig `yaml:"mapbox"`
	Google     ProviderConfig `yaml:"google"`
	MapmyIndia ProviderConfig `yaml:"mapmyindia"`
	OSRM       ProviderConfig `yaml:"osrm"`

	// RequestsPerSecond caps each provider's call rate. Zero disables
	// limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type DetourConfig struct {
	// OffsetsKm are the perpendicular offset distances tried in order.
	OffsetsKm []float64 `yaml:"offsets_km"`

	// RingScaleMeters converts an event radius into a hex ring size.
	RingScaleMeters float64 `yaml:"ring_scale_meters"`

	// DefaultImpactRadiusMeters applies when an event reports no radius.
	DefaultImpactRadiusMeters float64 `yaml:"default_impact_radius_meters"`
}

type SpatialConfig struct {
	// Resolution is the H3 cell resolution, 0-15.
	Resolution int `yaml:"resolution"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warning, error
	Dir   string `yaml:"dir,omitempty"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() ServiceConfig {
	return ServiceConfig{
		Server: ServerConfig{
			Port: 8000,
		},
		Providers: ProvidersConfig{
			Chain: []string{"mapbox", "google", "mapmyindia", "osrm"},
		},
		Detour: DetourConfig{
			OffsetsKm:                 []float64{2.0, 3.5},
			RingScaleMeters:           350,
			DefaultImpactRadiusMeters: 500,
		},
		Spatial: SpatialConfig{
			Resolution: 9,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
	}
}
