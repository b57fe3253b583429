// Copyright (C) 2025 Margsathi (team@margsathi.in)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global ServiceConfig
	once   sync.Once
)

// Load ensures the config is loaded into the Global variable. The file
// path comes from MARGSATHI_CONFIG, defaulting to margsathi.yaml in the
// working directory; a missing file is created with defaults. API keys
// and the port can be overridden from the environment after the file is
// read.
func Load() error {
	var err error
	once.Do(func() {
		Global, err = loadFrom(configPath())
	})
	return err
}

func configPath() string {
	if path := os.Getenv("MARGSATHI_CONFIG"); path != "" {
		return path
	}
	return "margsathi.yaml"
}

func loadFrom(path string) (ServiceConfig, error) {
	// create it if it doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefault(path); err != nil {
			return ServiceConfig{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ServiceConfig{}, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ServiceConfig{}, fmt.Errorf("failed to parse the config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides layers deployment secrets over the file. Keys never
// live in the yaml in production.
func applyEnvOverrides(cfg *ServiceConfig) {
	if v := os.Getenv("MAPBOX_API_KEY"); v != "" {
		cfg.Providers.Mapbox.APIKey = v
	}
	if v := os.Getenv("GOOGLE_MAPS_API_KEY"); v != "" {
		cfg.Providers.Google.APIKey = v
	}
	if v := os.Getenv("MAPMYINDIA_API_KEY"); v != "" {
		cfg.Providers.MapmyIndia.APIKey = v
	}
	if v := os.Getenv("OSRM_BASE_URL"); v != "" {
		cfg.Providers.OSRM.BaseURL = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Server.OTLPEndpoint = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
