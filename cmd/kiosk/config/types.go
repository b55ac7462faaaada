// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
)

type KioskConfig struct {
	// Theater: which theater this kiosk sells for
	Theater TheaterConfig `yaml:"theater"`

	// API: theater backend connection
	API APIConfig `yaml:"api" validate:"required"`

	// Storage: local persistence paths
	Storage StorageConfig `yaml:"storage"`

	// Pricing: theater-level pricing defaults
	Pricing PricingConfig `yaml:"pricing"`

	// Logging: level and format
	Logging LoggingConfig `yaml:"logging"`
}

type TheaterConfig struct {
	// ID is the backend theater id. Empty on first run; commands
	// require it via config or the --theater flag.
	ID   string `yaml:"id"`
	Name string `yaml:"name"` // shown in the header
}

type APIConfig struct {
	BaseURL           string  `yaml:"base_url" validate:"required,url"` // e.g. http://localhost:8085/v1
	TimeoutSeconds    int     `yaml:"timeout_seconds"`                  // per-request deadline
	MaxRetries        int     `yaml:"max_retries"`                      // transient-failure retries
	RequestsPerSecond float64 `yaml:"requests_per_second"`              // 0 = unlimited
}

type StorageConfig struct {
	Path            string `yaml:"path"`              // badger directory
	BumpDir         string `yaml:"bump_dir"`          // stock bump files
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"` // catalog list cache
}

type PricingConfig struct {
	// TaxRate is the fallback when a line carries no rate. A fraction,
	// e.g. 0.05 for 5%.
	TaxRate        float64 `yaml:"tax_rate" validate:"gte=0,lte=1"`
	CurrencySymbol string  `yaml:"currency_symbol"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

func DefaultConfig() KioskConfig {
	dataDir := ".kiosk"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".kiosk")
	}
	return KioskConfig{
		Theater: TheaterConfig{
			Name: "Main Street Cinema",
		},
		API: APIConfig{
			BaseURL:           "http://localhost:8085/v1",
			TimeoutSeconds:    15,
			MaxRetries:        2,
			RequestsPerSecond: 10,
		},
		Storage: StorageConfig{
			Path:            filepath.Join(dataDir, "db"),
			BumpDir:         filepath.Join(dataDir, "bumps"),
			CacheTTLMinutes: 3,
		},
		Pricing: PricingConfig{
			TaxRate:        0.05,
			CurrencySymbol: "₹",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
