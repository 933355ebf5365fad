// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

/*
Package config provides layered configuration for Caremap.

Configuration is assembled by koanf in increasing priority:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, config.yaml, /etc/caremap/config.yaml)
 3. Optional .env file, loaded into the process environment without overriding it
 4. Environment variables (explicit name map, see envMappings)

Sections:

  - Server: HTTP listener (HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, ENVIRONMENT)
  - Datasets: GeoJSON sources for regions, professionals and communes
  - Routing: OSRM endpoint, candidate count, timeouts, pacing and cache
  - Map: default view center and zoom
  - Session: map session idle expiry
  - Security: CORS and inbound rate limiting
  - Logging: LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Example:

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Datasets DatasetsConfig `koanf:"datasets"`
	Routing  RoutingConfig  `koanf:"routing"`
	Map      MapConfig      `koanf:"map"`
	Session  SessionConfig  `koanf:"session"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatasetsConfig locates the three GeoJSON FeatureCollections.
// A source is an http(s) URL, a file:// URL or a local path.
type DatasetsConfig struct {
	Regions       string `koanf:"regions"`
	Professionals string `koanf:"professionals"`
	// Communes is decorative. Empty disables the layer; a failed load only warns.
	Communes string `koanf:"communes"`

	RegionCodeField string `koanf:"region_code_field"`
	RegionNameField string `koanf:"region_name_field"`

	// FetchTimeout bounds the whole concurrent fetch of all datasets.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
	// MaxBytes caps a single dataset body.
	MaxBytes int64 `koanf:"max_bytes"`
}

// RoutingConfig controls the nearest-professional search.
type RoutingConfig struct {
	BaseURL string `koanf:"base_url"`
	Profile string `koanf:"profile"`

	// Timeout applies to each routing request independently.
	Timeout       time.Duration `koanf:"timeout"`
	MaxCandidates int           `koanf:"max_candidates"`
	Concurrency   int           `koanf:"concurrency"`

	// RateLimit is outbound requests per second to the routing service. 0 disables pacing.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	CacheTTL     time.Duration `koanf:"cache_ttl"`
	CacheBackend string        `koanf:"cache_backend"` // memory or redis
	RedisURL     string        `koanf:"redis_url"`
}

// MapConfig is the initial map view handed to clients.
type MapConfig struct {
	CenterLongitude float64 `koanf:"center_longitude"`
	CenterLatitude  float64 `koanf:"center_latitude"`
	Zoom            float64 `koanf:"zoom"`
}

// SessionConfig controls map session lifetime.
type SessionConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, an optional file, .env and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
