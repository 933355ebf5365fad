// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatasets(); err != nil {
		return err
	}
	if err := c.validateRouting(); err != nil {
		return err
	}
	if err := c.validateMap(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatasets() error {
	if c.Datasets.Regions == "" {
		return fmt.Errorf("REGIONS_URL is required")
	}
	if err := validateDatasetSource(c.Datasets.Regions, "REGIONS_URL"); err != nil {
		return err
	}
	if c.Datasets.Professionals == "" {
		return fmt.Errorf("PROFESSIONALS_URL is required")
	}
	if err := validateDatasetSource(c.Datasets.Professionals, "PROFESSIONALS_URL"); err != nil {
		return err
	}
	if c.Datasets.Communes != "" {
		if err := validateDatasetSource(c.Datasets.Communes, "COMMUNES_URL"); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.Datasets.RegionCodeField) == "" {
		return fmt.Errorf("REGION_CODE_FIELD must not be empty")
	}
	if strings.TrimSpace(c.Datasets.RegionNameField) == "" {
		return fmt.Errorf("REGION_NAME_FIELD must not be empty")
	}
	if c.Datasets.FetchTimeout < time.Second {
		return fmt.Errorf("DATASET_FETCH_TIMEOUT must be at least 1s, got %v", c.Datasets.FetchTimeout)
	}
	if c.Datasets.MaxBytes <= 0 {
		return fmt.Errorf("DATASET_MAX_BYTES must be positive")
	}
	return nil
}

var validCacheBackends = map[string]bool{
	"memory": true,
	"redis":  true,
	"none":   true,
}

func (c *Config) validateRouting() error {
	if err := validateHTTPURL(c.Routing.BaseURL, "ROUTING_URL"); err != nil {
		return fmt.Errorf("ROUTING_URL is invalid: %w", err)
	}
	if c.Routing.Profile == "" || strings.ContainsAny(c.Routing.Profile, "/?#; ") {
		return fmt.Errorf("ROUTING_PROFILE must be a single path segment, got %q", c.Routing.Profile)
	}
	if c.Routing.Timeout <= 0 {
		return fmt.Errorf("ROUTING_TIMEOUT must be positive")
	}
	if c.Routing.MaxCandidates < 1 || c.Routing.MaxCandidates > 100 {
		return fmt.Errorf("ROUTING_MAX_CANDIDATES must be between 1 and 100, got %d", c.Routing.MaxCandidates)
	}
	if c.Routing.Concurrency < 1 {
		return fmt.Errorf("ROUTING_CONCURRENCY must be at least 1")
	}
	if c.Routing.RateLimit < 0 {
		return fmt.Errorf("ROUTING_RATE_LIMIT must not be negative")
	}
	if c.Routing.RateLimit > 0 && c.Routing.RateBurst < 1 {
		return fmt.Errorf("ROUTING_RATE_BURST must be at least 1 when rate limiting is enabled")
	}
	if !validCacheBackends[c.Routing.CacheBackend] {
		return fmt.Errorf("ROUTING_CACHE_BACKEND must be one of: memory, redis, none")
	}
	if c.Routing.CacheBackend == "redis" && c.Routing.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when ROUTING_CACHE_BACKEND=redis")
	}
	if c.Routing.CacheBackend != "none" && c.Routing.CacheTTL <= 0 {
		return fmt.Errorf("ROUTING_CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateMap() error {
	if c.Map.CenterLongitude < -180 || c.Map.CenterLongitude > 180 {
		return fmt.Errorf("MAP_CENTER_LON must be between -180 and 180")
	}
	if c.Map.CenterLatitude < -90 || c.Map.CenterLatitude > 90 {
		return fmt.Errorf("MAP_CENTER_LAT must be between -90 and 90")
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		return fmt.Errorf("MAP_ZOOM must be between 0 and 22")
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.TTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least 1m, got %v", c.Session.TTL)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
