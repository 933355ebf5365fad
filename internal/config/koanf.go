// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/caremap/config.yaml",
	"/etc/caremap/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file location.
const DotEnvPathEnvVar = "DOTENV_PATH"

// Public GeoJSON datasets for the Hérault territory.
const (
	DefaultRegionsSource       = "https://gist.githubusercontent.com/LamineDame/e4169b84e8077be6ff8a5553abce2437/raw/f295aeba88206ac9bf9c5d5256b2a7a7a7934b77/epci.geojson"
	DefaultProfessionalsSource = "https://gist.githubusercontent.com/LamineDame/c98a034170194601eee37bc7f56d52e0/raw/dfea4c426de848ba60725877ce98740099b52c10/medecins.geojson"
	DefaultCommunesSource      = "https://gist.githubusercontent.com/LamineDame/42649f567585145707430d230e9354db/raw/62e26791ae036462b57ee826b40f774e20941be4/communes.geojson"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3857,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Datasets: DatasetsConfig{
			Regions:         DefaultRegionsSource,
			Professionals:   DefaultProfessionalsSource,
			Communes:        DefaultCommunesSource,
			RegionCodeField: "code_epci",
			RegionNameField: "nom_epci",
			FetchTimeout:    30 * time.Second,
			MaxBytes:        64 << 20,
		},
		Routing: RoutingConfig{
			BaseURL:       "https://router.project-osrm.org",
			Profile:       "driving",
			Timeout:       10 * time.Second,
			MaxCandidates: 10,
			Concurrency:   10,
			RateLimit:     5,
			RateBurst:     10,
			CacheTTL:      time.Hour,
			CacheBackend:  "memory",
			RedisURL:      "",
		},
		Map: MapConfig{
			CenterLongitude: 3.5,
			CenterLatitude:  43.68,
			Zoom:            9,
		},
		Session: SessionConfig{
			TTL: 30 * time.Minute,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf builds the configuration from all layers and validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	// HTTP_PORT -> server.port, ROUTING_URL -> routing.base_url
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadDotEnv copies variables from a .env file into the process environment.
// Variables already set are left untouched. A missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"regions_url":           "datasets.regions",
	"professionals_url":     "datasets.professionals",
	"communes_url":          "datasets.communes",
	"region_code_field":     "datasets.region_code_field",
	"region_name_field":     "datasets.region_name_field",
	"dataset_fetch_timeout": "datasets.fetch_timeout",
	"dataset_max_bytes":     "datasets.max_bytes",

	"routing_url":            "routing.base_url",
	"routing_profile":        "routing.profile",
	"routing_timeout":        "routing.timeout",
	"routing_max_candidates": "routing.max_candidates",
	"routing_concurrency":    "routing.concurrency",
	"routing_rate_limit":     "routing.rate_limit",
	"routing_rate_burst":     "routing.rate_burst",
	"routing_cache_ttl":      "routing.cache_ttl",
	"routing_cache_backend":  "routing.cache_backend",
	"redis_url":              "routing.redis_url",

	"map_center_lon": "map.center_longitude",
	"map_center_lat": "map.center_latitude",
	"map_zoom":       "map.zoom",

	"session_ttl": "session.ttl",

	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped names return "" so unrelated variables never reach the config.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
