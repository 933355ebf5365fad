// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package routing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/caremap/internal/cache"
	"github.com/tomtom215/caremap/internal/config"
	"github.com/tomtom215/caremap/internal/logging"
)

// Cache backends accepted in configuration.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Service is the assembled routing chain: cache, then breaker, then client.
type Service struct {
	Router
	Breaker *BreakerRouter
	closers []func() error
}

// Close releases cache resources.
func (s *Service) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// New builds the routing chain from configuration. A nil hc uses a default
// client; per-request deadlines come from the caller's context.
func New(ctx context.Context, cfg config.RoutingConfig, hc *http.Client) (*Service, error) {
	client := NewClient(cfg.BaseURL, cfg.Profile,
		WithHTTPClient(hc),
		WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	)
	breaker := NewBreakerRouter(client)
	svc := &Service{Router: breaker, Breaker: breaker}

	log := logging.WithComponent("routing")

	switch cfg.CacheBackend {
	case CacheNone, "":
		log.Info().Str("base_url", cfg.BaseURL).Msg("Routing cache disabled")
	case CacheMemory:
		mem := cache.NewNamed("route", cfg.CacheTTL, cache.DefaultCleanupInterval)
		svc.closers = append(svc.closers, func() error { mem.Close(); return nil })
		svc.Router = NewCachedRouter(breaker, NewMemoryCache(mem), cfg.Profile)
		log.Info().Dur("ttl", cfg.CacheTTL).Msg("Routing cache in memory")
	case CacheRedis:
		rdb, err := OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("routing cache: %w", err)
		}
		svc.closers = append(svc.closers, rdb.Close)
		svc.Router = NewCachedRouter(breaker, NewRedisCache(rdb, cfg.CacheTTL, "caremap:"), cfg.Profile)
		log.Info().Dur("ttl", cfg.CacheTTL).Msg("Routing cache in redis")
	default:
		return nil, fmt.Errorf("unknown routing cache backend %q", cfg.CacheBackend)
	}
	return svc, nil
}
