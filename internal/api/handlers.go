// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package api

import (
	"context"
	"time"

	"github.com/tomtom215/caremap/internal/catalog"
	"github.com/tomtom215/caremap/internal/config"
	"github.com/tomtom215/caremap/internal/models"
	"github.com/tomtom215/caremap/internal/session"
)

// NearestFinder runs a nearest-professional search over a record set.
type NearestFinder interface {
	FindNearest(ctx context.Context, origin models.Coordinate, profession string, records []models.ProfessionalRecord) (*models.BestRoute, error)
}

// BreakerStatus exposes the routing circuit breaker state for health checks.
type BreakerStatus interface {
	State() string
}

// Handler serves the caremap API.
//
// Dataset-backed endpoints read the current catalog snapshot on every
// request and answer 503 until the first load has been published.
type Handler struct {
	catalog   *catalog.Holder
	finder    NearestFinder
	sessions  *session.Store
	breaker   BreakerStatus
	mapView   config.MapConfig
	version   string
	startTime time.Time
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithBreaker reports the routing breaker state in /health.
func WithBreaker(b BreakerStatus) HandlerOption {
	return func(h *Handler) { h.breaker = b }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) { h.version = v }
}

// NewHandler creates the API handler.
func NewHandler(holder *catalog.Holder, finder NearestFinder, sessions *session.Store, mapView config.MapConfig, opts ...HandlerOption) *Handler {
	h := &Handler{
		catalog:   holder,
		finder:    finder,
		sessions:  sessions,
		mapView:   mapView,
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
