// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/caremap/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config uses the defaults.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger())
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	// ========================
	// Map API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)

		r.Get("/view", h.View)
		r.Get("/facets", h.Facets)
		r.Get("/professionals", h.Professionals)
		r.Get("/communes", h.Communes)

		r.Route("/regions", func(r chi.Router) {
			r.Get("/", h.Regions)
			r.Get("/aggregates", h.RegionAggregates)
			r.Get("/{code}", h.Region)
		})

		r.With(router.chiMiddleware.RateLimitSearch()).Post("/nearest", h.Nearest)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.SessionCtx)
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)

				r.Get("/professionals", h.SessionProfessionals)
				r.Put("/filters", h.SetSessionFilters)
				r.Delete("/filters", h.ResetSessionFilters)

				r.Post("/arm", h.ToggleArm)
				r.Post("/origin", h.SetOrigin)
				r.Put("/profession", h.SetProfession)
				r.With(router.chiMiddleware.RateLimitSearch()).Post("/nearest", h.SessionNearest)
			})
		})
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
