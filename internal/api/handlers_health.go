// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/caremap/internal/catalog"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Uptime   float64        `json:"uptime_seconds"`
	Catalog  catalog.Status `json:"catalog"`
	Routing  string         `json:"routing_breaker,omitempty"`
	Sessions int            `json:"active_sessions"`
}

// Health reports overall status. It always answers 200; the status field
// is "degraded" while the datasets are not loaded or routing is tripped.
//
// @Summary Get service health
// @Description Returns overall status, catalog load state, routing breaker state and active sessions
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse{data=HealthStatus} "Health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := HealthStatus{
		Status:   "healthy",
		Version:  h.version,
		Uptime:   time.Since(h.startTime).Seconds(),
		Catalog:  h.catalog.Status(),
		Sessions: h.sessions.Len(),
	}
	if h.breaker != nil {
		st.Routing = h.breaker.State()
	}
	if !st.Catalog.Ready || st.Routing == "open" {
		st.Status = "degraded"
	}
	NewResponseWriter(w, r).Success(st)
}

// HealthLive handles liveness probes. It returns 200 while the process runs.
//
// @Summary Liveness probe
// @Description Returns 200 while the process runs
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse "Alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probes. It returns 503 with the last load
// error until the datasets have been published.
//
// @Summary Readiness probe
// @Description Returns 200 once the datasets are loaded, 503 with the last load error otherwise
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse{data=catalog.Status} "Ready"
// @Failure 503 {object} APIResponse "Datasets not loaded"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	st := h.catalog.Status()
	rw := NewResponseWriter(w, r)
	if !st.Ready {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "datasets not loaded", st)
		return
	}
	rw.Success(st)
}
