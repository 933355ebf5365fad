// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

/*
Package api provides the HTTP API for caremap.

Key Components:

  - Router: chi route configuration and middleware stack
  - Handler: request handlers for map layers, facets, nearest search and sessions
  - ResponseWriter: the standard JSON envelope with request metadata

API Categories:

1. Health (/api/v1/health):
  - health, live and ready probes; ready answers 503 until datasets load

2. Map layers (/api/v1):
  - regions, regions/aggregates, regions/{code}, communes (GeoJSON with ETag)
  - professionals?profession=&commune= (filtered points and view hint)
  - facets, view

3. Nearest search:
  - POST /api/v1/nearest for a one-shot search
  - POST /api/v1/sessions/{id}/nearest for the gated session flow

4. Sessions (/api/v1/sessions):
  - placement toggle, origin, profession and filter state per map client

Layers are served from the pre-encoded catalog snapshot; every other
response uses the envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}

Usage Example:

	handler := api.NewHandler(holder, finder, sessions, cfg.Map,
	    api.WithBreaker(routingSvc.Breaker))
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFromSecurity(cfg.Security))
	srv := &http.Server{Addr: ":8080", Handler: router.SetupChi()}
*/
package api
