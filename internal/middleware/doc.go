// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

/*
Package middleware provides chi-compatible HTTP middleware for the caremap API.

Key Components:

  - Compression: pooled gzip writers for clients that accept gzip
  - PrometheusMetrics: request count, latency and in-flight instrumentation

Both have the standard func(http.Handler) http.Handler shape and are mounted
with r.Use inside a chi route group:

	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Use(middleware.Compression)
	    r.Get("/regions", h.Regions)
	})

PrometheusMetrics labels requests with the matched chi route pattern
(for example /api/v1/sessions/{id}) rather than the raw path, so session
identifiers never become label values.
*/
package middleware
