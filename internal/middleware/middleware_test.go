// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/caremap/internal/metrics"
)

func TestPrometheusMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues("GET", "/sessions/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("counter delta = %v, want 3", got)
	}
	if v := testutil.ToFloat64(metrics.APIActiveRequests); v != 0 {
		t.Errorf("active requests = %v after completion", v)
	}
}

func TestPrometheusMetricsDefaultStatus(t *testing.T) {
	h := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
		w.WriteHeader(http.StatusInternalServerError) // superfluous, ignored
	}))

	counter := metrics.APIRequestsTotal.WithLabelValues("POST", unmatchedRoute, "200")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("counter delta = %v, want 1", got)
	}
}

func TestCompression(t *testing.T) {
	t.Parallel()

	body := strings.Repeat(`{"type":"Feature"}`, 200)
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = io.WriteString(w, body)
	}))

	tests := []struct {
		name     string
		encoding string
		wantGzip bool
	}{
		{"no header", "", false},
		{"gzip", "gzip", true},
		{"gzip among others", "br, gzip;q=0.8", true},
		{"gzip refused", "gzip;q=0", false},
		{"identity only", "identity", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/regions", nil)
			if tt.encoding != "" {
				req.Header.Set("Accept-Encoding", tt.encoding)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Header().Get("Vary") != "Accept-Encoding" {
				t.Errorf("Vary = %q", rec.Header().Get("Vary"))
			}
			gotGzip := rec.Header().Get("Content-Encoding") == "gzip"
			if gotGzip != tt.wantGzip {
				t.Fatalf("Content-Encoding gzip = %v, want %v", gotGzip, tt.wantGzip)
			}

			var got []byte
			if gotGzip {
				zr, err := gzip.NewReader(rec.Body)
				if err != nil {
					t.Fatalf("gzip.NewReader: %v", err)
				}
				got, err = io.ReadAll(zr)
				if err != nil {
					t.Fatalf("read gzip body: %v", err)
				}
			} else {
				got = rec.Body.Bytes()
			}
			if string(got) != body {
				t.Errorf("body mismatch: %d bytes", len(got))
			}
		})
	}
}
