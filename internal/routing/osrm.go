// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package routing resolves driving routes through an OSRM-compatible service.
//
// The Client issues one HTTP request per origin/destination pair and returns
// the first route of the response with its full line geometry. Wrappers add a
// circuit breaker and a response cache; New assembles the configured chain.
package routing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/time/rate"

	"github.com/tomtom215/caremap/internal/metrics"
	"github.com/tomtom215/caremap/internal/models"
)

// ErrNoRoute is returned when the service answered but found no route.
var ErrNoRoute = errors.New("no route found")

// Router resolves one route between two points.
type Router interface {
	Route(ctx context.Context, from, to models.Coordinate) (*models.Route, error)
}

// Client talks to an OSRM HTTP endpoint.
type Client struct {
	baseURL string
	profile string
	client  *http.Client
	limiter *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithRateLimit paces outbound requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates an OSRM client for baseURL and profile (e.g. "driving").
func NewClient(baseURL, profile string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// osrmResponse is the subset of the OSRM route response we read.
type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64           `json:"distance"`
	Duration float64           `json:"duration"`
	Geometry *geojson.Geometry `json:"geometry"`
}

// URL returns the request URL for a route from one point to another.
func (c *Client) URL(from, to models.Coordinate) string {
	return fmt.Sprintf("%s/route/v1/%s/%s,%s;%s,%s?overview=full&geometries=geojson",
		c.baseURL, c.profile,
		formatCoord(from.Longitude), formatCoord(from.Latitude),
		formatCoord(to.Longitude), formatCoord(to.Latitude))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Route requests a driving route and returns the first route in the response.
func (c *Client) Route(ctx context.Context, from, to models.Coordinate) (*models.Route, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.RecordRoutingRequest("rate_limited", 0)
			return nil, fmt.Errorf("routing rate limit: %w", err)
		}
	}

	start := time.Now()
	route, err := c.do(ctx, from, to)
	switch {
	case err == nil:
		metrics.RecordRoutingRequest("success", time.Since(start))
	case errors.Is(err, ErrNoRoute):
		metrics.RecordRoutingRequest("no_route", time.Since(start))
	default:
		metrics.RecordRoutingRequest("error", time.Since(start))
	}
	return route, err
}

func (c *Client) do(ctx context.Context, from, to models.Coordinate) (*models.Route, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(from, to), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routing request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read routing response: %w", err)
	}

	var out osrmResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode != http.StatusOK {
		// OSRM reports NoRoute and friends with a 400 and a JSON code.
		if decodeErr == nil && isNoRouteCode(out.Code) {
			return nil, fmt.Errorf("%w: %s", ErrNoRoute, out.Message)
		}
		msg := strings.TrimSpace(string(body))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		return nil, fmt.Errorf("routing service returned status %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode routing response: %w", decodeErr)
	}
	if out.Code != "" && out.Code != "Ok" {
		if isNoRouteCode(out.Code) {
			return nil, fmt.Errorf("%w: %s", ErrNoRoute, out.Message)
		}
		return nil, fmt.Errorf("routing service error %s: %s", out.Code, out.Message)
	}
	if len(out.Routes) == 0 {
		return nil, ErrNoRoute
	}

	first := out.Routes[0]
	line, err := decodeLine(first.Geometry)
	if err != nil {
		return nil, err
	}
	return &models.Route{
		DistanceMeters:  first.Distance,
		DurationSeconds: first.Duration,
		Geometry:        line,
	}, nil
}

func isNoRouteCode(code string) bool {
	return code == "NoRoute" || code == "NoSegment"
}

func decodeLine(g *geojson.Geometry) (*geom.LineString, error) {
	if g == nil {
		return nil, fmt.Errorf("routing response has no geometry")
	}
	t, err := g.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode route geometry: %w", err)
	}
	line, ok := t.(*geom.LineString)
	if !ok {
		return nil, fmt.Errorf("route geometry is %T, want LineString", t)
	}
	return line, nil
}
