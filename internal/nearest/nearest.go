// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package nearest finds the professional with the shortest driving time from
// an origin.
//
// Candidates are the records whose profession matches exactly. They are ranked
// by straight-line distance in degree space and only the closest few are sent
// to the routing service, concurrently and each under its own timeout. The
// winner is the candidate with the smallest route duration; ties keep the
// candidate that was nearer in straight-line order. Individual routing
// failures are tolerated; the search fails only when no candidate resolves.
package nearest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/golang/geo/s2"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/caremap/internal/fields"
	"github.com/tomtom215/caremap/internal/logging"
	"github.com/tomtom215/caremap/internal/metrics"
	"github.com/tomtom215/caremap/internal/models"
)

var (
	// ErrNoCandidate means no record matches the profession. It is a result
	// state, not a failure.
	ErrNoCandidate = errors.New("no professional matches the requested profession")

	// ErrNoRoute means every candidate failed to route.
	ErrNoRoute = errors.New("no candidate could be routed")
)

// Defaults applied when Options leaves a field at zero.
const (
	DefaultMaxCandidates  = 10
	DefaultConcurrency    = 10
	DefaultRequestTimeout = 10 * time.Second
)

// earthRadiusKm is the mean Earth radius used for straight-line distances.
const earthRadiusKm = 6371.0088

// Router resolves one route.
type Router interface {
	Route(ctx context.Context, from, to models.Coordinate) (*models.Route, error)
}

// Options tunes a Finder.
type Options struct {
	MaxCandidates  int
	Concurrency    int
	RequestTimeout time.Duration
}

// Finder runs nearest searches against a Router.
type Finder struct {
	router  Router
	limit   int
	workers int
	timeout time.Duration
}

// NewFinder creates a finder.
func NewFinder(router Router, opts Options) *Finder {
	f := &Finder{
		router:  router,
		limit:   opts.MaxCandidates,
		workers: opts.Concurrency,
		timeout: opts.RequestTimeout,
	}
	if f.limit <= 0 {
		f.limit = DefaultMaxCandidates
	}
	if f.workers <= 0 {
		f.workers = DefaultConcurrency
	}
	if f.timeout <= 0 {
		f.timeout = DefaultRequestTimeout
	}
	return f
}

// Candidates returns the records matching profession, sorted by straight-line
// distance from origin and truncated to limit. Equal distances keep input order.
func Candidates(origin models.Coordinate, profession string, records []models.ProfessionalRecord, limit int) []models.RouteCandidate {
	var out []models.RouteCandidate
	for i := range records {
		if records[i].Field(fields.Profession) != profession {
			continue
		}
		out = append(out, models.RouteCandidate{
			Record:         records[i],
			PlanarDistance: origin.PlanarDistance(records[i].Location),
			GreatCircleKm:  GreatCircleKm(origin, records[i].Location),
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].PlanarDistance < out[b].PlanarDistance
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GreatCircleKm is the ground distance between two WGS84 points.
func GreatCircleKm(a, b models.Coordinate) float64 {
	pa := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	pb := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return pa.Distance(pb).Radians() * earthRadiusKm
}

// RoundKm converts meters to kilometres rounded to two decimals.
func RoundKm(meters float64) float64 {
	return math.Round(meters/1000*100) / 100
}

// FindNearest returns the fastest-to-reach professional of the given profession.
// It returns ErrNoCandidate when nothing matches and an error wrapping
// ErrNoRoute when every routing request failed.
func (f *Finder) FindNearest(ctx context.Context, origin models.Coordinate, profession string, records []models.ProfessionalRecord) (*models.BestRoute, error) {
	defer metrics.TrackOperation("nearest_search")()
	log := logging.Ctx(ctx).With().
		Str("profession", profession).
		Float64("origin_lon", origin.Longitude).
		Float64("origin_lat", origin.Latitude).
		Logger()

	candidates := Candidates(origin, profession, records, f.limit)
	if len(candidates) == 0 {
		metrics.RecordNearestSearch("no_candidate", 0, 0)
		log.Debug().Msg("No candidate for nearest search")
		return nil, ErrNoCandidate
	}

	f.resolve(ctx, origin, candidates)

	best := -1
	var failures []error
	for i := range candidates {
		c := &candidates[i]
		if c.Err != nil {
			failures = append(failures, fmt.Errorf("candidate %s: %w", c.Record.ID, c.Err))
			continue
		}
		// strict less-than keeps the straight-line nearer candidate on ties
		if best < 0 || c.Route.DurationSeconds < candidates[best].Route.DurationSeconds {
			best = i
		}
	}

	routed := len(candidates) - len(failures)
	if best < 0 {
		metrics.RecordNearestSearch("no_route", routed, len(failures))
		log.Warn().Int("candidates", len(candidates)).Msg("Every routing request failed")
		return nil, fmt.Errorf("%w: %w", ErrNoRoute, errors.Join(failures...))
	}
	if len(failures) > 0 {
		log.Warn().Int("failed", len(failures)).Int("routed", routed).
			Err(errors.Join(failures...)).Msg("Some candidates could not be routed")
	}

	winner := candidates[best]
	metrics.RecordNearestSearch("found", routed, len(failures))
	log.Info().
		Str("professional_id", winner.Record.ID).
		Float64("duration_s", winner.Route.DurationSeconds).
		Float64("distance_m", winner.Route.DistanceMeters).
		Int("routed", routed).
		Msg("Nearest professional found")

	return &models.BestRoute{
		Professional:    winner.Record,
		Card:            winner.Record.Card(),
		Origin:          origin,
		Profession:      profession,
		DistanceMeters:  winner.Route.DistanceMeters,
		DistanceKm:      RoundKm(winner.Route.DistanceMeters),
		DurationSeconds: winner.Route.DurationSeconds,
		Geometry:        winner.Route.Geometry,
		Bounds:          winner.Route.Bounds(),
		Candidates:      candidates,
		Routed:          routed,
		Failed:          len(failures),
	}, nil
}

// resolve routes every candidate concurrently and records each outcome in
// place. It returns once all requests have finished or timed out.
func (f *Finder) resolve(ctx context.Context, origin models.Coordinate, candidates []models.RouteCandidate) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i := range candidates {
		c := &candidates[i]
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(gctx, f.timeout)
			defer cancel()

			route, err := f.router.Route(rctx, origin, c.Record.Location)
			switch {
			case err != nil:
				c.Err = err
			case route == nil:
				c.Err = errors.New("routing returned no route")
			default:
				c.Route = route
			}
			// per-candidate failures never cancel siblings
			return nil
		})
	}
	_ = g.Wait()
}
