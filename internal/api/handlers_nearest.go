// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/tomtom215/caremap/internal/fields"
	"github.com/tomtom215/caremap/internal/logging"
	"github.com/tomtom215/caremap/internal/models"
	"github.com/tomtom215/caremap/internal/nearest"
	"github.com/tomtom215/caremap/internal/validation"
)

// NearestResult is the body of a nearest search. Found is false when no
// professional has the requested profession.
type NearestResult struct {
	Found      bool              `json:"found"`
	Profession string            `json:"profession"`
	Origin     models.Coordinate `json:"origin"`

	Professional    *ProfessionalView `json:"professional,omitempty"`
	DistanceMeters  float64           `json:"distance_meters"`
	DistanceKm      float64           `json:"distance_km"`
	DurationSeconds float64           `json:"duration_seconds"`
	DurationMinutes float64           `json:"duration_minutes"`
	Geometry        *geojson.Geometry `json:"geometry,omitempty"`
	Bounds          *models.BBox      `json:"bounds,omitempty"`

	Routed     int             `json:"routed"`
	Failed     int             `json:"failed"`
	Candidates []CandidateView `json:"candidates,omitempty"`
}

// ProfessionalView is a professional with its resolved display card.
type ProfessionalView struct {
	ID       string            `json:"id"`
	Location models.Coordinate `json:"location"`
	Card     fields.Card       `json:"card"`
}

// CandidateView reports the routing outcome for one candidate.
type CandidateView struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	GreatCircleKm   float64 `json:"great_circle_km"`
	DistanceKm      float64 `json:"distance_km,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Error           string  `json:"error,omitempty"`
}

func newNearestResult(best *models.BestRoute) (*NearestResult, error) {
	res := &NearestResult{
		Found:      true,
		Profession: best.Profession,
		Origin:     best.Origin,
		Professional: &ProfessionalView{
			ID:       best.Professional.ID,
			Location: best.Professional.Location,
			Card:     best.Card,
		},
		DistanceMeters:  best.DistanceMeters,
		DistanceKm:      best.DistanceKm,
		DurationSeconds: best.DurationSeconds,
		DurationMinutes: best.DurationMinutes(),
		Routed:          best.Routed,
		Failed:          best.Failed,
		Candidates:      make([]CandidateView, 0, len(best.Candidates)),
	}
	if best.Geometry != nil {
		g, err := geojson.Encode(best.Geometry)
		if err != nil {
			return nil, err
		}
		res.Geometry = g
	}
	if !best.Bounds.IsEmpty() {
		b := best.Bounds
		res.Bounds = &b
	}
	for _, c := range best.Candidates {
		cv := CandidateView{
			ID:            c.Record.ID,
			Name:          c.Record.Card().Name,
			GreatCircleKm: c.GreatCircleKm,
		}
		if c.Route != nil {
			cv.DistanceKm = nearest.RoundKm(c.Route.DistanceMeters)
			cv.DurationSeconds = c.Route.DurationSeconds
		}
		if c.Err != nil {
			cv.Error = c.Err.Error()
		}
		res.Candidates = append(res.Candidates, cv)
	}
	return res, nil
}

// writeNearest maps a search outcome to a response.
func writeNearest(rw *ResponseWriter, origin models.Coordinate, profession string, best *models.BestRoute, err error) {
	switch {
	case err == nil:
		res, encErr := newNearestResult(best)
		if encErr != nil {
			logging.Ctx(rw.r.Context()).Error().Err(encErr).Msg("Failed to encode route geometry")
			rw.InternalError("failed to encode route")
			return
		}
		rw.Success(res)
	case errors.Is(err, nearest.ErrNoCandidate):
		rw.Success(&NearestResult{Found: false, Profession: profession, Origin: origin})
	case errors.Is(err, nearest.ErrNoRoute):
		rw.ExternalServiceError("routing", err)
	case errors.Is(err, context.Canceled):
		logging.Ctx(rw.r.Context()).Debug().Msg("Nearest search canceled by client")
	default:
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Nearest search failed")
		rw.InternalError("nearest search failed")
	}
}

// Nearest runs a stateless nearest search from the posted origin. The
// display filter does not apply: every professional with the requested
// profession is a candidate.
//
// @Summary Nearest professional
// @Description Fastest-by-route professional of a profession from an origin
// @Tags Search
// @Accept json
// @Produce json
// @Param request body validation.NearestRequest true "Origin and profession"
// @Success 200 {object} APIResponse{data=NearestResult}
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 502 {object} APIResponse "Routing service failed"
// @Router /nearest [post]
func (h *Handler) Nearest(w http.ResponseWriter, r *http.Request) {
	var req validation.NearestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	origin := models.Coordinate{Longitude: *req.Longitude, Latitude: *req.Latitude}
	best, err := h.finder.FindNearest(r.Context(), origin, req.Profession, snap.Professionals)
	writeNearest(NewResponseWriter(w, r), origin, req.Profession, best, err)
}
