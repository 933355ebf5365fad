// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/caremap/internal/facet"
	"github.com/tomtom215/caremap/internal/logging"
	"github.com/tomtom215/caremap/internal/models"
	"github.com/tomtom215/caremap/internal/session"
	"github.com/tomtom215/caremap/internal/validation"
)

type sessionCtxKey struct{}

// SessionCtx loads the {id} session into the request context, answering 404
// for unknown or expired sessions.
func (h *Handler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s, err := h.sessions.Get(id)
		if err != nil {
			NewResponseWriter(w, r).NotFound("session not found")
			return
		}
		ctx := context.WithValue(r.Context(), sessionCtxKey{}, s)
		ctx = logging.ContextWithSessionID(ctx, s.ID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	s, _ := r.Context().Value(sessionCtxKey{}).(*session.Session)
	return s
}

// SessionState is a session view plus the outcome of its last search.
type SessionState struct {
	session.View
	LastResult *NearestResult `json:"last_result,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
}

func sessionState(s *session.Session) SessionState {
	v := s.View()
	st := SessionState{View: v}
	if v.LastResult != nil {
		if res, err := newNearestResult(v.LastResult); err == nil {
			st.LastResult = res
		}
	}
	if v.LastError != nil {
		st.LastError = v.LastError.Error()
	}
	return st
}

// CreateSession starts an idle session with no filter.
//
// @Summary Create session
// @Description Starts an idle map session with no filter
// @Tags Sessions
// @Produce json
// @Success 201 {object} APIResponse{data=SessionState}
// @Router /sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	logging.Ctx(r.Context()).Debug().Str("session_id", s.ID()).Msg("Session created")
	NewResponseWriter(w, r).Created(sessionState(s))
}

// GetSession returns the session state.
//
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse{data=SessionState}
// @Failure 404 {object} APIResponse "Unknown session"
// @Router /sessions/{id} [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(sessionState(sessionFrom(r)))
}

// DeleteSession ends the session.
//
// @Summary Delete session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 204 "Deleted"
// @Failure 404 {object} APIResponse "Unknown session"
// @Router /sessions/{id} [delete]
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(sessionFrom(r).ID())
	NewResponseWriter(w, r).NoContent()
}

// SetSessionFilters replaces both facets and returns the filtered points.
//
// @Summary Set session filters
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body validation.FilterRequest true "Facets"
// @Success 200 {object} APIResponse{data=FilteredProfessionals}
// @Failure 400 {object} APIResponse "Invalid request"
// @Router /sessions/{id}/filters [put]
func (h *Handler) SetSessionFilters(w http.ResponseWriter, r *http.Request) {
	var req validation.FilterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	sel := facet.Selection{Profession: req.Profession, Commune: req.Commune}
	sessionFrom(r).SetFilter(sel)
	h.writeFiltered(NewResponseWriter(w, r), snap, sel)
}

// SessionProfessionals returns the points matching the session's filter.
//
// @Summary Session professionals
// @Description Professionals matching the session filter
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse{data=FilteredProfessionals}
// @Router /sessions/{id}/professionals [get]
func (h *Handler) SessionProfessionals(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.writeFiltered(NewResponseWriter(w, r), snap, sessionFrom(r).Filter())
}

// ResetSessionFilters clears both facets. The response carries the region
// extent so the client returns to the full view.
//
// @Summary Reset session filters
// @Description Clears both facets and returns the region extent
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse{data=FilteredProfessionals}
// @Router /sessions/{id}/filters [delete]
func (h *Handler) ResetSessionFilters(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).ResetFilter()
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	out, err := filterProfessionals(snap, facet.Selection{}, false)
	if err != nil {
		NewResponseWriter(w, r).InternalError("failed to reset filter")
		return
	}
	if !snap.RegionBounds.IsEmpty() {
		b := snap.RegionBounds
		out.Recenter, out.Bounds = true, &b
	}
	NewResponseWriter(w, r).Success(out)
}

// ToggleArm flips the origin placement mode.
//
// @Summary Toggle origin placement
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse{data=SessionState}
// @Router /sessions/{id}/arm [post]
func (h *Handler) ToggleArm(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	mode := s.ToggleArm()
	logging.Ctx(r.Context()).Debug().Stringer("mode", mode).Msg("Origin placement toggled")
	NewResponseWriter(w, r).Success(sessionState(s))
}

// OriginResult reports whether a map click set the origin.
type OriginResult struct {
	Applied bool         `json:"applied"`
	Session SessionState `json:"session"`
}

// SetOrigin records a map click. The click only sets the origin while the
// session is armed; otherwise it is ignored and applied is false.
//
// @Summary Place origin
// @Description Applied only while placement is armed
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body validation.CoordinateRequest true "Origin"
// @Success 200 {object} APIResponse{data=OriginResult}
// @Failure 400 {object} APIResponse "Invalid request"
// @Router /sessions/{id}/origin [post]
func (h *Handler) SetOrigin(w http.ResponseWriter, r *http.Request) {
	var req validation.CoordinateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s := sessionFrom(r)
	applied := s.SetOrigin(models.Coordinate{Longitude: *req.Longitude, Latitude: *req.Latitude})
	NewResponseWriter(w, r).Success(OriginResult{Applied: applied, Session: sessionState(s)})
}

// SetProfession selects the profession used by the session's nearest search.
//
// @Summary Select profession
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body validation.ProfessionRequest true "Profession"
// @Success 200 {object} APIResponse{data=SessionState}
// @Failure 400 {object} APIResponse "Invalid request"
// @Router /sessions/{id}/profession [put]
func (h *Handler) SetProfession(w http.ResponseWriter, r *http.Request) {
	var req validation.ProfessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s := sessionFrom(r)
	s.SetProfession(req.Profession)
	NewResponseWriter(w, r).Success(sessionState(s))
}

// SessionNearest runs the gated nearest search for the session. It answers
// 409 while the gate is closed or another search is running.
//
// @Summary Session nearest search
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse{data=NearestResult}
// @Failure 409 {object} APIResponse "Search not ready or already running"
// @Failure 502 {object} APIResponse "Routing service failed"
// @Router /sessions/{id}/nearest [post]
func (h *Handler) SessionNearest(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	s := sessionFrom(r)
	v := s.View()

	rw := NewResponseWriter(w, r)
	best, err := s.Execute(r.Context(), func(ctx context.Context, origin models.Coordinate, profession string) (*models.BestRoute, error) {
		return h.finder.FindNearest(ctx, origin, profession, snap.Professionals)
	})
	switch {
	case errors.Is(err, session.ErrBusy):
		rw.Conflict(ErrCodeSearchBusy, "a nearest search is already running for this session")
		return
	case errors.Is(err, session.ErrExecuteBlocked):
		rw.ErrorWithDetails(http.StatusConflict, ErrCodeSearchBlocked,
			"set an origin and a profession, then disarm placement before searching", v)
		return
	}

	var origin models.Coordinate
	if v.Origin != nil {
		origin = *v.Origin
	}
	writeNearest(rw, origin, v.Profession, best, err)
}
