// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

// Package session holds per-client map state: the facet selection, the
// origin-placement mode, the chosen origin and profession, and the last
// nearest-search result.
//
// Placement is a two-state machine. While Armed, each SetOrigin overwrites the
// origin; while Idle, SetOrigin is ignored. Toggling is explicit and
// independent of the profession. A nearest search may run only when an origin
// is set, a profession is chosen and the session is not Armed. At most one
// search runs per session; the busy flag is released on every exit path.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/caremap/internal/facet"
	"github.com/tomtom215/caremap/internal/metrics"
	"github.com/tomtom215/caremap/internal/models"
)

var (
	// ErrNotFound is returned for unknown or expired session ids.
	ErrNotFound = errors.New("session not found")
	// ErrBusy is returned when a search is already running for the session.
	ErrBusy = errors.New("a search is already running for this session")
	// ErrExecuteBlocked is returned when the execute gate is closed.
	ErrExecuteBlocked = errors.New("search requires an origin, a profession and placement mode off")
)

// Mode is the origin-placement state.
type Mode int

const (
	Idle Mode = iota
	Armed
)

func (m Mode) String() string {
	if m == Armed {
		return "armed"
	}
	return "idle"
}

// MarshalText renders the mode as its name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses "idle" or "armed".
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*m = Idle
	case "armed":
		*m = Armed
	default:
		return fmt.Errorf("unknown mode %q", b)
	}
	return nil
}

// Session is one client's map state. All methods are safe for concurrent use.
type Session struct {
	id      string
	created time.Time

	mu         sync.Mutex
	mode       Mode
	origin     *models.Coordinate
	profession string
	filter     facet.Selection
	busy       bool
	last       *models.BestRoute
	lastErr    error
	updated    time.Time
}

func newSession(id string) *Session {
	now := time.Now()
	return &Session{id: id, created: now, updated: now}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// ToggleArm flips the placement mode and returns the new mode.
func (s *Session) ToggleArm() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == Armed {
		s.mode = Idle
	} else {
		s.mode = Armed
	}
	s.updated = time.Now()
	return s.mode
}

// SetOrigin records c as the origin if the session is Armed. It reports
// whether the origin was applied. The session stays Armed.
func (s *Session) SetOrigin(c models.Coordinate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != Armed {
		return false
	}
	s.origin = &c
	s.updated = time.Now()
	return true
}

// SetProfession selects the profession used by the nearest search. An empty
// string clears it.
func (s *Session) SetProfession(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profession = p
	s.updated = time.Now()
}

// SetFilter replaces the facet selection.
func (s *Session) SetFilter(sel facet.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = sel
	s.updated = time.Now()
}

// ResetFilter clears both facets.
func (s *Session) ResetFilter() {
	s.SetFilter(facet.Selection{})
}

// Filter returns the current facet selection.
func (s *Session) Filter() facet.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// CanExecute reports whether the execute gate is open.
func (s *Session) CanExecute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canExecuteLocked()
}

func (s *Session) canExecuteLocked() bool {
	return s.origin != nil && s.profession != "" && s.mode != Armed
}

// begin checks the gate and marks the session busy. The returned release
// function clears the flag.
func (s *Session) begin() (models.Coordinate, string, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canExecuteLocked() {
		return models.Coordinate{}, "", nil, ErrExecuteBlocked
	}
	if s.busy {
		return models.Coordinate{}, "", nil, ErrBusy
	}
	s.busy = true
	release := func() {
		s.mu.Lock()
		s.busy = false
		s.updated = time.Now()
		s.mu.Unlock()
	}
	return *s.origin, s.profession, release, nil
}

// SearchFunc performs a nearest search for origin and profession.
type SearchFunc func(ctx context.Context, origin models.Coordinate, profession string) (*models.BestRoute, error)

// Execute runs search under the execute gate and busy flag, and records the
// outcome. It returns ErrExecuteBlocked or ErrBusy without calling search.
func (s *Session) Execute(ctx context.Context, search SearchFunc) (*models.BestRoute, error) {
	origin, profession, release, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer release()
	defer metrics.TrackOperation("session_search")()

	best, err := search(ctx, origin, profession)

	s.mu.Lock()
	s.last, s.lastErr = best, err
	s.mu.Unlock()
	return best, err
}

// View is a point-in-time copy of the session state.
type View struct {
	ID         string             `json:"id"`
	Mode       Mode               `json:"mode"`
	Origin     *models.Coordinate `json:"origin,omitempty"`
	Profession string             `json:"profession"`
	Filter     facet.Selection    `json:"filter"`
	CanExecute bool               `json:"can_execute"`
	Busy       bool               `json:"busy"`
	Created    time.Time          `json:"created_at"`
	Updated    time.Time          `json:"updated_at"`

	LastResult *models.BestRoute `json:"-"`
	LastError  error             `json:"-"`
}

// View returns a copy of the session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:         s.id,
		Mode:       s.mode,
		Profession: s.profession,
		Filter:     s.filter,
		CanExecute: s.canExecuteLocked(),
		Busy:       s.busy,
		Created:    s.created,
		Updated:    s.updated,
		LastResult: s.last,
		LastError:  s.lastErr,
	}
	if s.origin != nil {
		o := *s.origin
		v.Origin = &o
	}
	return v
}
