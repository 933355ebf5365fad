// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/caremap/internal/cache"
	"github.com/tomtom215/caremap/internal/metrics"
)

// Store keeps sessions in a TTL cache. Each successful Get refreshes the TTL.
type Store struct {
	c *cache.Cache
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	return &Store{c: cache.NewNamed("session", ttl, cache.DefaultCleanupInterval)}
}

// Create starts a new idle session.
func (st *Store) Create() *Session {
	s := newSession(uuid.NewString())
	st.c.Set(s.id, s)
	metrics.SessionsCreated.Inc()
	return s
}

// Get returns the session for id.
func (st *Store) Get(id string) (*Session, error) {
	v, ok := st.c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, ErrNotFound
	}
	st.c.Set(id, s)
	return s, nil
}

// Delete ends a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	if _, ok := st.c.Get(id); !ok {
		return false
	}
	st.c.Delete(id)
	return true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return st.c.Len()
}

// Close stops the expiry loop.
func (st *Store) Close() {
	st.c.Close()
}
