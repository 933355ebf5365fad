// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package catalog

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/caremap/internal/metrics"
)

// ErrNotReady is returned before the first successful load.
var ErrNotReady = errors.New("catalog not ready")

// Holder publishes the current snapshot to concurrent readers.
type Holder struct {
	snap atomic.Pointer[Snapshot]

	mu       sync.RWMutex
	lastErr  error
	attempts int
	failedAt time.Time
}

// Status describes the load state for health reporting.
type Status struct {
	Ready     bool      `json:"ready"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`
	FailedAt  time.Time `json:"failed_at,omitempty"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
}

// NewHolder returns an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Publish makes s the current snapshot and clears any recorded failure.
func (h *Holder) Publish(s *Snapshot) {
	h.mu.Lock()
	h.attempts++
	h.lastErr = nil
	h.failedAt = time.Time{}
	h.mu.Unlock()

	h.snap.Store(s)
	metrics.DatasetLastLoad.Set(float64(s.LoadedAt.Unix()))
}

// SetFailed records a failed load attempt. A previously published snapshot
// stays in place.
func (h *Holder) SetFailed(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempts++
	h.lastErr = err
	h.failedAt = time.Now()
}

// Get returns the current snapshot. Before the first publish it returns
// ErrNotReady, wrapping the last load error when there is one.
func (h *Holder) Get() (*Snapshot, error) {
	if s := h.snap.Load(); s != nil {
		return s, nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReady, h.lastErr)
	}
	return nil, ErrNotReady
}

// Ready reports whether a snapshot has been published.
func (h *Holder) Ready() bool {
	return h.snap.Load() != nil
}

// Status returns the load state.
func (h *Holder) Status() Status {
	h.mu.RLock()
	st := Status{Attempts: h.attempts, FailedAt: h.failedAt}
	if h.lastErr != nil {
		st.LastError = h.lastErr.Error()
	}
	h.mu.RUnlock()

	if s := h.snap.Load(); s != nil {
		st.Ready = true
		st.LoadedAt = s.LoadedAt
	}
	return st
}
