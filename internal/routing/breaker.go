// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package routing

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/caremap/internal/logging"
	"github.com/tomtom215/caremap/internal/metrics"
	"github.com/tomtom215/caremap/internal/models"
)

// BreakerName labels the routing breaker in metrics.
const BreakerName = "routing-api"

// BreakerRouter wraps a Router with a circuit breaker.
//
// Configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
//
// ErrNoRoute and caller cancellation are answers, not outages, and do not count
// as failures.
type BreakerRouter struct {
	next Router
	cb   *gobreaker.CircuitBreaker[*models.Route]
	name string
}

// NewBreakerRouter wraps next.
func NewBreakerRouter(next Router) *BreakerRouter {
	return newBreakerRouter(next, BreakerName, 10, 2*time.Minute)
}

func newBreakerRouter(next Router, name string, minRequests uint32, timeout time.Duration) *BreakerRouter {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*models.Route](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).Msg("Opening routing circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNoRoute) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &BreakerRouter{next: next, cb: cb, name: name}
}

// Route resolves a route through the breaker.
func (b *BreakerRouter) Route(ctx context.Context, from, to models.Coordinate) (*models.Route, error) {
	route, err := b.cb.Execute(func() (*models.Route, error) {
		return b.next.Route(ctx, from, to)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			metrics.RecordRoutingRequest("rejected", 0)
			logging.Ctx(ctx).Debug().Err(err).Msg("Routing request rejected by circuit breaker")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return route, nil
}

// State returns the breaker state as a string.
func (b *BreakerRouter) State() string {
	return stateToString(b.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
