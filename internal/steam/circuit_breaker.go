// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package steam

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/logging"
	"github.com/tomtom215/bridgeboard/internal/metrics"
)

// API is the set of Steam calls the breaker protects.
type API interface {
	ResolveLeaderboard(ctx context.Context, name string) (int64, error)
	FetchEntries(ctx context.Context, id int64, limit int) ([]leaderboard.RawEntry, error)
	LookupUsers(ctx context.Context, ids []string) (map[string]string, error)
	Download(ctx context.Context, path string) ([]byte, error)
}

// BreakerClient wraps an API with a circuit breaker so a Steam outage fails
// fast instead of stalling every reload on timeouts.
//
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
//
// Answers that describe the leaderboard rather than Steam's health, such as
// access denied or not found, count as successes.
type BreakerClient struct {
	api  API
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

// NewBreakerClient wraps api.
func NewBreakerClient(api API) *BreakerClient {
	cbName := "steam"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, leaderboard.ErrAccessDenied) ||
				errors.Is(err, ErrLeaderboardNotFound) ||
				errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{api: api, cb: cb, name: cbName}
}

// execute runs fn through the breaker and records the outcome under op.
func (b *BreakerClient) execute(op string, fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)

	metrics.RecordBackendCall(op, err)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Str("op", op).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// castResult type-asserts a breaker result. A nil result yields T's zero value.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil || result == nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, errors.New("circuit breaker: unexpected result type")
	}
	return typed, nil
}

// State returns the breaker's current state name.
func (b *BreakerClient) State() string {
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

// ResolveLeaderboard resolves a leaderboard name with circuit breaker protection.
func (b *BreakerClient) ResolveLeaderboard(ctx context.Context, name string) (int64, error) {
	return castResult[int64](b.execute("resolve", func() (any, error) {
		return b.api.ResolveLeaderboard(ctx, name)
	}))
}

// FetchEntries fetches leaderboard entries with circuit breaker protection.
// Access-denied errors pass through unchanged.
func (b *BreakerClient) FetchEntries(ctx context.Context, id int64, limit int) ([]leaderboard.RawEntry, error) {
	return castResult[[]leaderboard.RawEntry](b.execute("entries", func() (any, error) {
		return b.api.FetchEntries(ctx, id, limit)
	}))
}

// LookupUsers resolves persona names with circuit breaker protection.
func (b *BreakerClient) LookupUsers(ctx context.Context, ids []string) (map[string]string, error) {
	return castResult[map[string]string](b.execute("users", func() (any, error) {
		return b.api.LookupUsers(ctx, ids)
	}))
}

// Download fetches a CDN file with circuit breaker protection.
func (b *BreakerClient) Download(ctx context.Context, path string) ([]byte, error) {
	return castResult[[]byte](b.execute("download", func() (any, error) {
		return b.api.Download(ctx, path)
	}))
}
