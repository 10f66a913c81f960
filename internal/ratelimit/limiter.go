// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

// Package ratelimit enforces a minimum interval between calls to an external
// service. Every caller that talks to the same backend must share one Limiter,
// no matter which level or resource triggered the call.
package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/bridgeboard/internal/metrics"
)

// Limiter admits at most one call per interval. The first call is admitted
// immediately; each later call waits out whatever remains of the interval
// since the previous one began.
type Limiter struct {
	name     string
	interval time.Duration
	limiter  *rate.Limiter
	calls    atomic.Int64
}

// New creates a Limiter named name (used as a metric label) that admits one
// call per interval.
func New(name string, interval time.Duration) *Limiter {
	return &Limiter{
		name:     name,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next call may begin, or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter %s: %w", l.name, err)
	}
	metrics.RecordRateLimitWait(l.name, time.Since(start))
	l.calls.Add(1)
	return nil
}

// Do waits for a slot and then runs fn.
func (l *Limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.Wait(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

// Calls returns the number of calls admitted so far.
func (l *Limiter) Calls() int64 {
	return l.calls.Load()
}

// Interval returns the configured minimum spacing between calls.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Name returns the limiter name.
func (l *Limiter) Name() string {
	return l.name
}
