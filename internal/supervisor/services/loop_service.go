// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package services

import (
	"context"
	"time"

	"github.com/tomtom215/bridgeboard/internal/logging"
)

// Runner is a unit of background work that knows when it is next due.
//
// Satisfied by:
//   - *usernames.Resolver
//   - *global.History
type Runner interface {
	RunOnce(ctx context.Context) error
	TimeUntilNextReload() time.Duration
}

// Default bounds for the sleep between runs.
const (
	DefaultMinWait = time.Second
	DefaultMaxWait = 5 * time.Minute
)

// LoopService runs a Runner whenever it is due.
//
// A failed run is logged and retried after at least MinWait. Errors are
// never returned to the supervisor: every run is independent, and a
// restart would only lose the sleep schedule.
type LoopService struct {
	runner  Runner
	name    string
	minWait time.Duration
	maxWait time.Duration
}

// NewLoopService wraps runner. Non-positive waits use the defaults.
func NewLoopService(name string, runner Runner, minWait, maxWait time.Duration) *LoopService {
	if minWait <= 0 {
		minWait = DefaultMinWait
	}
	if maxWait < minWait {
		maxWait = max(DefaultMaxWait, minWait)
	}
	return &LoopService{
		runner:  runner,
		name:    name,
		minWait: minWait,
		maxWait: maxWait,
	}
}

// Serve implements suture.Service.
func (s *LoopService) Serve(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.runner.TimeUntilNextReload() <= 0 {
			runCtx := logging.ContextWithNewCorrelationID(ctx)
			if err := s.runner.RunOnce(runCtx); err != nil && ctx.Err() == nil {
				logging.Ctx(runCtx).Warn().Err(err).Str("service", s.name).Msg("Background run failed")
			}
		}

		wait := min(max(s.runner.TimeUntilNextReload(), s.minWait), s.maxWait)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// String implements fmt.Stringer for logging.
func (s *LoopService) String() string {
	return s.name
}
