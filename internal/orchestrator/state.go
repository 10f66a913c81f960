// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package orchestrator

import (
	"time"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/levels"
)

// State is the reload state of one (level, type) board.
type State int

const (
	StateFresh State = iota
	StateNeedsReload
	StateReloading
	StateFailed
)

// States lists every state, in display order.
var States = []State{StateFresh, StateNeedsReload, StateReloading, StateFailed}

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateNeedsReload:
		return "needs_reload"
	case StateReloading:
		return "reloading"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// boardState is guarded by Manager.mu.
type boardState struct {
	level       levels.Level
	typ         leaderboard.Type
	state       State
	lastReload  time.Time
	lastAttempt time.Time
	lastErr     error
}

// timeUntilDue is how long until the board should be reloaded. Failed
// boards are retried retryAfter after the failed attempt.
func (b *boardState) timeUntilDue(now time.Time, interval, retryAfter time.Duration) time.Duration {
	if b.state == StateFailed {
		return retryAfter - now.Sub(b.lastAttempt)
	}
	return interval - now.Sub(b.lastReload)
}
