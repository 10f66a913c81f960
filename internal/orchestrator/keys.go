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

// IDKeyPrefix prefixes cached leaderboard IDs.
const IDKeyPrefix = "lbid:"

func boardKey(level levels.Level, t leaderboard.Type) string {
	return level.Key() + ":" + string(t)
}

func historyKey(level levels.Level, t leaderboard.Type) string {
	return boardKey(level, t) + ":history"
}

func lastReloadKey(level levels.Level, t leaderboard.Type) string {
	return boardKey(level, t) + ":last_reload"
}

func idKey(name string) string {
	return IDKeyPrefix + name
}

// idRecord is a cached backend leaderboard ID.
type idRecord struct {
	ID         int64     `json:"id"`
	ResolvedAt time.Time `json:"resolved_at"`
}
