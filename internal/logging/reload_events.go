// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ReloadLogger provides domain-specific logging for leaderboard reload cycles.
type ReloadLogger struct {
	logger zerolog.Logger
}

// NewReloadLogger tags the current global logger with component=orchestrator.
func NewReloadLogger() *ReloadLogger {
	return &ReloadLogger{logger: Logger().With().Str("component", "orchestrator").Logger()}
}

func (r *ReloadLogger) withContext(ctx context.Context) zerolog.Logger {
	if id := CorrelationIDFromContext(ctx); id != "" {
		return r.logger.With().Str("correlation_id", id).Logger()
	}
	return r.logger
}

// LogCycleStarted logs the start of a scheduling pass.
func (r *ReloadLogger) LogCycleStarted(ctx context.Context, due int) {
	l := r.withContext(ctx)
	l.Debug().Int("due", due).Msg("reload cycle started")
}

// LogCycleFinished logs the end of a scheduling pass.
func (r *ReloadLogger) LogCycleFinished(ctx context.Context, reloaded, failed int, took time.Duration) {
	l := r.withContext(ctx)
	l.Info().
		Int("reloaded", reloaded).
		Int("failed", failed).
		Dur("took", took).
		Msg("reload cycle finished")
}

// LogBoardReloaded logs a committed leaderboard.
func (r *ReloadLogger) LogBoardReloaded(ctx context.Context, level, boardType string, entries, newHistory int) {
	l := r.withContext(ctx)
	l.Debug().
		Str("level", level).
		Str("type", boardType).
		Int("entries", entries).
		Int("new_history", newHistory).
		Msg("leaderboard reloaded")
}

// LogBoardFailed logs a reload that left the previous board in place.
func (r *ReloadLogger) LogBoardFailed(ctx context.Context, level, boardType string, err error) {
	l := r.withContext(ctx)
	l.Warn().
		Str("level", level).
		Str("type", boardType).
		Err(err).
		Msg("leaderboard reload failed, keeping previous data")
}

// LogIDInvalidated logs a leaderboard ID dropped after an access-denied response.
func (r *ReloadLogger) LogIDInvalidated(ctx context.Context, name string, id int64) {
	l := r.withContext(ctx)
	l.Warn().
		Str("leaderboard", name).
		Int64("leaderboard_id", id).
		Msg("leaderboard id rejected by backend, will re-resolve")
}

// LogCheatFlagged logs owners whose previous scores disappeared.
func (r *ReloadLogger) LogCheatFlagged(ctx context.Context, level, boardType string, owners []string) {
	if len(owners) == 0 {
		return
	}
	l := r.withContext(ctx)
	l.Info().
		Str("level", level).
		Str("type", boardType).
		Strs("owners", owners).
		Msg("removed scores detected")
}
