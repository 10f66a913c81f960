// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/levels"
	"github.com/tomtom215/bridgeboard/internal/logging"
	"github.com/tomtom215/bridgeboard/internal/metrics"
	"github.com/tomtom215/bridgeboard/internal/store"
	"github.com/tomtom215/bridgeboard/internal/usernames"
)

// ReloadLevel reloads every board of level now, regardless of schedule.
func (m *Manager) ReloadLevel(ctx context.Context, level levels.Level) error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	var errs []error
	for _, t := range level.Types() {
		if err := m.reloadBoard(ctx, m.boardState(level, t)); err != nil {
			errs = append(errs, err)
		}
	}
	m.publishStates()
	return errors.Join(errs...)
}

// reloadIfStale reloads the due boards of level before a read. Caller must
// not hold reloadMu.
func (m *Manager) reloadIfStale(ctx context.Context, level levels.Level) {
	var due []*boardState
	now := m.now()
	for _, t := range level.Types() {
		b := m.boardState(level, t)
		m.mu.RLock()
		wait := b.timeUntilDue(now, m.interval(level), m.cfg.IdleWait)
		m.mu.RUnlock()
		if wait <= 0 {
			due = append(due, b)
		}
	}
	if len(due) == 0 {
		return
	}

	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	for _, b := range due {
		m.mu.RLock()
		wait := b.timeUntilDue(m.now(), m.interval(level), m.cfg.IdleWait)
		m.mu.RUnlock()
		// A loop pass may have reloaded it while we waited for the lock.
		if wait > 0 {
			continue
		}
		_ = m.reloadBoard(ctx, b)
	}
	m.publishStates()
}

// reloadBoard fetches and commits one board, updating its state. Caller
// must hold reloadMu.
func (m *Manager) reloadBoard(ctx context.Context, b *boardState) error {
	m.mu.Lock()
	b.state = StateReloading
	level, typ := b.level, b.typ
	m.mu.Unlock()

	start := m.now()
	reloadedAt, err := m.fetchAndCommit(ctx, level, typ)
	metrics.RecordReload("level", string(typ), m.now().Sub(start), err)

	m.mu.Lock()
	b.lastAttempt = m.now()
	if err != nil {
		b.state = StateFailed
		b.lastErr = err
	} else {
		b.state = StateFresh
		b.lastReload = reloadedAt
		b.lastErr = nil
	}
	m.mu.Unlock()

	if err != nil {
		m.events.LogBoardFailed(ctx, level.CompactName(), string(typ), err)
	}
	return err
}

func (m *Manager) fetchAndCommit(ctx context.Context, level levels.Level, t leaderboard.Type) (time.Time, error) {
	name := level.LeaderboardName(t)

	id, err := m.leaderboardID(ctx, name)
	if err != nil {
		return time.Time{}, fmt.Errorf("resolve leaderboard %s: %w", name, err)
	}

	var raw []leaderboard.RawEntry
	err = m.limiter.Do(ctx, func(ctx context.Context) error {
		var err error
		raw, err = m.backend.FetchEntries(ctx, id, leaderboard.MaxEntries)
		return err
	})
	if err != nil {
		if errors.Is(err, leaderboard.ErrAccessDenied) {
			m.invalidateID(ctx, name, id)
		}
		return time.Time{}, fmt.Errorf("fetch leaderboard %s: %w", name, err)
	}

	board := leaderboard.Rank(raw)
	now := m.now()
	var removed []string
	var newHistory int

	commitStart := time.Now()
	err = m.store.Update(func(tx *store.Txn) error {
		if level.KeepsHistory() {
			old := readBoard(ctx, tx, boardKey(level, t))
			history := readHistory(ctx, tx, historyKey(level, t))
			next := leaderboard.UpdateHistory(old, board, history, now, m.cfg.OldestRankLimit)
			removed = leaderboard.RemovedOwners(old, board, m.cfg.OldestRankLimit)
			newHistory = len(next) - len(history)
			if err := tx.Put(historyKey(level, t), next); err != nil {
				return err
			}
		}
		if err := tx.Put(boardKey(level, t), board); err != nil {
			return err
		}
		return tx.Put(lastReloadKey(level, t), now)
	})
	metrics.RecordStoreCommit(time.Since(commitStart), err)
	if err != nil {
		return time.Time{}, fmt.Errorf("commit %s: %w", name, err)
	}

	if len(removed) > 0 {
		metrics.CheatFlags.Add(float64(len(removed)))
		m.events.LogCheatFlagged(ctx, level.CompactName(), string(t), removed)
	}
	m.enqueueOwners(board)
	m.events.LogBoardReloaded(ctx, level.CompactName(), string(t), len(board.Top1000), newHistory)
	return now, nil
}

// readBoard returns the committed board at key, or an empty board when it is
// missing or unreadable.
func readBoard(ctx context.Context, tx *store.Txn, key string) leaderboard.Board {
	var board leaderboard.Board
	if err := tx.Get(key, &board); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Discarding unreadable board")
		}
		return leaderboard.Board{}
	}
	return board
}

func readHistory(ctx context.Context, tx *store.Txn, key string) []leaderboard.HistoryEntry {
	var history []leaderboard.HistoryEntry
	if err := tx.Get(key, &history); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Discarding unreadable history log")
		}
		return nil
	}
	return history
}

func (m *Manager) enqueueOwners(board leaderboard.Board) {
	if m.queue == nil {
		return
	}
	for _, e := range board.Top1000 {
		m.queue.Enqueue(e.Owner.ID, usernames.TierForRank(e.Rank))
	}
}

// leaderboardID returns the backend ID for name. A cached ID younger than
// IDInterval costs no backend call. A stale one is deleted and resolved
// again through the limiter.
func (m *Manager) leaderboardID(ctx context.Context, name string) (int64, error) {
	key := idKey(name)

	var rec idRecord
	err := m.store.Get(key, &rec)
	switch {
	case err == nil:
		if m.now().Sub(rec.ResolvedAt) < m.cfg.IDInterval {
			return rec.ID, nil
		}
		if err := m.store.Delete(key); err != nil {
			return 0, fmt.Errorf("drop stale id: %w", err)
		}
	case errors.Is(err, store.ErrNotFound):
	case errors.Is(err, store.ErrMalformed):
		logging.Ctx(ctx).Warn().Err(err).Str("leaderboard", name).Msg("Discarding unreadable cached leaderboard ID")
	default:
		return 0, err
	}

	var id int64
	err = m.limiter.Do(ctx, func(ctx context.Context) error {
		var err error
		id, err = m.backend.ResolveLeaderboard(ctx, name)
		return err
	})
	if err != nil {
		return 0, err
	}
	if err := m.store.Put(key, idRecord{ID: id, ResolvedAt: m.now()}); err != nil {
		return 0, fmt.Errorf("cache id: %w", err)
	}
	return id, nil
}

// invalidateID drops the cached ID for name after the backend refused it.
func (m *Manager) invalidateID(ctx context.Context, name string, id int64) {
	if err := m.store.Delete(idKey(name)); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("leaderboard", name).Msg("Failed to drop cached leaderboard ID")
		return
	}
	metrics.IDInvalidations.Inc()
	m.events.LogIDInvalidated(ctx, name, id)
}
