// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package global

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/levels"
	"github.com/tomtom215/bridgeboard/internal/logging"
	"github.com/tomtom215/bridgeboard/internal/metrics"
	"github.com/tomtom215/bridgeboard/internal/store"
)

// Source provides the committed boards of every level.
type Source interface {
	AllBoards(ctx context.Context) ([]LevelBoards, error)
}

// HistoryConfig controls the aggregate history snapshots.
type HistoryConfig struct {
	GlobalInterval    time.Duration
	SumOfBestInterval time.Duration
	// RankLimit bounds the global ranks recorded per snapshot.
	RankLimit int
	// Now overrides the clock in tests.
	Now func() time.Time
}

// History periodically records the global rankings and sums of best.
type History struct {
	store  *store.Store
	source Source
	cfg    HistoryConfig
}

// NewHistory creates a recorder over source.
func NewHistory(st *store.Store, source Source, cfg HistoryConfig) *History {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &History{store: st, source: source, cfg: cfg}
}

func (h *History) lastReload(key string) time.Time {
	var last time.Time
	if err := h.store.Get(key, &last); err != nil && !errors.Is(err, store.ErrNotFound) {
		logging.Warn().Err(err).Str("key", key).Msg("Discarding unreadable snapshot time")
	}
	return last
}

func (h *History) untilDue(key string, interval time.Duration) time.Duration {
	return interval - h.cfg.Now().Sub(h.lastReload(key))
}

// TimeUntilNextReload is the time until the next snapshot is due.
func (h *History) TimeUntilNextReload() time.Duration {
	return min(
		h.untilDue(HistoryLastReloadKey, h.cfg.GlobalInterval),
		h.untilDue(SumOfBestLastReloadKey, h.cfg.SumOfBestInterval),
	)
}

// RunOnce takes every snapshot that is due.
func (h *History) RunOnce(ctx context.Context) error {
	var errs []error
	if h.untilDue(HistoryLastReloadKey, h.cfg.GlobalInterval) <= 0 {
		errs = append(errs, h.Snapshot(ctx))
	}
	if h.untilDue(SumOfBestLastReloadKey, h.cfg.SumOfBestInterval) <= 0 {
		errs = append(errs, h.SnapshotSumOfBest(ctx))
	}
	return errors.Join(errs...)
}

// Snapshot appends the current top of every (type, mode) ranking over all
// campaign levels to its log. All logs and the snapshot time are committed
// together.
func (h *History) Snapshot(ctx context.Context) (err error) {
	defer func() { metrics.RecordHistorySnapshot("global", err) }()

	all, err := h.source.AllBoards(ctx)
	if err != nil {
		return fmt.Errorf("load boards: %w", err)
	}

	now := h.cfg.Now()
	rankings := make(map[string][]Entry)
	for _, t := range leaderboard.Types {
		for _, m := range Modes {
			ranking, err := Compute(all, Options{Type: t, Category: levels.CategoryAll, Mode: m})
			if err != nil {
				return err
			}
			rankings[HistoryKey(t, m)] = ranking
		}
	}

	err = h.store.Update(func(tx *store.Txn) error {
		for key, ranking := range rankings {
			var history []HistoryEntry
			if err := tx.Get(key, &history); err != nil && !errors.Is(err, store.ErrNotFound) {
				logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Discarding unreadable global history")
				history = nil
			}
			if err := tx.Put(key, UpdateHistory(history, ranking, now, h.cfg.RankLimit)); err != nil {
				return err
			}
		}
		return tx.Put(HistoryLastReloadKey, now)
	})
	if err != nil {
		return fmt.Errorf("commit global history: %w", err)
	}
	logging.Ctx(ctx).Debug().Int("logs", len(rankings)).Msg("Global history snapshot recorded")
	return nil
}

// SnapshotSumOfBest appends the current sum of best of every type, overall
// and per world.
func (h *History) SnapshotSumOfBest(ctx context.Context) (err error) {
	defer func() { metrics.RecordHistorySnapshot("sum_of_best", err) }()

	all, err := h.source.AllBoards(ctx)
	if err != nil {
		return fmt.Errorf("load boards: %w", err)
	}

	now := h.cfg.Now()
	scores := make(map[string]int)
	for _, t := range leaderboard.Types {
		sums := SumOfBest(all, t, nil)
		scores[SumOfBestKey(t, "")] = sums.Overall
		for world, score := range sums.Worlds {
			scores[SumOfBestKey(t, world)] = score
		}
	}
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	err = h.store.Update(func(tx *store.Txn) error {
		for _, key := range keys {
			var history []SumOfBestEntry
			if err := tx.Get(key, &history); err != nil && !errors.Is(err, store.ErrNotFound) {
				logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Discarding unreadable sum of best history")
				history = nil
			}
			if err := tx.Put(key, AppendSumOfBest(history, scores[key], now)); err != nil {
				return err
			}
		}
		return tx.Put(SumOfBestLastReloadKey, now)
	})
	if err != nil {
		return fmt.Errorf("commit sum of best history: %w", err)
	}
	return nil
}

// ReadHistory reads the global history log of a type and mode. A missing
// or unreadable log is empty.
func ReadHistory(st *store.Store, t leaderboard.Type, m ScoringMode) ([]HistoryEntry, error) {
	var history []HistoryEntry
	if err := st.Get(HistoryKey(t, m), &history); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrMalformed) {
			return nil, nil
		}
		return nil, err
	}
	return history, nil
}

// ReadSumOfBest reads a sum-of-best log. world is empty for every world.
func ReadSumOfBest(st *store.Store, t leaderboard.Type, world string) ([]SumOfBestEntry, error) {
	var history []SumOfBestEntry
	if err := st.Get(SumOfBestKey(t, world), &history); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrMalformed) {
			return nil, nil
		}
		return nil, err
	}
	return history, nil
}
