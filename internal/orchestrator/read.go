// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tomtom215/bridgeboard/internal/buckets"
	"github.com/tomtom215/bridgeboard/internal/global"
	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/levels"
	"github.com/tomtom215/bridgeboard/internal/store"
	"github.com/tomtom215/bridgeboard/internal/timeline"
)

// Levels lists every indexed level, campaign levels first in manifest
// order. Stale indexes are reloaded first.
func (m *Manager) Levels(ctx context.Context) []levels.Level {
	return indexLevels(m.campaignIndex.Get(ctx), m.weeklyIndex.Get(ctx))
}

// CampaignLevel finds a campaign level by code.
func (m *Manager) CampaignLevel(ctx context.Context, code levels.Code) (levels.Level, bool) {
	for _, info := range m.campaignIndex.Get(ctx) {
		if info.Code == code {
			return levels.Campaign(info), true
		}
	}
	return levels.Level{}, false
}

// WeeklyLevel finds a weekly challenge by week number.
func (m *Manager) WeeklyLevel(ctx context.Context, week int) (levels.Level, bool) {
	for _, info := range m.weeklyIndex.Get(ctx) {
		if info.Week == week {
			return levels.Weekly(info), true
		}
	}
	return levels.Level{}, false
}

// LatestWeekly returns the weekly challenge with the highest week number.
func (m *Manager) LatestWeekly(ctx context.Context) (levels.Level, bool) {
	var latest levels.WeeklyInfo
	found := false
	for _, info := range m.weeklyIndex.Get(ctx) {
		if !found || info.Week > latest.Week {
			latest = info
			found = true
		}
	}
	if !found {
		return levels.Level{}, false
	}
	return levels.Weekly(latest), true
}

// Boards returns the boards of level, reloading stale ones synchronously
// first. A board that fails to reload is served from the last commit.
func (m *Manager) Boards(ctx context.Context, level levels.Level) (leaderboard.Boards, error) {
	m.reloadIfStale(ctx, level)
	return m.committedBoards(ctx, level)
}

// committedBoards reads every board of level in one transaction. Missing
// or unreadable boards are empty.
func (m *Manager) committedBoards(ctx context.Context, level levels.Level) (leaderboard.Boards, error) {
	boards := make(leaderboard.Boards, len(level.Types()))
	err := m.store.View(func(tx *store.Txn) error {
		for _, t := range level.Types() {
			boards[t] = readBoard(ctx, tx, boardKey(level, t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for t, b := range boards {
		m.nameEntries(b.Top1000)
		boards[t] = b
	}
	return boards, nil
}

// Histories returns the committed history logs of level. Weekly challenges
// have none.
func (m *Manager) Histories(ctx context.Context, level levels.Level) (leaderboard.Histories, error) {
	histories := make(leaderboard.Histories)
	if !level.KeepsHistory() {
		return histories, nil
	}
	err := m.store.View(func(tx *store.Txn) error {
		for _, t := range level.Types() {
			histories[t] = readHistory(ctx, tx, historyKey(level, t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, h := range histories {
		m.nameHistory(h)
	}
	return histories, nil
}

func (m *Manager) history(ctx context.Context, level levels.Level, t leaderboard.Type) ([]leaderboard.HistoryEntry, error) {
	histories, err := m.Histories(ctx, level)
	if err != nil {
		return nil, err
	}
	return histories[t], nil
}

// AllBoards returns the committed boards of every indexed level. It never
// triggers board reloads.
func (m *Manager) AllBoards(ctx context.Context) ([]global.LevelBoards, error) {
	all := m.Levels(ctx)
	out := make([]global.LevelBoards, 0, len(all))
	for _, level := range all {
		boards, err := m.committedBoards(ctx, level)
		if err != nil {
			return nil, err
		}
		out = append(out, global.LevelBoards{Level: level, Boards: boards})
	}
	return out, nil
}

// GlobalRanking ranks every user across the levels selected by opts.
func (m *Manager) GlobalRanking(ctx context.Context, opts global.Options) ([]global.Entry, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	all, err := m.AllBoards(ctx)
	if err != nil {
		return nil, err
	}
	return global.Compute(all, opts)
}

// SumOfBest adds up the rank-1 values of board type t.
func (m *Manager) SumOfBest(ctx context.Context, t leaderboard.Type, filters levels.WorldFilters) (global.SumsOfBest, error) {
	all, err := m.AllBoards(ctx)
	if err != nil {
		return global.SumsOfBest{}, err
	}
	return global.SumOfBest(all, t, filters), nil
}

// Buckets returns the percentile buckets of a board with holes filled in.
func (m *Manager) Buckets(ctx context.Context, level levels.Level, t leaderboard.Type) ([]buckets.Bucket, bool) {
	return m.bucketTable.Get(ctx).Buckets(level.Key(), t)
}

// EstimateScore places score among the full player population of a board.
func (m *Manager) EstimateScore(ctx context.Context, level levels.Level, t leaderboard.Type, score int) (buckets.Estimate, bool) {
	bs, ok := m.Buckets(ctx, level, t)
	if !ok {
		return buckets.Estimate{}, false
	}
	return buckets.EstimateScore(score, bs), true
}

// Histogram groups a board's buckets into n bins bounded by the level
// budget.
func (m *Manager) Histogram(ctx context.Context, level levels.Level, t leaderboard.Type, n int) ([]buckets.HistogramBin, bool) {
	bs, ok := m.Buckets(ctx, level, t)
	if !ok {
		return nil, false
	}
	return buckets.Histogram(bs, n, level.Budget()), true
}

// LevelTimeline returns the record progression of one board.
func (m *Manager) LevelTimeline(ctx context.Context, level levels.Level, t leaderboard.Type, includeTies bool) ([]timeline.Group, error) {
	history, err := m.history(ctx, level, t)
	if err != nil {
		return nil, err
	}
	return timeline.Level(history, includeTies), nil
}

// TopStreaks returns the current record holders of one board.
func (m *Manager) TopStreaks(ctx context.Context, level levels.Level, t leaderboard.Type) ([]timeline.Streak, error) {
	history, err := m.history(ctx, level, t)
	if err != nil {
		return nil, err
	}
	return timeline.TopStreaks(history), nil
}

// campaignHistories collects the type t history logs of the campaign
// levels matching filters.
func (m *Manager) campaignHistories(ctx context.Context, t leaderboard.Type, filters levels.WorldFilters) ([]timeline.LevelHistory, error) {
	var logs []timeline.LevelHistory
	for _, level := range levels.CategoryAll.Filter(m.Levels(ctx)) {
		if !filters.Matches(level) {
			continue
		}
		history, err := m.history(ctx, level, t)
		if err != nil {
			return nil, err
		}
		logs = append(logs, timeline.LevelHistory{CompactName: level.CompactName(), History: history})
	}
	return logs, nil
}

// Recent lists recent record-window scores across campaign levels, newest
// first.
func (m *Manager) Recent(ctx context.Context, t leaderboard.Type, filters levels.WorldFilters) ([]timeline.RecentEntry, error) {
	logs, err := m.campaignHistories(ctx, t, filters)
	if err != nil {
		return nil, err
	}
	return timeline.Recent(logs, nil), nil
}

// Oldest lists the current record holders across campaign levels,
// longest-held first.
func (m *Manager) Oldest(ctx context.Context, t leaderboard.Type, filters levels.WorldFilters) ([]timeline.OldestEntry, error) {
	logs, err := m.campaignHistories(ctx, t, filters)
	if err != nil {
		return nil, err
	}
	return timeline.Oldest(logs, nil), nil
}

// FoundUser is a user whose display name matched a lookup, with the first
// score it was found on.
type FoundUser struct {
	User        leaderboard.Owner `json:"user"`
	CompactName string            `json:"compactName"`
	Score       leaderboard.Entry `json:"score"`
}

// FindUsersByName lists the users whose display name equals name, ignoring
// case, across the any and unbreaking boards of every level. Each owner is
// reported once, labelled with the first level it was seen on; unbreaking
// hits carry an "(unbroken)" suffix. It reads committed boards only.
func (m *Manager) FindUsersByName(ctx context.Context, name string) ([]FoundUser, error) {
	all, err := m.AllBoards(ctx)
	if err != nil {
		return nil, err
	}
	var found []FoundUser
	seen := make(map[string]bool)
	for _, lb := range all {
		for _, t := range []leaderboard.Type{leaderboard.TypeAny, leaderboard.TypeUnbreaking} {
			label := lb.Level.CompactName()
			if t == leaderboard.TypeUnbreaking {
				label += " (unbroken)"
			}
			for _, e := range lb.Boards[t].Top1000 {
				if seen[e.Owner.ID] || !strings.EqualFold(e.Owner.DisplayName, name) {
					continue
				}
				seen[e.Owner.ID] = true
				found = append(found, FoundUser{User: e.Owner, CompactName: label, Score: e})
			}
		}
	}
	return found, nil
}

// LastReload returns when a board was last committed, or the zero time.
func (m *Manager) LastReload(level levels.Level, t leaderboard.Type) (time.Time, error) {
	var last time.Time
	err := m.store.Get(lastReloadKey(level, t), &last)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, nil
	}
	return last, err
}

func (m *Manager) nameEntries(entries []leaderboard.Entry) {
	if m.names == nil {
		return
	}
	for i := range entries {
		if entries[i].Owner.DisplayName == "" {
			entries[i].Owner.DisplayName = m.names.Name(entries[i].Owner.ID)
		}
	}
}

func (m *Manager) nameHistory(history []leaderboard.HistoryEntry) {
	if m.names == nil {
		return
	}
	for i := range history {
		if history[i].Owner.DisplayName == "" {
			history[i].Owner.DisplayName = m.names.Name(history[i].Owner.ID)
		}
	}
}
