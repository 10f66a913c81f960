// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package global

import (
	"fmt"
	"time"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/levels"
)

// Store keys for the aggregate history logs.
const (
	HistoryLastReloadKey   = "global:last_reload"
	SumOfBestLastReloadKey = "sob:last_reload"
)

// HistoryKey is the store key of the global history log for a type and mode.
func HistoryKey(t leaderboard.Type, m ScoringMode) string {
	return fmt.Sprintf("global:%s:%s", t, m)
}

// SumOfBestKey is the store key of a sum-of-best log. world is a world
// abbreviation, or empty for every world.
func SumOfBestKey(t leaderboard.Type, world string) string {
	if world == "" {
		world = "all"
	}
	return fmt.Sprintf("sob:%s:%s", t, world)
}

// FiveMinuteBucket truncates t to a 5-minute boundary in epoch seconds.
func FiveMinuteBucket(t time.Time) int64 {
	s := t.Unix()
	return s - s%300
}

// HistoryEntry is a global ranking entry observed at Time (epoch seconds).
type HistoryEntry struct {
	Entry
	Time int64 `json:"time"`
}

// UpdateHistory appends the entries of top ranked within limit whose user is
// new to the log or whose total changed since their latest entry. The input
// slice is not modified.
func UpdateHistory(history []HistoryEntry, top []Entry, now time.Time, limit int) []HistoryEntry {
	out := make([]HistoryEntry, len(history), len(history)+limit)
	copy(out, history)

	latest := make(map[string]int, len(out))
	for _, h := range out {
		latest[h.User.ID] = h.Value
	}

	stamp := FiveMinuteBucket(now)
	for _, e := range top {
		if e.Rank > limit {
			break
		}
		if v, ok := latest[e.User.ID]; ok && v == e.Value {
			continue
		}
		out = append(out, HistoryEntry{Entry: e, Time: stamp})
		latest[e.User.ID] = e.Value
	}
	return out
}

// SumOfBestEntry is one point of a sum-of-best log.
type SumOfBestEntry struct {
	Time  int64 `json:"time"`
	Score int   `json:"score"`
}

// AppendSumOfBest records score at now. A repeat of the latest point within
// the same 5-minute bucket is dropped.
func AppendSumOfBest(history []SumOfBestEntry, score int, now time.Time) []SumOfBestEntry {
	stamp := FiveMinuteBucket(now)
	if n := len(history); n > 0 && history[n-1].Time == stamp && history[n-1].Score == score {
		return history
	}
	out := make([]SumOfBestEntry, len(history), len(history)+1)
	copy(out, history)
	return append(out, SumOfBestEntry{Time: stamp, Score: score})
}

// missingStressValue stands in for a stress board with no entries.
const missingStressValue = 10_000

// SumsOfBest splits the sum of every campaign level's best value.
type SumsOfBest struct {
	Overall    int            `json:"overall"`
	Regular    int            `json:"regular"`
	Challenge  int            `json:"challenge"`
	LevelCount int            `json:"levelCount"`
	Worlds     map[string]int `json:"worlds"`
}

// SumOfBest adds up the rank-1 value of board type t on every campaign level
// passing filters. A level without entries counts its budget, or
// missingStressValue for stress boards.
func SumOfBest(all []LevelBoards, t leaderboard.Type, filters levels.WorldFilters) SumsOfBest {
	sums := SumsOfBest{Worlds: make(map[string]int)}
	for _, lb := range all {
		if lb.Level.Kind != levels.KindCampaign || !filters.Matches(lb.Level) {
			continue
		}

		value := lb.Level.Budget()
		if t == leaderboard.TypeStress {
			value = missingStressValue
		}
		if best, ok := lb.Boards[t].Best(); ok {
			value = best.Value
		}

		sums.Overall += value
		sums.LevelCount++
		if lb.Level.IsChallenge() {
			sums.Challenge += value
		} else {
			sums.Regular += value
		}
		sums.Worlds[lb.Level.Campaign.Code.World] += value
	}
	return sums
}
