// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

/*
Package timeline reconstructs who held the best score over time from the
append-only history logs.

All three timelines share one pattern: history entries are grouped by their
time bucket in ascending order, and a bucket survives only if it moves the
record. Per-level and global timelines additionally report ties, buckets in
which someone matched the record without beating it.
*/
package timeline

import (
	"math"
	"sort"

	"github.com/tomtom215/bridgeboard/internal/global"
	"github.com/tomtom215/bridgeboard/internal/leaderboard"
)

// Group is one step of a per-level timeline. Scores lists everyone holding
// the record after this step, ordered by the time they reached it.
type Group struct {
	Time   int64                      `json:"time"`
	IsTie  bool                       `json:"isTie"`
	Scores []leaderboard.HistoryEntry `json:"scores"`
}

// groupByTime returns the distinct times of entries in ascending order and
// the entries for each, preserving input order within a time.
func groupByTime[T any](entries []T, timeOf func(T) int64) ([]int64, map[int64][]T) {
	byTime := make(map[int64][]T)
	var times []int64
	for _, e := range entries {
		t := timeOf(e)
		if _, ok := byTime[t]; !ok {
			times = append(times, t)
		}
		byTime[t] = append(byTime[t], e)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times, byTime
}

// Level builds the record timeline of one board's history. Cheated entries
// are ignored. With includeTies false, steps that only tie the record are
// omitted, though their holders still appear in later steps while they keep
// the record.
func Level(history []leaderboard.HistoryEntry, includeTies bool) []Group {
	var live []leaderboard.HistoryEntry
	for _, h := range history {
		if !h.Cheated {
			live = append(live, h)
		}
	}
	times, byTime := groupByTime(live, func(h leaderboard.HistoryEntry) int64 { return h.Time })

	lowest := math.MaxInt
	holders := make(map[string]leaderboard.HistoryEntry)
	var groups []Group

	for _, t := range times {
		bucket := byTime[t]
		low := math.MaxInt
		for _, h := range bucket {
			low = min(low, h.Value)
		}
		if low > lowest {
			continue
		}

		for _, h := range bucket {
			if h.Value > low {
				continue
			}
			if _, ok := holders[h.Owner.ID]; !ok || h.Value < holders[h.Owner.ID].Value {
				holders[h.Owner.ID] = h
			}
		}
		for id, h := range holders {
			if h.Value > low {
				delete(holders, id)
			}
		}

		tie := low == lowest
		lowest = low
		if tie && !includeTies {
			continue
		}
		groups = append(groups, Group{Time: t, IsTie: tie, Scores: sortedHolders(holders)})
	}
	return groups
}

func sortedHolders(holders map[string]leaderboard.HistoryEntry) []leaderboard.HistoryEntry {
	out := make([]leaderboard.HistoryEntry, 0, len(holders))
	for _, h := range holders {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Owner.ID < out[j].Owner.ID
	})
	return out
}

// GlobalGroup is one step of the global timeline. Leaders are the rank-1
// entries of the bucket.
type GlobalGroup struct {
	Time    int64                 `json:"time"`
	IsTie   bool                  `json:"isTie"`
	Leaders []global.HistoryEntry `json:"leaders"`
}

// Global builds the timeline of global rank-1 holders. A bucket is kept when
// it is the first bucket, when it improves on the last kept value, when it
// has a leader absent from the last kept bucket, or when it is the last
// bucket. A new leader at the last kept value is a tie and, with includeTies
// false, is omitted unless it is the last bucket.
func Global(history []global.HistoryEntry, includeTies bool) []GlobalGroup {
	var leaders []global.HistoryEntry
	for _, h := range history {
		if h.Rank == 1 {
			leaders = append(leaders, h)
		}
	}
	times, byTime := groupByTime(leaders, func(h global.HistoryEntry) int64 { return h.Time })

	var (
		groups      []GlobalGroup
		prevLeaders []global.HistoryEntry
		prevLo      int
	)
	for i, t := range times {
		bucket := byTime[t]
		low := math.MaxInt
		for _, h := range bucket {
			low = min(low, h.Value)
		}

		first := len(groups) == 0
		last := i == len(times)-1
		improved := !first && low < prevLo
		newLeader := !first && hasNewLeader(bucket, prevLeaders)
		tie := !first && !improved && newLeader && low == prevLo

		keep := first || improved || last || (newLeader && (!tie || includeTies))
		if !keep {
			continue
		}
		groups = append(groups, GlobalGroup{Time: t, IsTie: tie, Leaders: bucket})
		prevLeaders = bucket
		prevLo = low
	}
	return groups
}

func hasNewLeader(bucket, before []global.HistoryEntry) bool {
	seen := make(map[string]bool, len(before))
	for _, h := range before {
		seen[h.User.ID] = true
	}
	for _, h := range bucket {
		if !seen[h.User.ID] {
			return true
		}
	}
	return false
}

// SumOfBest drops points that repeat the previous kept score, ordering by
// time first.
func SumOfBest(history []global.SumOfBestEntry) []global.SumOfBestEntry {
	sorted := make([]global.SumOfBestEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var out []global.SumOfBestEntry
	for _, e := range sorted {
		if len(out) > 0 && out[len(out)-1].Score == e.Score {
			continue
		}
		out = append(out, e)
	}
	return out
}
