// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package timeline

import (
	"math"
	"sort"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
)

// Streak describes a user currently tied for a board's best score.
type Streak struct {
	// InitialTime is when the user first reached the current record.
	InitialTime int64                    `json:"initialTime"`
	Latest      leaderboard.HistoryEntry `json:"latest"`
	// First marks the users who reached the record earliest.
	First bool `json:"first"`
}

// TopStreaks returns the current record holders of a board, oldest first.
func TopStreaks(history []leaderboard.HistoryEntry) []Streak {
	var live []leaderboard.HistoryEntry
	for _, h := range history {
		if !h.Cheated {
			live = append(live, h)
		}
	}
	times, byTime := groupByTime(live, func(h leaderboard.HistoryEntry) int64 { return h.Time })

	lowest := math.MaxInt
	holders := make(map[string]*Streak)
	for _, t := range times {
		bucket := byTime[t]
		low := math.MaxInt
		for _, h := range bucket {
			low = min(low, h.Value)
		}
		if low > lowest {
			continue
		}
		lowest = low

		for _, h := range bucket {
			if h.Value > lowest {
				continue
			}
			if s, ok := holders[h.Owner.ID]; ok {
				s.Latest = h
			} else {
				holders[h.Owner.ID] = &Streak{InitialTime: h.Time, Latest: h}
			}
		}
		for id, s := range holders {
			if s.Latest.Value > lowest {
				delete(holders, id)
			}
		}
	}

	out := make([]Streak, 0, len(holders))
	earliest := int64(math.MaxInt64)
	for _, s := range holders {
		earliest = min(earliest, s.InitialTime)
		out = append(out, *s)
	}
	for i := range out {
		out[i].First = out[i].InitialTime == earliest
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InitialTime != out[j].InitialTime {
			return out[i].InitialTime < out[j].InitialTime
		}
		return out[i].Latest.Owner.ID < out[j].Latest.Owner.ID
	})
	return out
}

// LevelHistory is one level's history log labelled with its display name.
type LevelHistory struct {
	CompactName string
	History     []leaderboard.HistoryEntry
}

// RecentEntry is a history entry labelled with its level.
type RecentEntry struct {
	leaderboard.HistoryEntry
	CompactName string `json:"compactName"`
}

// Recent merges the live entries of several history logs, newest first.
// Entries from the same hour are ordered by rank. A nil keep accepts every
// entry.
func Recent(logs []LevelHistory, keep func(leaderboard.HistoryEntry) bool) []RecentEntry {
	var out []RecentEntry
	for _, l := range logs {
		for _, h := range l.History {
			if h.Cheated || (keep != nil && !keep(h)) {
				continue
			}
			out = append(out, RecentEntry{HistoryEntry: h, CompactName: l.CompactName})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time > out[j].Time
		}
		return out[i].Rank < out[j].Rank
	})
	return out
}

// OldestEntry is a record streak labelled with its level.
type OldestEntry struct {
	Streak
	CompactName string `json:"compactName"`
}

// Oldest lists the current record holders of every level, longest-held
// first.
func Oldest(logs []LevelHistory, keep func(leaderboard.HistoryEntry) bool) []OldestEntry {
	var out []OldestEntry
	for _, l := range logs {
		for _, s := range TopStreaks(l.History) {
			if keep != nil && !keep(s.Latest) {
				continue
			}
			out = append(out, OldestEntry{Streak: s, CompactName: l.CompactName})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].InitialTime < out[j].InitialTime })
	return out
}
