// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package leaderboard

import (
	"cmp"
	"slices"
	"time"
)

// Rank converts raw backend entries into a ranked board truncated to
// MaxEntries. Entries are stable-sorted by value first, so equal values
// keep backend order. An entry whose value equals its predecessor's copies
// that rank; otherwise its rank is its 1-based position.
func Rank(raw []RawEntry) Board {
	sorted := slices.Clone(raw)
	slices.SortStableFunc(sorted, func(a, b RawEntry) int {
		return cmp.Compare(a.Value, b.Value)
	})
	if len(sorted) > MaxEntries {
		sorted = sorted[:MaxEntries]
	}

	entries := make([]Entry, len(sorted))
	for i, r := range sorted {
		rank := i + 1
		if i > 0 && r.Value == entries[i-1].Value {
			rank = entries[i-1].Rank
		}
		entries[i] = Entry{
			ID:       r.ID,
			Owner:    Owner{ID: r.OwnerID, DisplayName: r.DisplayName},
			Value:    r.Value,
			DidBreak: r.DidBreak,
			Rank:     rank,
		}
	}

	return Board{
		Top1000:  entries,
		Metadata: Metadata{UniqueRanksCount: len(entries)},
	}
}

// HourBucket truncates t to the start of its hour in epoch seconds.
func HourBucket(t time.Time) int64 {
	s := t.Unix()
	return s - s%3600
}

// RemovedOwners returns the owners ranked within limit on oldBoard who are
// missing from newBoard or whose value there is worse, in oldBoard order.
func RemovedOwners(oldBoard, newBoard Board, limit int) []string {
	current := make(map[string]int, len(newBoard.Top1000))
	for _, e := range newBoard.Top1000 {
		current[e.Owner.ID] = e.Value
	}

	var removed []string
	seen := make(map[string]bool)
	for _, e := range oldBoard.Top1000 {
		if e.Rank > limit {
			continue
		}
		v, ok := current[e.Owner.ID]
		if (!ok || v > e.Value) && !seen[e.Owner.ID] {
			removed = append(removed, e.Owner.ID)
			seen[e.Owner.ID] = true
		}
	}
	return removed
}

// UpdateHistory merges newBoard into history and returns the new log. The
// input slice is not modified.
//
// Owners returned by RemovedOwners have every history entry flagged as
// cheated. Then every entry ranked within limit on newBoard is appended,
// stamped with the hour bucket of now, when its owner has no live history
// entry yet, improved on the latest live one, or changed break status.
// Running it again with the same boards appends nothing.
func UpdateHistory(oldBoard, newBoard Board, history []HistoryEntry, now time.Time, limit int) []HistoryEntry {
	out := make([]HistoryEntry, len(history), len(history)+limit)
	copy(out, history)

	cheated := make(map[string]bool)
	for _, id := range RemovedOwners(oldBoard, newBoard, limit) {
		cheated[id] = true
	}
	if len(cheated) > 0 {
		for i := range out {
			if cheated[out[i].Owner.ID] {
				out[i].Cheated = true
			}
		}
	}

	latest := make(map[string]HistoryEntry, len(out))
	for _, h := range out {
		if h.Cheated {
			continue
		}
		latest[h.Owner.ID] = h
	}

	stamp := HourBucket(now)
	for _, e := range newBoard.Top1000 {
		if e.Rank > limit {
			break
		}
		prev, ok := latest[e.Owner.ID]
		if ok && e.Value >= prev.Value && e.DidBreak == prev.DidBreak {
			continue
		}
		h := HistoryEntry{Entry: e, Time: stamp}
		out = append(out, h)
		latest[e.Owner.ID] = h
	}
	return out
}
