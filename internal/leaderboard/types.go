// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

// Package leaderboard turns raw backend snapshots into ranked boards and
// maintains the per-board history log used for removed-score detection and
// timelines.
package leaderboard

import (
	"errors"
	"fmt"
)

// OldestRankLimit is the rank window tracked by the history log.
const OldestRankLimit = 25

// MaxEntries is the number of entries kept per board.
const MaxEntries = 1000

// ErrAccessDenied is returned by a backend when a leaderboard ID is no longer
// valid. Callers treat it as a signal to re-resolve the ID.
var ErrAccessDenied = errors.New("leaderboard access denied")

// Type selects one of the per-level boards.
type Type string

const (
	TypeAny        Type = "any"
	TypeUnbreaking Type = "unbreaking"
	TypeStress     Type = "stress"
)

// Types lists every board type in storage order.
var Types = []Type{TypeAny, TypeUnbreaking, TypeStress}

// ParseType parses a board type name. "unbroken" is accepted as an alias.
func ParseType(s string) (Type, error) {
	switch s {
	case "any":
		return TypeAny, nil
	case "unbreaking", "unbroken":
		return TypeUnbreaking, nil
	case "stress":
		return TypeStress, nil
	}
	return "", fmt.Errorf("unknown leaderboard type %q", s)
}

// Owner identifies the player behind an entry.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Entry is one ranked score. Lower values are better.
type Entry struct {
	ID       string `json:"id"`
	Owner    Owner  `json:"owner"`
	Value    int    `json:"value"`
	DidBreak bool   `json:"didBreak"`
	Rank     int    `json:"rank"`
}

// Metadata describes a board as a whole.
type Metadata struct {
	UniqueRanksCount int `json:"uniqueRanksCount"`
}

// Board is a ranked snapshot of one (level, type) leaderboard.
type Board struct {
	Top1000  []Entry  `json:"top1000"`
	Metadata Metadata `json:"metadata"`
}

// Find returns the entry owned by ownerID.
func (b Board) Find(ownerID string) (Entry, bool) {
	for _, e := range b.Top1000 {
		if e.Owner.ID == ownerID {
			return e, true
		}
	}
	return Entry{}, false
}

// Best returns the rank-1 entry, if any.
func (b Board) Best() (Entry, bool) {
	if len(b.Top1000) == 0 {
		return Entry{}, false
	}
	return b.Top1000[0], true
}

// HistoryEntry records when a qualifying score was first observed.
type HistoryEntry struct {
	Entry
	// Time is epoch seconds, bucketed to the hour.
	Time int64 `json:"time"`
	// Cheated is set once the score is found to have been removed. It never
	// goes back to false.
	Cheated bool `json:"cheated"`
}

// RawEntry is a score as delivered by the backend, before ranking.
type RawEntry struct {
	ID          string
	OwnerID     string
	DisplayName string
	Value       int
	DidBreak    bool
}

// Boards holds one board per type for a level.
type Boards map[Type]Board

// Histories holds one history log per type for a level.
type Histories map[Type][]HistoryEntry
