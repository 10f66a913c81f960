// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

// Package global aggregates per-level boards into cross-level rankings, the
// global history log and sum-of-best totals.
package global

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/levels"
)

// ErrUnknownScoringMode is returned by ParseScoringMode.
var ErrUnknownScoringMode = errors.New("unknown scoring mode")

// ScoringMode selects how a level appearance counts toward the total.
type ScoringMode int

const (
	// ModeRank scores each appearance by its rank on the level.
	ModeRank ScoringMode = iota
	// ModeBudget scores each appearance by its cost relative to the budget.
	ModeBudget
)

// Modes lists every scoring mode.
var Modes = []ScoringMode{ModeRank, ModeBudget}

func (m ScoringMode) String() string {
	switch m {
	case ModeRank:
		return "rank"
	case ModeBudget:
		return "budget"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseScoringMode parses "rank" or "budget". "score" is accepted as an
// alias for budget.
func ParseScoringMode(s string) (ScoringMode, error) {
	switch s {
	case "rank":
		return ModeRank, nil
	case "budget", "score":
		return ModeBudget, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScoringMode, s)
}

var (
	rankScoresMu sync.RWMutex
	rankScores   = defaultRankScores()
)

// defaultRankScores rises logarithmically from 0 at rank 1 to 100 at
// rank 1000.
func defaultRankScores() []int {
	out := make([]int, leaderboard.MaxEntries)
	for i := range out {
		out[i] = int(math.Round(100 * math.Log10(float64(i+1)) / 3))
	}
	return out
}

// SetRankScores replaces the rank-to-score table and returns a function
// restoring the previous one. scores[r-1] is the score for rank r; ranks past
// the end of the table score 100.
func SetRankScores(scores []int) (restore func()) {
	rankScoresMu.Lock()
	prev := rankScores
	rankScores = scores
	rankScoresMu.Unlock()
	return func() {
		rankScoresMu.Lock()
		rankScores = prev
		rankScoresMu.Unlock()
	}
}

func rankScore(table []int, rank int) int {
	if rank < 1 || rank > len(table) {
		return 100
	}
	return table[rank-1]
}

// Options selects the boards and scoring rule of a global ranking.
type Options struct {
	Type     leaderboard.Type
	Category levels.Category
	Mode     ScoringMode
}

// DefaultOptions ranks any% boards of every campaign level by rank.
func DefaultOptions() Options {
	return Options{Type: leaderboard.TypeAny, Category: levels.CategoryAll, Mode: ModeRank}
}

// Validate rejects combinations that cannot be scored.
func (o Options) Validate() error {
	if o.Mode == ModeBudget && o.Category == levels.CategoryWeekly {
		return errors.New("budget scoring is not available for weekly challenges")
	}
	if _, err := leaderboard.ParseType(string(o.Type)); err != nil {
		return err
	}
	if _, err := levels.ParseCategory(string(o.Category)); err != nil {
		return err
	}
	return nil
}

// LevelBoards pairs a level with its current boards.
type LevelBoards struct {
	Level  levels.Level
	Boards leaderboard.Boards
}

// Entry is one user's position in a global ranking. Lower values are better.
type Entry struct {
	User  leaderboard.Owner `json:"user"`
	Value int               `json:"value"`
	Rank  int               `json:"rank"`
}

// Compute ranks every user appearing on at least one selected board.
//
// Every user starts from the mode's base score for the selected levels and
// each appearance subtracts that level's contribution, so a level the user
// is absent from costs the maximum. Equal totals share a rank. It panics on
// an out-of-range scoring mode.
func Compute(all []LevelBoards, opts Options) ([]Entry, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var selected []LevelBoards
	for _, lb := range all {
		if opts.Category.Matches(lb.Level) {
			selected = append(selected, lb)
		}
	}

	rankScoresMu.RLock()
	table := rankScores
	rankScoresMu.RUnlock()

	base := 0
	switch opts.Mode {
	case ModeRank:
		base = 100 * len(selected)
	case ModeBudget:
		for _, lb := range selected {
			base += lb.Level.Budget()
		}
	default:
		panic(fmt.Sprintf("global: unknown scoring mode %d", int(opts.Mode)))
	}

	byUser := make(map[string]*Entry)
	var order []*Entry
	for _, lb := range selected {
		for _, e := range lb.Boards[opts.Type].Top1000 {
			ge, ok := byUser[e.Owner.ID]
			if !ok {
				ge = &Entry{User: e.Owner, Value: base}
				byUser[e.Owner.ID] = ge
				order = append(order, ge)
			}
			if opts.Mode == ModeRank {
				ge.Value -= 100 - rankScore(table, e.Rank)
			} else {
				ge.Value -= lb.Level.Budget() - e.Value
			}
		}
	}

	out := make([]Entry, len(order))
	for i, e := range order {
		out[i] = *e
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	for i := range out {
		out[i].Rank = i + 1
		if i > 0 && out[i].Value == out[i-1].Value {
			out[i].Rank = out[i-1].Rank
		}
	}
	return out, nil
}

// FindUser returns the entry for userID.
func FindUser(entries []Entry, userID string) (Entry, bool) {
	for _, e := range entries {
		if e.User.ID == userID {
			return e, true
		}
	}
	return Entry{}, false
}
