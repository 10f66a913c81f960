// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package orchestrator

import (
	"context"

	"github.com/tomtom215/bridgeboard/internal/global"
	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/levels"
)

// profileCategories are the categories a profile is broken down by.
var profileCategories = []levels.Category{
	levels.CategoryAll,
	levels.CategoryRegular,
	levels.CategoryChallenge,
	levels.CategoryWeekly,
}

// ProfileEntry is a user's score on one level.
type ProfileEntry struct {
	Level       string            `json:"level"`
	LevelKey    string            `json:"levelKey"`
	IsChallenge bool              `json:"isChallenge"`
	IsWeekly    bool              `json:"isWeekly"`
	Entry       leaderboard.Entry `json:"entry"`
}

// RankCounts counts scores at or above each rank threshold.
type RankCounts struct {
	Top1    int `json:"top1"`
	Top10   int `json:"top10"`
	Top100  int `json:"top100"`
	Top1000 int `json:"top1000"`
}

func (c *RankCounts) add(rank int) {
	if rank <= 1 {
		c.Top1++
	}
	if rank <= 10 {
		c.Top10++
	}
	if rank <= 100 {
		c.Top100++
	}
	if rank <= 1000 {
		c.Top1000++
	}
}

// Profile aggregates one user's standing on one board type. Global holds
// the user's position per category in the configured profile scoring mode.
type Profile struct {
	User    leaderboard.Owner                `json:"user"`
	Type    leaderboard.Type                 `json:"type"`
	Entries []ProfileEntry                   `json:"entries"`
	Counts  map[levels.Category]RankCounts   `json:"counts"`
	Global  map[levels.Category]global.Entry `json:"global"`
}

// Profile builds the profile of userID from the committed boards. found is
// false when the user has no score on any level.
func (m *Manager) Profile(ctx context.Context, userID string, t leaderboard.Type) (p Profile, found bool, err error) {
	all, err := m.AllBoards(ctx)
	if err != nil {
		return Profile{}, false, err
	}

	p = Profile{
		User:   leaderboard.Owner{ID: userID},
		Type:   t,
		Counts: make(map[levels.Category]RankCounts, len(profileCategories)),
		Global: make(map[levels.Category]global.Entry, len(profileCategories)),
	}
	if m.names != nil {
		p.User.DisplayName = m.names.Name(userID)
	}

	for _, lb := range all {
		e, ok := lb.Boards[t].Find(userID)
		if !ok {
			continue
		}
		found = true
		if e.Owner.DisplayName != "" {
			p.User.DisplayName = e.Owner.DisplayName
		}
		p.Entries = append(p.Entries, ProfileEntry{
			Level:       lb.Level.CompactName(),
			LevelKey:    lb.Level.Key(),
			IsChallenge: lb.Level.IsChallenge(),
			IsWeekly:    lb.Level.Kind == levels.KindWeekly,
			Entry:       e,
		})
		for _, c := range profileCategories {
			if c.Matches(lb.Level) {
				counts := p.Counts[c]
				counts.add(e.Rank)
				p.Counts[c] = counts
			}
		}
	}
	if !found {
		return p, false, nil
	}

	for _, c := range profileCategories {
		opts := global.Options{Type: t, Category: c, Mode: m.cfg.ProfileMode}
		if opts.Validate() != nil {
			continue
		}
		ranking, err := global.Compute(all, opts)
		if err != nil {
			return Profile{}, false, err
		}
		if e, ok := global.FindUser(ranking, userID); ok {
			p.Global[c] = e
		}
	}
	return p, true, nil
}
