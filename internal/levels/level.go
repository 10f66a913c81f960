// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

// Package levels describes the tracked levels: campaign levels identified by
// a world code and weekly challenges identified by week number.
package levels

import (
	"fmt"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
)

// Kind tags which variant a Level holds.
type Kind int

const (
	KindCampaign Kind = iota + 1
	KindWeekly
)

func (k Kind) String() string {
	switch k {
	case KindCampaign:
		return "campaign"
	case KindWeekly:
		return "weekly"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// CampaignInfo is one entry of the campaign manifest.
type CampaignInfo struct {
	ID        string `json:"id"`
	Code      Code   `json:"code"`
	Name      string `json:"name"`
	Budget    int    `json:"budget"`
	Challenge bool   `json:"challenge"`
}

// WeeklyInfo is one entry of the weekly challenge manifest.
type WeeklyInfo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Week   int    `json:"week"`
	Budget int    `json:"budget"`
}

// Level is either a campaign level or a weekly challenge. Exactly one of
// Campaign and Weekly is meaningful, as selected by Kind.
type Level struct {
	Kind     Kind
	Campaign CampaignInfo
	Weekly   WeeklyInfo
}

// Campaign wraps a campaign manifest entry.
func Campaign(info CampaignInfo) Level {
	return Level{Kind: KindCampaign, Campaign: info}
}

// Weekly wraps a weekly manifest entry.
func Weekly(info WeeklyInfo) Level {
	return Level{Kind: KindWeekly, Weekly: info}
}

// Key is the store key prefix for this level's boards and history.
func (l Level) Key() string {
	switch l.Kind {
	case KindCampaign:
		return l.Campaign.ID
	case KindWeekly:
		return "WC." + l.Weekly.ID
	}
	panic(fmt.Sprintf("levels: unknown kind %v", l.Kind))
}

// LeaderboardName is the backend leaderboard name for board type t.
func (l Level) LeaderboardName(t leaderboard.Type) string {
	base := l.Key()
	switch t {
	case leaderboard.TypeUnbreaking:
		return base + "_unbreaking"
	case leaderboard.TypeStress:
		return base + "_stress"
	default:
		return base
	}
}

// CompactName is the short display name: "CR-01" or "Week 95".
func (l Level) CompactName() string {
	switch l.Kind {
	case KindCampaign:
		return l.Campaign.Code.String()
	case KindWeekly:
		return fmt.Sprintf("Week %d", l.Weekly.Week)
	}
	panic(fmt.Sprintf("levels: unknown kind %v", l.Kind))
}

// Budget is the level's in-game budget.
func (l Level) Budget() int {
	if l.Kind == KindWeekly {
		return l.Weekly.Budget
	}
	return l.Campaign.Budget
}

// IsChallenge reports whether a campaign level is a challenge level.
func (l Level) IsChallenge() bool {
	return l.Kind == KindCampaign && l.Campaign.Challenge
}

// KeepsHistory reports whether history logs are maintained. Weekly
// challenges only keep their current boards.
func (l Level) KeepsHistory() bool {
	return l.Kind == KindCampaign
}

// Types lists the boards mirrored for the level. Weekly challenges have no
// stress board.
func (l Level) Types() []leaderboard.Type {
	if l.Kind == KindWeekly {
		return []leaderboard.Type{leaderboard.TypeAny, leaderboard.TypeUnbreaking}
	}
	return leaderboard.Types
}

// Category selects a subset of levels for aggregate queries.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryRegular   Category = "regular"
	CategoryChallenge Category = "challenge"
	CategoryWeekly    Category = "weekly"
)

// ParseCategory parses a category name.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryAll, CategoryRegular, CategoryChallenge, CategoryWeekly:
		return c, nil
	}
	return "", fmt.Errorf("unknown level category %q", s)
}

// Matches reports whether level belongs to the category. "all" covers
// campaign levels only, as weekly challenges are ranked separately.
func (c Category) Matches(l Level) bool {
	switch c {
	case CategoryAll:
		return l.Kind == KindCampaign
	case CategoryRegular:
		return l.Kind == KindCampaign && !l.Campaign.Challenge
	case CategoryChallenge:
		return l.Kind == KindCampaign && l.Campaign.Challenge
	case CategoryWeekly:
		return l.Kind == KindWeekly
	}
	return false
}

// Filter returns the levels in c, preserving order.
func (c Category) Filter(all []Level) []Level {
	var out []Level
	for _, l := range all {
		if c.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}
