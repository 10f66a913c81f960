// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package global

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/levels"
)

func campaign(id, world string, n, budget int, challenge bool) levels.Level {
	return levels.Campaign(levels.CampaignInfo{
		ID:        id,
		Code:      levels.Code{World: world, Level: n},
		Budget:    budget,
		Challenge: challenge,
	})
}

func anyBoard(scores ...leaderboard.RawEntry) leaderboard.Boards {
	return leaderboard.Boards{leaderboard.TypeAny: leaderboard.Rank(scores)}
}

func score(owner string, value int) leaderboard.RawEntry {
	return leaderboard.RawEntry{ID: owner, OwnerID: owner, DisplayName: owner, Value: value}
}

func TestParseScoringMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]ScoringMode{"rank": ModeRank, "budget": ModeBudget, "score": ModeBudget} {
		got, err := ParseScoringMode(in)
		if err != nil || got != want {
			t.Errorf("ParseScoringMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseScoringMode("fastest"); !errors.Is(err, ErrUnknownScoringMode) {
		t.Errorf("expected ErrUnknownScoringMode, got %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("default options invalid: %v", err)
	}
	bad := Options{Type: leaderboard.TypeAny, Category: levels.CategoryWeekly, Mode: ModeBudget}
	if err := bad.Validate(); err == nil {
		t.Error("budget scoring with weekly category should be rejected")
	}
	if _, err := Compute(nil, bad); err == nil {
		t.Error("Compute should reject invalid options")
	}
}

func TestComputeRankModeTies(t *testing.T) {
	restore := SetRankScores([]int{0, 10, 20, 30})
	defer restore()

	all := []LevelBoards{
		{Level: campaign("a", "CR", 1, 1000, false), Boards: anyBoard(score("x", 10), score("y", 20), score("z", 30))},
		{Level: campaign("b", "CR", 2, 1000, false), Boards: anyBoard(score("y", 10), score("x", 20))},
	}

	got, err := Compute(all, DefaultOptions())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// x: 200 - 100 - 90 = 10, y: same, z: 200 - 80 = 120.
	want := []Entry{
		{User: leaderboard.Owner{ID: "x", DisplayName: "x"}, Value: 10, Rank: 1},
		{User: leaderboard.Owner{ID: "y", DisplayName: "y"}, Value: 10, Rank: 1},
		{User: leaderboard.Owner{ID: "z", DisplayName: "z"}, Value: 120, Rank: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeBudgetMode(t *testing.T) {
	t.Parallel()

	all := []LevelBoards{
		{Level: campaign("a", "CR", 1, 1000, false), Boards: anyBoard(score("x", 800), score("y", 900))},
		{Level: campaign("b", "CR", 2, 2000, true), Boards: anyBoard(score("y", 1500))},
	}

	got, err := Compute(all, Options{Type: leaderboard.TypeAny, Category: levels.CategoryAll, Mode: ModeBudget})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// y: 900 + 1500 = 2400, x: 800 + 2000 (absent) = 2800.
	if got[0].User.ID != "y" || got[0].Value != 2400 || got[1].Value != 2800 {
		t.Errorf("unexpected ranking: %+v", got)
	}

	challengeOnly, err := Compute(all, Options{Type: leaderboard.TypeAny, Category: levels.CategoryChallenge, Mode: ModeBudget})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(challengeOnly) != 1 || challengeOnly[0].Value != 1500 {
		t.Errorf("users without appearances should be excluded: %+v", challengeOnly)
	}
}

func TestComputePanicsOnUnknownMode(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	_, _ = Compute(nil, Options{Type: leaderboard.TypeAny, Category: levels.CategoryAll, Mode: ScoringMode(9)})
}

func TestDefaultRankScores(t *testing.T) {
	t.Parallel()

	s := defaultRankScores()
	if s[0] != 0 || s[len(s)-1] != 100 {
		t.Errorf("table endpoints = %d, %d", s[0], s[len(s)-1])
	}
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			t.Fatalf("table decreases at rank %d", i+1)
		}
	}
}

func TestFindUser(t *testing.T) {
	t.Parallel()

	entries := []Entry{{User: leaderboard.Owner{ID: "a"}, Rank: 1}, {User: leaderboard.Owner{ID: "b"}, Rank: 2}}
	if e, ok := FindUser(entries, "b"); !ok || e.Rank != 2 {
		t.Errorf("FindUser(b) = %+v, %v", e, ok)
	}
	if _, ok := FindUser(entries, "c"); ok {
		t.Error("FindUser(c) should miss")
	}
}

func TestUpdateHistory(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_123, 0)
	top := []Entry{
		{User: leaderboard.Owner{ID: "a"}, Value: 10, Rank: 1},
		{User: leaderboard.Owner{ID: "b"}, Value: 20, Rank: 2},
		{User: leaderboard.Owner{ID: "c"}, Value: 30, Rank: 3},
	}

	h := UpdateHistory(nil, top, now, 2)
	if len(h) != 2 || h[0].Time != FiveMinuteBucket(now) || h[0].Time%300 != 0 {
		t.Fatalf("unexpected history: %+v", h)
	}

	again := UpdateHistory(h, top, now.Add(time.Hour), 2)
	if len(again) != 2 {
		t.Errorf("unchanged totals should not append, got %d entries", len(again))
	}

	top[1].Value = 15
	changed := UpdateHistory(again, top, now.Add(time.Hour), 2)
	if len(changed) != 3 || changed[2].User.ID != "b" {
		t.Errorf("changed total should append, got %+v", changed)
	}
}

func TestAppendSumOfBest(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	h := AppendSumOfBest(nil, 500, now)
	h = AppendSumOfBest(h, 500, now.Add(time.Minute))
	if len(h) != 1 {
		t.Errorf("repeat within bucket should be dropped, got %+v", h)
	}
	h = AppendSumOfBest(h, 500, now.Add(10*time.Minute))
	if len(h) != 2 {
		t.Errorf("new bucket should append, got %+v", h)
	}
}

func TestSumOfBest(t *testing.T) {
	t.Parallel()

	stress := func(v int) leaderboard.Boards {
		return leaderboard.Boards{leaderboard.TypeStress: leaderboard.Rank([]leaderboard.RawEntry{score("x", v)})}
	}
	all := []LevelBoards{
		{Level: campaign("a", "CR", 1, 1000, false), Boards: anyBoard(score("x", 700), score("y", 800))},
		{Level: campaign("b", "CR", 2, 2000, true), Boards: anyBoard()},
		{Level: campaign("c", "MM", 1, 3000, false), Boards: anyBoard(score("z", 2500))},
		{Level: levels.Weekly(levels.WeeklyInfo{ID: "w", Week: 1, Budget: 9}), Boards: anyBoard(score("x", 1))},
	}

	got := SumOfBest(all, leaderboard.TypeAny, nil)
	want := SumsOfBest{
		Overall:    700 + 2000 + 2500,
		Regular:    700 + 2500,
		Challenge:  2000,
		LevelCount: 3,
		Worlds:     map[string]int{"CR": 2700, "MM": 2500},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sum of best mismatch (-want +got):\n%s", diff)
	}

	cr, _ := levels.ParseWorldFilters("CR")
	if got := SumOfBest(all, leaderboard.TypeAny, cr); got.Overall != 2700 || got.LevelCount != 2 {
		t.Errorf("filtered sum = %+v", got)
	}

	all[0].Boards = stress(4200)
	if got := SumOfBest(all[:2], leaderboard.TypeStress, nil); got.Overall != 4200+missingStressValue {
		t.Errorf("stress sum = %d", got.Overall)
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	if got := HistoryKey(leaderboard.TypeStress, ModeBudget); got != "global:stress:budget" {
		t.Errorf("HistoryKey = %q", got)
	}
	if got := SumOfBestKey(leaderboard.TypeAny, ""); got != "sob:any:all" {
		t.Errorf("SumOfBestKey = %q", got)
	}
	if got := SumOfBestKey(leaderboard.TypeAny, "CR"); got != "sob:any:CR" {
		t.Errorf("SumOfBestKey = %q", got)
	}
}
