// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package orchestrator

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/bridgeboard/internal/global"
	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/levels"
)

type staticNames map[string]string

func (n staticNames) Name(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return "<" + id + ">"
}

// encodeBuckets writes one record per bin, using the same bin for every
// board type.
func encodeBuckets(t *testing.T, levelID string, bins [][4]int32) []byte {
	t.Helper()
	var buf bytes.Buffer
	for i, bin := range bins {
		_ = binary.Write(&buf, binary.LittleEndian, uint16(len(levelID)))
		buf.WriteString(levelID)
		_ = binary.Write(&buf, binary.LittleEndian, int32(i+1))
		for range leaderboard.Types {
			_ = binary.Write(&buf, binary.LittleEndian, bin)
		}
	}
	return buf.Bytes()
}

func TestBoardsFillDisplayNames(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.m.SetNames(staticNames{"alice": "Alice"})
	f.m.MaybeReload(ctx)

	boards, err := f.m.Boards(ctx, f.level(t, "CR-01"))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range boards[leaderboard.TypeAny].Top1000 {
		names = append(names, e.Owner.DisplayName)
	}
	if diff := cmp.Diff([]string{"Alice", "<bob>", "<carol>"}, names); diff != "" {
		t.Errorf("display names (-want +got):\n%s", diff)
	}
}

func TestFindUsersByName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.backend.set("lvl_b_unbreaking", 5, raw("dave", 7200), raw("alice", 7300))
	f.m.SetNames(staticNames{"alice": "Alice", "bob": "ALICE", "dave": "alice"})
	f.m.MaybeReload(ctx)

	found, err := f.m.FindUsersByName(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, u := range found {
		got = append(got, u.User.ID+"@"+u.CompactName)
	}
	want := []string{"alice@CR-01", "bob@CR-01", "dave@CR-02 (unbroken)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("found users (-want +got):\n%s", diff)
	}
	if found[0].Score.Value != 900 {
		t.Errorf("alice score = %d, want 900", found[0].Score.Value)
	}

	if found, _ := f.m.FindUsersByName(ctx, "nobody"); len(found) != 0 {
		t.Errorf("unexpected matches: %+v", found)
	}
}

func TestGlobalRanking(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.backend.set("lvl_b", 4, raw("bob", 7000), raw("alice", 7500))
	f.m.MaybeReload(ctx)

	ranking, err := f.m.GlobalRanking(ctx, global.Options{
		Type:     leaderboard.TypeAny,
		Category: levels.CategoryAll,
		Mode:     global.ModeBudget,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Budget 13000 minus savings: alice 4100+500, bob 4050+1000, carol 4050.
	got := make(map[string]int)
	for _, e := range ranking {
		got[e.User.ID] = e.Value
	}
	want := map[string]int{"alice": 8400, "bob": 7950, "carol": 8950}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("global values (-want +got):\n%s", diff)
	}
	if ranking[0].User.ID != "bob" || ranking[0].Rank != 1 {
		t.Errorf("leader = %+v, want bob", ranking[0])
	}

	_, err = f.m.GlobalRanking(ctx, global.Options{Type: leaderboard.TypeAny, Category: levels.CategoryWeekly, Mode: global.ModeBudget})
	if err == nil {
		t.Error("budget scoring of weekly challenges should be rejected")
	}
}

func TestProfile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.backend.set("lvl_b", 4, raw("bob", 7000), raw("alice", 7500))
	f.m.MaybeReload(ctx)

	p, found, err := f.m.Profile(ctx, "alice", leaderboard.TypeAny)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("alice should have a profile")
	}
	if len(p.Entries) != 2 {
		t.Fatalf("entries = %+v", p.Entries)
	}
	if diff := cmp.Diff(RankCounts{Top1: 1, Top10: 2, Top100: 2, Top1000: 2}, p.Counts[levels.CategoryAll]); diff != "" {
		t.Errorf("all counts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(RankCounts{Top1: 0, Top10: 1, Top100: 1, Top1000: 1}, p.Counts[levels.CategoryChallenge]); diff != "" {
		t.Errorf("challenge counts (-want +got):\n%s", diff)
	}
	if _, ok := p.Global[levels.CategoryAll]; !ok {
		t.Error("missing global position")
	}
	if _, ok := p.Global[levels.CategoryWeekly]; ok {
		t.Error("alice has no weekly scores")
	}

	if _, found, _ := f.m.Profile(ctx, "nobody", leaderboard.TypeAny); found {
		t.Error("unknown user should not be found")
	}
}

func TestBucketEstimates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.cdn.files[BucketsPath] = encodeBuckets(t, "lvl_a", [][4]int32{
		{1, 10, 900, 1000},
		{11, 20, 1000, 2000},
	})
	level := f.level(t, "CR-01")

	bs, ok := f.m.Buckets(ctx, level, leaderboard.TypeAny)
	if !ok || len(bs) != 2 {
		t.Fatalf("Buckets = %+v, %v", bs, ok)
	}
	est, ok := f.m.EstimateScore(ctx, level, leaderboard.TypeAny, 800)
	if !ok || est.Percentile != 1 {
		t.Errorf("EstimateScore = %+v, %v; want percentile 1", est, ok)
	}
	if est, _ := f.m.EstimateScore(ctx, level, leaderboard.TypeAny, 950); est.Percentile != 2 {
		t.Errorf("EstimateScore(950) percentile = %d, want 2", est.Percentile)
	}
	if _, ok := f.m.Buckets(ctx, f.level(t, "CR-02"), leaderboard.TypeAny); ok {
		t.Error("level missing from the table should have no buckets")
	}
	if bins, ok := f.m.Histogram(ctx, level, leaderboard.TypeAny, 4); !ok || len(bins) != 4 {
		t.Errorf("Histogram = %+v, %v", bins, ok)
	}
}

func TestTimelinesAndRecent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.m.MaybeReload(ctx)

	f.backend.set("lvl_a", 1, raw("bob", 850), raw("alice", 900), raw("carol", 950))
	f.clock.Advance(DefaultConfig().LevelInterval)
	f.m.MaybeReload(ctx)

	level := f.level(t, "CR-01")
	groups, err := f.m.LevelTimeline(ctx, level, leaderboard.TypeAny, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("timeline = %+v, want two record steps", groups)
	}
	if groups[1].Scores[0].Owner.ID != "bob" {
		t.Errorf("second record holder = %s, want bob", groups[1].Scores[0].Owner.ID)
	}

	streaks, err := f.m.TopStreaks(ctx, level, leaderboard.TypeAny)
	if err != nil {
		t.Fatal(err)
	}
	if len(streaks) != 1 || streaks[0].Latest.Owner.ID != "bob" {
		t.Errorf("streaks = %+v", streaks)
	}

	recent, err := f.m.Recent(ctx, leaderboard.TypeAny, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) == 0 || recent[0].Owner.ID != "bob" || recent[0].CompactName != "CR-01" {
		t.Errorf("recent = %+v", recent)
	}

	mmOnly, _ := levels.ParseWorldFilters("MM")
	recent, err = f.m.Recent(ctx, leaderboard.TypeAny, mmOnly)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 0 {
		t.Errorf("MM filter matched %d entries", len(recent))
	}

	oldest, err := f.m.Oldest(ctx, leaderboard.TypeAny, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(oldest) != 1 || oldest[0].CompactName != "CR-01" {
		t.Errorf("oldest = %+v", oldest)
	}
}

func TestGlobalHistorySnapshots(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.m.MaybeReload(ctx)

	h := global.NewHistory(f.store, f.m, global.HistoryConfig{
		GlobalInterval:    30 * time.Minute,
		SumOfBestInterval: 30 * time.Minute,
		RankLimit:         25,
		Now:               f.clock.Now,
	})
	if err := h.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if d := h.TimeUntilNextReload(); d <= 0 {
		t.Errorf("snapshots still due after RunOnce: %v", d)
	}

	groups, err := f.m.GlobalTimeline(leaderboard.TypeAny, global.ModeRank, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0].Leaders[0].User.ID != "alice" {
		t.Errorf("global timeline = %+v", groups)
	}

	sob, err := f.m.SumOfBestTimeline(leaderboard.TypeAny, "")
	if err != nil {
		t.Fatal(err)
	}
	// lvl_a best 900 plus lvl_b's empty board at its 8000 budget.
	if len(sob) != 1 || sob[0].Score != 8900 {
		t.Errorf("sum of best timeline = %+v", sob)
	}
	world, err := f.m.SumOfBestTimeline(leaderboard.TypeAny, "CR")
	if err != nil {
		t.Fatal(err)
	}
	if len(world) != 1 || world[0].Score != 8900 {
		t.Errorf("CR sum of best = %+v", world)
	}
}
