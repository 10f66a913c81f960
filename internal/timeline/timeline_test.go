// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package timeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/bridgeboard/internal/global"
	"github.com/tomtom215/bridgeboard/internal/leaderboard"
)

func he(t int64, owner string, value int) leaderboard.HistoryEntry {
	return leaderboard.HistoryEntry{
		Entry: leaderboard.Entry{Owner: leaderboard.Owner{ID: owner}, Value: value, Rank: 1},
		Time:  t,
	}
}

func owners(g Group) []string {
	out := make([]string, len(g.Scores))
	for i, s := range g.Scores {
		out[i] = s.Owner.ID
	}
	return out
}

func TestLevelTies(t *testing.T) {
	t.Parallel()

	history := []leaderboard.HistoryEntry{he(1, "A", 100), he(2, "B", 100), he(3, "A", 90)}

	tests := []struct {
		name        string
		includeTies bool
		wantTimes   []int64
		wantOwners  [][]string
		wantTies    []bool
	}{
		{"with ties", true, []int64{1, 2, 3}, [][]string{{"A"}, {"A", "B"}, {"A"}}, []bool{false, true, false}},
		{"without ties", false, []int64{1, 3}, [][]string{{"A"}, {"A"}}, []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			groups := Level(history, tt.includeTies)
			if len(groups) != len(tt.wantTimes) {
				t.Fatalf("got %d groups, want %d", len(groups), len(tt.wantTimes))
			}
			for i, g := range groups {
				if g.Time != tt.wantTimes[i] || g.IsTie != tt.wantTies[i] {
					t.Errorf("group %d = time %d tie %v", i, g.Time, g.IsTie)
				}
				if diff := cmp.Diff(tt.wantOwners[i], owners(g)); diff != "" {
					t.Errorf("group %d owners (-want +got):\n%s", i, diff)
				}
			}
			if last := groups[len(groups)-1]; last.Scores[0].Value != 90 {
				t.Errorf("final record = %d, want 90", last.Scores[0].Value)
			}
		})
	}
}

func TestLevelSkipsNonImprovementsAndCheats(t *testing.T) {
	t.Parallel()

	cheat := he(2, "C", 10)
	cheat.Cheated = true
	history := []leaderboard.HistoryEntry{he(3, "B", 120), he(1, "A", 100), cheat}

	groups := Level(history, true)
	if len(groups) != 1 || groups[0].Time != 1 {
		t.Errorf("expected only A's record, got %+v", groups)
	}
	if Level(nil, true) != nil {
		t.Error("empty history should give no groups")
	}
}

func ghe(t int64, user string, value int) global.HistoryEntry {
	return global.HistoryEntry{Entry: global.Entry{User: leaderboard.Owner{ID: user}, Value: value, Rank: 1}, Time: t}
}

func times(groups []GlobalGroup) []int64 {
	out := make([]int64, len(groups))
	for i, g := range groups {
		out[i] = g.Time
	}
	return out
}

func TestGlobalKeepsFirstBucket(t *testing.T) {
	t.Parallel()

	got := Global([]global.HistoryEntry{ghe(1, "A", 500)}, false)
	if diff := cmp.Diff([]int64{1}, times(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestGlobalKeepsImprovement(t *testing.T) {
	t.Parallel()

	history := []global.HistoryEntry{ghe(1, "A", 500), ghe(2, "A", 450), ghe(3, "A", 450), ghe(4, "A", 400)}
	got := Global(history, false)
	// t=3 repeats the leader and value; t=4 is both an improvement and last.
	if diff := cmp.Diff([]int64{1, 2, 4}, times(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestGlobalKeepsNewLeader(t *testing.T) {
	t.Parallel()

	history := []global.HistoryEntry{
		ghe(1, "A", 500),
		ghe(2, "B", 500), // ties A
		ghe(3, "C", 520), // new leader after a removal, worse value
		ghe(4, "C", 520),
		ghe(5, "C", 510),
	}

	withTies := Global(history, true)
	if diff := cmp.Diff([]int64{1, 2, 3, 5}, times(withTies)); diff != "" {
		t.Errorf("with ties (-want +got):\n%s", diff)
	}
	if !withTies[1].IsTie || withTies[2].IsTie {
		t.Errorf("tie flags wrong: %+v", withTies)
	}

	withoutTies := Global(history, false)
	if diff := cmp.Diff([]int64{1, 3, 5}, times(withoutTies)); diff != "" {
		t.Errorf("without ties (-want +got):\n%s", diff)
	}
}

func TestGlobalAlwaysKeepsLastBucket(t *testing.T) {
	t.Parallel()

	history := []global.HistoryEntry{ghe(1, "A", 500), ghe(2, "A", 500), ghe(3, "B", 500)}
	for _, includeTies := range []bool{true, false} {
		got := Global(history, includeTies)
		if diff := cmp.Diff([]int64{1, 3}, times(got)); diff != "" {
			t.Errorf("includeTies=%v (-want +got):\n%s", includeTies, diff)
		}
	}

	// A non-improving repeat is still the last bucket.
	got := Global([]global.HistoryEntry{ghe(1, "A", 500), ghe(2, "A", 520)}, false)
	if diff := cmp.Diff([]int64{1, 2}, times(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestGlobalIgnoresLowerRanks(t *testing.T) {
	t.Parallel()

	second := ghe(2, "B", 400)
	second.Rank = 2
	got := Global([]global.HistoryEntry{ghe(1, "A", 500), second}, true)
	if len(got) != 1 {
		t.Errorf("rank-2 entries should be ignored, got %+v", got)
	}
}

func TestSumOfBestTimeline(t *testing.T) {
	t.Parallel()

	history := []global.SumOfBestEntry{{Time: 3, Score: 90}, {Time: 1, Score: 100}, {Time: 2, Score: 100}, {Time: 4, Score: 90}, {Time: 5, Score: 95}}
	want := []global.SumOfBestEntry{{Time: 1, Score: 100}, {Time: 3, Score: 90}, {Time: 5, Score: 95}}
	if diff := cmp.Diff(want, SumOfBest(history)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestTopStreaks(t *testing.T) {
	t.Parallel()

	history := []leaderboard.HistoryEntry{
		he(1, "A", 100),
		he(2, "B", 90),
		he(3, "C", 90),
		he(4, "B", 90),
		he(5, "D", 95),
	}
	got := TopStreaks(history)
	if len(got) != 2 {
		t.Fatalf("expected B and C, got %+v", got)
	}
	if got[0].Latest.Owner.ID != "B" || got[0].InitialTime != 2 || !got[0].First || got[0].Latest.Time != 4 {
		t.Errorf("unexpected first streak: %+v", got[0])
	}
	if got[1].Latest.Owner.ID != "C" || got[1].First {
		t.Errorf("unexpected second streak: %+v", got[1])
	}
}

func TestRecent(t *testing.T) {
	t.Parallel()

	a := he(10, "A", 100)
	a.Rank = 3
	b := he(10, "B", 90)
	b.Rank = 1
	c := he(20, "C", 80)
	gone := he(30, "D", 70)
	gone.Cheated = true

	logs := []LevelHistory{
		{CompactName: "CR-01", History: []leaderboard.HistoryEntry{a, gone}},
		{CompactName: "CR-02", History: []leaderboard.HistoryEntry{b, c}},
	}
	got := Recent(logs, nil)
	var order []string
	for _, e := range got {
		order = append(order, e.CompactName+"/"+e.Owner.ID)
	}
	if diff := cmp.Diff([]string{"CR-02/C", "CR-02/B", "CR-01/A"}, order); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	onlyA := Recent(logs, func(h leaderboard.HistoryEntry) bool { return h.Owner.ID == "A" })
	if len(onlyA) != 1 {
		t.Errorf("filter not applied: %+v", onlyA)
	}
}

func TestOldest(t *testing.T) {
	t.Parallel()

	logs := []LevelHistory{
		{CompactName: "CR-01", History: []leaderboard.HistoryEntry{he(50, "A", 100)}},
		{CompactName: "CR-02", History: []leaderboard.HistoryEntry{he(10, "B", 100)}},
	}
	got := Oldest(logs, nil)
	if len(got) != 2 || got[0].CompactName != "CR-02" || got[1].CompactName != "CR-01" {
		t.Errorf("unexpected order: %+v", got)
	}
}
