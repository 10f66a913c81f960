// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package leaderboard

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func raw(owner string, value int) RawEntry {
	return RawEntry{ID: owner + "-score", OwnerID: owner, DisplayName: owner, Value: value}
}

func ranks(b Board) []int {
	out := make([]int, len(b.Top1000))
	for i, e := range b.Top1000 {
		out[i] = e.Rank
	}
	return out
}

func TestRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []int
		want   []int
	}{
		{"empty", nil, []int{}},
		{"single", []int{100}, []int{1}},
		{"leading tie", []int{90, 90, 100}, []int{1, 1, 3}},
		{"unsorted input", []int{100, 100, 90}, []int{1, 2, 2}},
		{"trailing tie", []int{90, 100, 100}, []int{1, 2, 2}},
		{"all tied", []int{5, 5, 5}, []int{1, 1, 1}},
		{"tie in middle", []int{1, 2, 2, 2, 3}, []int{1, 2, 2, 2, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := make([]RawEntry, len(tt.values))
			for i, v := range tt.values {
				in[i] = raw(string(rune('a'+i)), v)
			}
			got := Rank(in)
			if diff := cmp.Diff(tt.want, ranks(got)); diff != "" {
				t.Errorf("ranks mismatch (-want +got):\n%s", diff)
			}
			if got.Metadata.UniqueRanksCount != len(tt.values) {
				t.Errorf("UniqueRanksCount = %d, want %d", got.Metadata.UniqueRanksCount, len(tt.values))
			}
		})
	}
}

func TestRankSortsByValue(t *testing.T) {
	t.Parallel()

	in := []RawEntry{raw("a", 100), raw("d", 120), raw("c", 90), raw("b", 100)}
	got := Rank(in)
	var owners []string
	for _, e := range got.Top1000 {
		owners = append(owners, e.Owner.ID)
	}
	// Equal values keep backend order.
	if diff := cmp.Diff([]string{"c", "a", "b", "d"}, owners); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 2, 4}, ranks(got)); diff != "" {
		t.Errorf("ranks mismatch (-want +got):\n%s", diff)
	}
	if in[0].OwnerID != "a" || in[2].OwnerID != "c" {
		t.Error("Rank reordered the caller's slice")
	}
}

func TestRankInvariant(t *testing.T) {
	t.Parallel()

	in := []RawEntry{raw("d", 1), raw("b", 3), raw("e", 3), raw("a", 7), raw("c", 7), raw("f", 9)}
	b := Rank(in)
	for i := 1; i < len(b.Top1000); i++ {
		prev, cur := b.Top1000[i-1], b.Top1000[i]
		if cur.Rank < prev.Rank {
			t.Fatalf("rank decreased at %d: %d -> %d", i, prev.Rank, cur.Rank)
		}
		if (cur.Rank == prev.Rank) != (cur.Value == prev.Value) {
			t.Fatalf("rank sharing disagrees with value equality at %d", i)
		}
		if cur.Rank != prev.Rank {
			better := 0
			for _, e := range b.Top1000 {
				if e.Value < cur.Value {
					better++
				}
			}
			if cur.Rank != better+1 {
				t.Fatalf("rank %d at %d, want strictly-better count + 1 = %d", cur.Rank, i, better+1)
			}
		}
	}
}

func TestRankTruncates(t *testing.T) {
	t.Parallel()

	in := make([]RawEntry, MaxEntries+10)
	for i := range in {
		in[i] = raw("u", i)
	}
	if got := len(Rank(in).Top1000); got != MaxEntries {
		t.Errorf("expected %d entries, got %d", MaxEntries, got)
	}
}

func board(entries ...RawEntry) Board {
	return Rank(entries)
}

var (
	t0 = time.Unix(1_700_000_000, 0)
	t1 = t0.Add(2 * time.Hour)
	t2 = t0.Add(5 * time.Hour)
)

func TestUpdateHistoryFirstScore(t *testing.T) {
	t.Parallel()

	h := UpdateHistory(board(), board(raw("a", 100)), nil, t0, OldestRankLimit)
	if len(h) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(h))
	}
	if h[0].Owner.ID != "a" || h[0].Value != 100 || h[0].Cheated {
		t.Errorf("unexpected entry: %+v", h[0])
	}
	if h[0].Time%3600 != 0 || h[0].Time > t0.Unix() || t0.Unix()-h[0].Time >= 3600 {
		t.Errorf("time %d is not the hour bucket of %d", h[0].Time, t0.Unix())
	}
}

func TestUpdateHistoryImprovement(t *testing.T) {
	t.Parallel()

	b1 := board(raw("a", 100))
	b2 := board(raw("a", 90))
	h := UpdateHistory(board(), b1, nil, t0, OldestRankLimit)
	h = UpdateHistory(b1, b2, h, t1, OldestRankLimit)

	if len(h) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(h))
	}
	if h[1].Value != 90 || h[1].Time != HourBucket(t1) {
		t.Errorf("unexpected second entry: %+v", h[1])
	}
	if h[0].Cheated || h[1].Cheated {
		t.Error("improvement must not flag cheating")
	}
}

func TestUpdateHistoryIdempotent(t *testing.T) {
	t.Parallel()

	old := board(raw("a", 100), raw("b", 120))
	cur := board(raw("a", 95), raw("b", 120), raw("c", 130))

	once := UpdateHistory(old, cur, nil, t0, OldestRankLimit)
	twice := UpdateHistory(old, cur, once, t1, OldestRankLimit)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second application changed history (-once +twice):\n%s", diff)
	}

	// Steady state: the board did not move between polls.
	steady := UpdateHistory(cur, cur, twice, t2, OldestRankLimit)
	if diff := cmp.Diff(once, steady); diff != "" {
		t.Errorf("unchanged snapshot changed history (-want +got):\n%s", diff)
	}
}

func TestUpdateHistoryRemovedScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		next Board
	}{
		{"score got worse", board(raw("a", 110), raw("b", 200))},
		{"owner disappeared", board(raw("b", 200))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			first := board(raw("a", 120), raw("b", 200))
			second := board(raw("a", 100), raw("b", 200))
			h := UpdateHistory(board(), first, nil, t0, OldestRankLimit)
			h = UpdateHistory(first, second, h, t1, OldestRankLimit)

			h = UpdateHistory(second, tt.next, h, t2, OldestRankLimit)
			for _, e := range h {
				if e.Owner.ID == "a" && e.Time < HourBucket(t2) && !e.Cheated {
					t.Errorf("expected A's earlier entry %+v to be flagged", e)
				}
				if e.Owner.ID == "b" && e.Cheated {
					t.Errorf("B must not be flagged: %+v", e)
				}
			}
		})
	}
}

func TestUpdateHistoryWorseScoreRecordedAfterRemoval(t *testing.T) {
	t.Parallel()

	b1 := board(raw("a", 100))
	b2 := board(raw("a", 110))
	h := UpdateHistory(board(), b1, nil, t0, OldestRankLimit)
	h = UpdateHistory(b1, b2, h, t1, OldestRankLimit)

	if len(h) != 2 {
		t.Fatalf("expected the surviving 110 to be recorded, got %d entries", len(h))
	}
	if !h[0].Cheated || h[1].Cheated || h[1].Value != 110 {
		t.Errorf("unexpected history: %+v", h)
	}

	again := UpdateHistory(b2, b2, h, t2, OldestRankLimit)
	if len(again) != 2 {
		t.Errorf("expected no further entries, got %d", len(again))
	}
}

func TestUpdateHistoryCheatedNeverUnflags(t *testing.T) {
	t.Parallel()

	history := []HistoryEntry{{Entry: Entry{Owner: Owner{ID: "a"}, Value: 50, Rank: 1}, Time: 0, Cheated: true}}
	b := board(raw("a", 50))
	h := UpdateHistory(b, b, history, t0, OldestRankLimit)
	if !h[0].Cheated {
		t.Error("cheated flag was cleared")
	}
}

func TestUpdateHistoryBreakStatusChange(t *testing.T) {
	t.Parallel()

	broke := RawEntry{ID: "x", OwnerID: "a", Value: 100, DidBreak: true}
	clean := RawEntry{ID: "y", OwnerID: "a", Value: 100, DidBreak: false}
	b1, b2 := board(broke), board(clean)

	h := UpdateHistory(board(), b1, nil, t0, OldestRankLimit)
	h = UpdateHistory(b1, b2, h, t1, OldestRankLimit)
	if len(h) != 2 || h[1].DidBreak {
		t.Errorf("expected break-status change to append, got %+v", h)
	}
}

func TestUpdateHistoryRespectsLimit(t *testing.T) {
	t.Parallel()

	entries := make([]RawEntry, 40)
	for i := range entries {
		entries[i] = raw(string(rune('A'+i)), 100+i)
	}
	h := UpdateHistory(board(), board(entries...), nil, t0, OldestRankLimit)
	if len(h) != OldestRankLimit {
		t.Errorf("expected %d entries, got %d", OldestRankLimit, len(h))
	}

	// An owner outside the window who drops out is not flagged.
	b := board(entries...)
	removed := RemovedOwners(b, board(entries[:30]...), OldestRankLimit)
	if len(removed) != 0 {
		t.Errorf("owners outside the window flagged: %v", removed)
	}
}

func TestUpdateHistoryDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	history := []HistoryEntry{{Entry: Entry{Owner: Owner{ID: "a"}, Value: 100, Rank: 1}}}
	old := board(raw("a", 100))
	UpdateHistory(old, board(), history, t0, OldestRankLimit)
	if history[0].Cheated {
		t.Error("input history was modified")
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Type{"any": TypeAny, "unbroken": TypeUnbreaking, "unbreaking": TypeUnbreaking, "stress": TypeStress} {
		got, err := ParseType(in)
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseType("fastest"); err == nil {
		t.Error("expected error for unknown type")
	}
}
