// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package resource

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/tomtom215/bridgeboard/internal/store"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenForTesting(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("OpenForTesting: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// counter fetches an incrementing number and keeps a running total.
type counter struct {
	fetches int
	fail    error
}

func (c *counter) config(clock *fakeClock) Config[int, string] {
	return Config[int, string]{
		Name:     "counter",
		Interval: time.Minute,
		Default:  -1,
		Fetch: func(context.Context) (string, error) {
			if c.fail != nil {
				return "", c.fail
			}
			c.fetches++
			return strconv.Itoa(c.fetches), nil
		},
		Process: func(old int, remote string) (int, error) {
			n, err := strconv.Atoi(remote)
			if err != nil {
				return old, err
			}
			if old < 0 {
				old = 0
			}
			return old + n, nil
		},
		Now: clock.Now,
	}
}

func TestGetReloadsWhenStale(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := &counter{}
	r := New(setupStore(t), c.config(clock))

	if !r.NeedsReload() {
		t.Fatal("a never-loaded resource should need a reload")
	}
	if got := r.Get(ctx); got != 1 {
		t.Errorf("first Get = %d, want 1", got)
	}
	if got := r.Get(ctx); got != 1 || c.fetches != 1 {
		t.Errorf("fresh Get refetched: value %d, fetches %d", got, c.fetches)
	}

	clock.Advance(30 * time.Second)
	if d := r.TimeUntilNextReload(); d != 30*time.Second {
		t.Errorf("TimeUntilNextReload = %v, want 30s", d)
	}

	clock.Advance(31 * time.Second)
	if got := r.Get(ctx); got != 3 {
		t.Errorf("stale Get = %d, want 1+2", got)
	}
}

func TestReloadFailureKeepsLastValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := &counter{}
	r := New(setupStore(t), c.config(clock))

	if err := r.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	before := r.LastReload()

	boom := errors.New("cdn unavailable")
	c.fail = boom
	clock.Advance(time.Hour)
	if err := r.Reload(ctx); !errors.Is(err, boom) {
		t.Errorf("expected fetch error, got %v", err)
	}
	if got := r.Get(ctx); got != 1 {
		t.Errorf("value after failure = %d, want 1", got)
	}
	if !r.LastReload().Equal(before) {
		t.Error("failed reload must not advance the reload time")
	}
}

func TestPersistedAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	st := setupStore(t)

	c := &counter{}
	if err := New(st, c.config(clock)).Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	again := &counter{}
	r := New(st, again.config(clock))
	if got := r.Get(ctx); got != 1 || again.fetches != 0 {
		t.Errorf("restarted Get = %d with %d fetches, want persisted 1 and no fetch", got, again.fetches)
	}
}

func TestMalformedPersistedValueFallsBackToDefault(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	st := setupStore(t)

	if err := st.Put(KeyPrefix+"counter", "not a record"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	c := &counter{fail: errors.New("offline")}
	r := New(st, c.config(clock))
	if got := r.Peek(); got != -1 {
		t.Errorf("Peek = %d, want default -1", got)
	}
	if got := r.Get(context.Background()); got != -1 {
		t.Errorf("Get with failing fetch = %d, want default -1", got)
	}
}

func TestProcessErrorKeepsValue(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cfg := Config[int, string]{
		Name:     "broken",
		Interval: time.Minute,
		Default:  7,
		Fetch:    func(context.Context) (string, error) { return "x", nil },
		Process:  func(old int, remote string) (int, error) { return 0, errors.New("bad payload") },
		Now:      clock.Now,
	}
	r := New(setupStore(t), cfg)
	if err := r.Reload(context.Background()); err == nil {
		t.Error("expected process error")
	}
	if got := r.Peek(); got != 7 {
		t.Errorf("value = %d, want 7", got)
	}
}
