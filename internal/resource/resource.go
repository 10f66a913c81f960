// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

/*
Package resource provides Resource, a value fetched from a remote source on a
fixed interval and persisted to the store so it survives restarts.

A Resource is configured by data rather than subclassed: the fetch and
process steps are plain functions. Reads never fail. When a reload cannot
fetch or process new data, the last good value is kept and the error is
reported to the caller of Reload for logging and metrics.

Usage:

	index := resource.New(st, resource.Config[[]levels.WeeklyInfo, []byte]{
		Name:     "weekly_index",
		Interval: time.Hour,
		Fetch:    func(ctx context.Context) ([]byte, error) { return cdn.Download(ctx, "manifests/weeklyChallenges.json") },
		Process:  decodeWeekly,
	})
	weeks := index.Get(ctx)
*/
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/bridgeboard/internal/logging"
	"github.com/tomtom215/bridgeboard/internal/metrics"
	"github.com/tomtom215/bridgeboard/internal/store"
)

// KeyPrefix prefixes the store key of every resource.
const KeyPrefix = "resource:"

// Config describes one remote resource.
type Config[L, R any] struct {
	// Name identifies the resource in logs, metrics and the store key.
	Name string
	// Interval is the time between reloads.
	Interval time.Duration
	// Default is served until the first successful reload.
	Default L
	// Fetch retrieves the remote representation.
	Fetch func(ctx context.Context) (R, error)
	// Process derives the new local value from the previous one and the
	// remote representation.
	Process func(old L, remote R) (L, error)
	// Now overrides the clock in tests.
	Now func() time.Time
}

type record[L any] struct {
	Value      L         `json:"value"`
	ReloadedAt time.Time `json:"reloaded_at"`
}

// Resource is a periodically refreshed, persisted value. It is safe for
// concurrent use; reloads are serialized.
type Resource[L, R any] struct {
	cfg   Config[L, R]
	store *store.Store

	mu         sync.Mutex
	loaded     bool
	value      L
	reloadedAt time.Time
}

// New creates a resource backed by st. Nothing is loaded until first use.
func New[L, R any](st *store.Store, cfg Config[L, R]) *Resource[L, R] {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Resource[L, R]{cfg: cfg, store: st}
}

// Name returns the configured name.
func (r *Resource[L, R]) Name() string {
	return r.cfg.Name
}

func (r *Resource[L, R]) key() string {
	return KeyPrefix + r.cfg.Name
}

// ensureLoaded reads the persisted value once. Malformed data is treated as
// absent. Caller must hold mu.
func (r *Resource[L, R]) ensureLoaded() {
	if r.loaded {
		return
	}
	r.loaded = true
	r.value = r.cfg.Default

	var rec record[L]
	err := r.store.Get(r.key(), &rec)
	switch {
	case err == nil:
		r.value = rec.Value
		r.reloadedAt = rec.ReloadedAt
	case errors.Is(err, store.ErrNotFound):
	default:
		logging.Warn().Err(err).Str("resource", r.cfg.Name).Msg("Discarding unreadable persisted resource")
	}
}

// Get returns the current value, reloading first if it is stale.
func (r *Resource[L, R]) Get(ctx context.Context) L {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()
	if r.timeUntilNextReload() <= 0 {
		_ = r.reload(ctx)
	}
	return r.value
}

// Peek returns the current value without triggering a reload.
func (r *Resource[L, R]) Peek() L {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()
	return r.value
}

// Reload fetches and processes the remote value now. On failure the
// previous value is kept and the error returned.
func (r *Resource[L, R]) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()
	return r.reload(ctx)
}

func (r *Resource[L, R]) reload(ctx context.Context) (err error) {
	start := r.cfg.Now()
	defer func() {
		metrics.RecordReload(r.cfg.Name, "", r.cfg.Now().Sub(start), err)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("resource", r.cfg.Name).Msg("Resource reload failed, keeping last value")
		}
	}()

	remote, err := r.cfg.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", r.cfg.Name, err)
	}
	next, err := r.cfg.Process(r.value, remote)
	if err != nil {
		return fmt.Errorf("process %s: %w", r.cfg.Name, err)
	}

	now := r.cfg.Now()
	if err := r.store.Put(r.key(), record[L]{Value: next, ReloadedAt: now}); err != nil {
		return fmt.Errorf("persist %s: %w", r.cfg.Name, err)
	}
	r.value = next
	r.reloadedAt = now

	logging.Ctx(ctx).Debug().Str("resource", r.cfg.Name).Msg("Resource reloaded")
	return nil
}

// TimeUntilNextReload is negative or zero once the value is stale.
func (r *Resource[L, R]) TimeUntilNextReload() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()
	return r.timeUntilNextReload()
}

func (r *Resource[L, R]) timeUntilNextReload() time.Duration {
	return r.cfg.Interval - r.cfg.Now().Sub(r.reloadedAt)
}

// NeedsReload reports whether the value is stale.
func (r *Resource[L, R]) NeedsReload() bool {
	return r.TimeUntilNextReload() <= 0
}

// LastReload returns when the value was last refreshed, or the zero time.
func (r *Resource[L, R]) LastReload() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()
	return r.reloadedAt
}
