// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

// Package usernames resolves player IDs to display names in batches,
// prioritizing players ranked higher on the mirrored boards.
package usernames

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/bridgeboard/internal/logging"
	"github.com/tomtom215/bridgeboard/internal/metrics"
	"github.com/tomtom215/bridgeboard/internal/ratelimit"
	"github.com/tomtom215/bridgeboard/internal/store"
)

// KeyPrefix prefixes stored username records.
const KeyPrefix = "user:"

// MaxBatchSize is the largest batch the lookup backend accepts.
const MaxBatchSize = 100

// Lookup resolves a batch of IDs to names. IDs the backend does not know are
// omitted from the result.
type Lookup interface {
	LookupUsers(ctx context.Context, ids []string) (map[string]string, error)
}

// Record is the stored name of one ID.
type Record struct {
	Name       string    `json:"name"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Config controls batching and refresh.
type Config struct {
	BatchSize       int
	TTL             time.Duration
	RefreshInterval time.Duration
}

// DefaultConfig matches the backend's batch limit and refreshes names
// older than 100 hours.
func DefaultConfig() Config {
	return Config{
		BatchSize:       MaxBatchSize,
		TTL:             100 * time.Hour,
		RefreshInterval: 6 * time.Hour,
	}
}

// Resolver owns the queue and the stored names.
type Resolver struct {
	store   *store.Store
	lookup  Lookup
	limiter *ratelimit.Limiter
	cfg     Config
	queue   *Queue
	now     func() time.Time

	mu          sync.Mutex
	lastRefresh time.Time
}

// NewResolver creates a resolver. Every lookup waits on limiter.
func NewResolver(st *store.Store, lookup Lookup, limiter *ratelimit.Limiter, cfg Config) *Resolver {
	if cfg.BatchSize <= 0 || cfg.BatchSize > MaxBatchSize {
		cfg.BatchSize = MaxBatchSize
	}
	r := &Resolver{
		store:   st,
		lookup:  lookup,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}
	r.queue = NewQueue(r.isFresh)
	return r
}

// Queue exposes the pending lookups.
func (r *Resolver) Queue() *Queue {
	return r.queue
}

func (r *Resolver) isFresh(id string) bool {
	var rec Record
	if err := r.store.Get(KeyPrefix+id, &rec); err != nil {
		return false
	}
	return r.now().Sub(rec.ResolvedAt) < r.cfg.TTL
}

// Name returns the stored display name of id, or "<id>" when unknown.
func (r *Resolver) Name(id string) string {
	var rec Record
	if err := r.store.Get(KeyPrefix+id, &rec); err != nil || rec.Name == "" {
		return "<" + id + ">"
	}
	return rec.Name
}

// ResolveBatch looks up one batch from the front of the queue and stores the
// results. IDs the backend omits are stored without a name so they are not
// retried before the TTL. On lookup failure the batch is requeued at
// TierRetry and the error returned.
func (r *Resolver) ResolveBatch(ctx context.Context) (int, error) {
	ids := r.queue.Drain(r.cfg.BatchSize)
	if len(ids) == 0 {
		return 0, nil
	}

	var names map[string]string
	err := r.limiter.Do(ctx, func(ctx context.Context) error {
		var err error
		names, err = r.lookup.LookupUsers(ctx, ids)
		return err
	})
	if err != nil {
		r.queue.Requeue(ids)
		metrics.UsernameBatchFailures.Inc()
		return 0, fmt.Errorf("lookup %d users: %w", len(ids), err)
	}

	now := r.now()
	err = r.store.Update(func(tx *store.Txn) error {
		for _, id := range ids {
			if err := tx.Put(KeyPrefix+id, Record{Name: names[id], ResolvedAt: now}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.queue.Requeue(ids)
		return 0, fmt.Errorf("store %d users: %w", len(ids), err)
	}

	metrics.UsernamesResolved.Add(float64(len(names)))
	logging.Ctx(ctx).Debug().Int("requested", len(ids)).Int("resolved", len(names)).Msg("Resolved username batch")
	return len(names), nil
}

// EnqueueStale queues every stored ID older than the TTL at TierRefresh.
func (r *Resolver) EnqueueStale(ctx context.Context) (int, error) {
	now := r.now()
	var stale []string
	err := r.store.ScanPrefix(ctx, KeyPrefix, func(key string, decode func(v any) error) error {
		var rec Record
		if err := decode(&rec); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("Skipping unreadable username record")
			return nil
		}
		if now.Sub(rec.ResolvedAt) >= r.cfg.TTL {
			stale = append(stale, key[len(KeyPrefix):])
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan usernames: %w", err)
	}

	n := r.queue.EnqueueAll(stale, TierRefresh)
	r.mu.Lock()
	r.lastRefresh = now
	r.mu.Unlock()
	return n, nil
}

// TimeUntilNextReload is zero while lookups are pending, otherwise the time
// until the next stale-name scan.
func (r *Resolver) TimeUntilNextReload() time.Duration {
	if r.queue.Len() > 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.RefreshInterval - r.now().Sub(r.lastRefresh)
}

// RunOnce performs whatever work is due: a stale-name scan when the refresh
// interval has passed, then one lookup batch.
func (r *Resolver) RunOnce(ctx context.Context) error {
	r.mu.Lock()
	refreshDue := r.now().Sub(r.lastRefresh) >= r.cfg.RefreshInterval
	r.mu.Unlock()

	var errs []error
	if refreshDue {
		if n, err := r.EnqueueStale(ctx); err != nil {
			errs = append(errs, err)
		} else if n > 0 {
			logging.Ctx(ctx).Info().Int("queued", n).Msg("Queued stale usernames for refresh")
		}
	}
	if _, err := r.ResolveBatch(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
