// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package store

import (
	"context"
	"time"

	"github.com/tomtom215/bridgeboard/internal/logging"
	"github.com/tomtom215/bridgeboard/internal/metrics"
)

// GCService periodically reclaims value log space. It implements
// suture.Service.
type GCService struct {
	store    *Store
	interval time.Duration
}

// GCService returns a service running RunGC every GCInterval.
func (s *Store) GCService() *GCService {
	interval := s.config.GCInterval
	if interval <= 0 {
		interval = DefaultConfig().GCInterval
	}
	return &GCService{store: s, interval: interval}
}

// Serve runs until ctx is canceled. A failed pass is logged, not returned:
// the next tick retries it.
func (g *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			err := g.store.RunGC()
			metrics.RecordStoreGC(err)
			if err != nil {
				logging.Error().Err(err).Msg("Store GC failed")
				continue
			}
			logging.Debug().Dur("took", time.Since(start)).Msg("Store GC pass complete")
		}
	}
}

// String implements fmt.Stringer for logging.
func (g *GCService) String() string {
	return "store-gc"
}
