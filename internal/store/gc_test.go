// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGCServiceRunsUntilCanceled(t *testing.T) {
	t.Parallel()
	s := setupStore(t)
	s.config.GCInterval = 5 * time.Millisecond

	svc := s.GCService()
	if svc.String() != "store-gc" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v, want deadline exceeded", err)
	}
}

func TestGCServiceDefaultInterval(t *testing.T) {
	t.Parallel()
	s := setupStore(t)
	s.config.GCInterval = 0
	if got := s.GCService().interval; got != DefaultConfig().GCInterval {
		t.Errorf("interval = %v, want default", got)
	}
}
