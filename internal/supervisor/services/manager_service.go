// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package services

import (
	"context"
	"fmt"
)

// StartStopManager is the lifecycle of the reload orchestrator.
//
// Satisfied by *orchestrator.Manager:
//   - Start(ctx context.Context) error
//   - Stop() error
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// ManagerService wraps the reload orchestrator as a supervised service.
//
// It adapts the Start/Stop lifecycle to suture's Serve pattern:
//  1. Calls Start(ctx), which spawns the reload loop
//  2. Waits for context cancellation
//  3. Calls Stop(), which waits for an in-flight reload to finish
type ManagerService struct {
	manager StartStopManager
	name    string
}

// NewManagerService creates a new orchestrator service wrapper.
func NewManagerService(manager StartStopManager) *ManagerService {
	return &ManagerService{
		manager: manager,
		name:    "reload-manager",
	}
}

// Serve implements suture.Service. A failed Start is returned so suture
// restarts the service under its backoff policy.
func (s *ManagerService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("reload manager start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("reload manager stop failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *ManagerService) String() string {
	return s.name
}
