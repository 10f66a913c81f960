// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package orchestrator

import (
	"github.com/tomtom215/bridgeboard/internal/global"
	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/timeline"
)

// GlobalTimeline returns the progression of global rank-1 holders recorded
// by global.History.
func (m *Manager) GlobalTimeline(t leaderboard.Type, mode global.ScoringMode, includeTies bool) ([]timeline.GlobalGroup, error) {
	history, err := global.ReadHistory(m.store, t, mode)
	if err != nil {
		return nil, err
	}
	if m.names != nil {
		for i := range history {
			if history[i].User.DisplayName == "" {
				history[i].User.DisplayName = m.names.Name(history[i].User.ID)
			}
		}
	}
	return timeline.Global(history, includeTies), nil
}

// SumOfBestTimeline returns the improvements of a sum-of-best log. world is
// empty for every world.
func (m *Manager) SumOfBestTimeline(t leaderboard.Type, world string) ([]global.SumOfBestEntry, error) {
	history, err := global.ReadSumOfBest(m.store, t, world)
	if err != nil {
		return nil, err
	}
	return timeline.SumOfBest(history), nil
}
