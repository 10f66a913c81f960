// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

/*
Package orchestrator keeps the local leaderboard mirror up to date.

The Manager tracks one state machine per (level, board type):

	Fresh -> NeedsReload -> Reloading -> Fresh
	                             \-----> Failed -> Reloading

A board becomes NeedsReload once its reload interval has elapsed since the
last successful commit. Failed boards are retried after IdleWait. Every
backend call, including leaderboard ID resolution, passes through a single
ratelimit.Limiter, and reloads run one at a time.

Leaderboard IDs are cached in the store under "lbid:<name>" for IDInterval.
A stale cached ID is dropped and resolved again before the fetch, so a stale
entry costs exactly one extra limited call. When the backend answers a fetch
with leaderboard.ErrAccessDenied the cached ID is deleted and the board is
marked Failed; the next attempt resolves a fresh ID.

Each board is committed together with its history log and last-reload time
in one store transaction:

	<level key>:<type>              leaderboard.Board
	<level key>:<type>:history      []leaderboard.HistoryEntry (campaign only)
	<level key>:<type>:last_reload  time.Time

Level manifests and the percentile bucket table are resource.Resource values
refreshed by the same scheduling pass.

Read methods serve committed data. Boards reloads stale boards synchronously
before reading; every other read is side-effect free.
*/
package orchestrator
