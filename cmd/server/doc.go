// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

/*
Package main is the entry point for the Bridgeboard server.

Bridgeboard mirrors the Poly Bridge 3 Steam leaderboards into a local
BadgerDB store, keeps a history of every record, resolves player names and
computes global rankings over the mirror.

# Application Architecture

	RootSupervisor ("bridgeboard")
	├── DataSupervisor ("data-layer")
	│   └── store-gc
	├── SyncSupervisor ("sync-layer")
	│   ├── reload-manager
	│   ├── username-resolver
	│   └── global-history
	└── APISupervisor ("api-layer")
	    └── ops-http

Startup order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment variables)
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Store: BadgerDB at store.path
 4. Steam client behind a circuit breaker, with one rate limiter for
    leaderboard calls and one for name lookups
 5. Username resolver, reload orchestrator and history recorder
 6. Supervisor tree

# Signal Handling

SIGINT and SIGTERM cancel the tree. Every service gets ShutdownTimeout to
stop, then the store is closed.

# Example Usage

	export STEAM_API_KEY=...
	export BRIDGEBOARD_DATA_DIR=/var/lib/bridgeboard
	export LOG_FORMAT=console
	./bridgeboard
*/
package main
