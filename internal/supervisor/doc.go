// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

/*
Package supervisor runs the long-lived parts of Bridgeboard under a suture v4
supervisor tree.

# Overview

Services are grouped into three layers so that one layer can crash and
restart without taking the others down:

	RootSupervisor ("bridgeboard")
	├── DataSupervisor ("data-layer")
	│   └── store GC
	├── SyncSupervisor ("sync-layer")
	│   ├── ManagerService (reload orchestrator)
	│   ├── LoopService "username-resolver"
	│   └── LoopService "global-history"
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (ops endpoints)

# Usage

	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(st.GCService())
	tree.AddSyncService(services.NewManagerService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, timeout))

	if err := tree.Serve(ctx); err != nil {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

# Failure Handling

Each failure increments a counter that decays over FailureDecay seconds.
Once the counter exceeds FailureThreshold the supervisor waits
FailureBackoff before the next restart. The defaults are suture's own:
5 failures, 30 seconds decay, 15 seconds backoff and a 10 second shutdown
timeout.

A service that returns nil is not restarted. Returning an error restarts
it. Services must return promptly once their context is canceled.

# Debugging Shutdown Issues

UnstoppedServiceReport lists services that did not stop within
ShutdownTimeout, usually because a backend call ignored its context.

# See Also

  - internal/supervisor/services: Service wrappers
  - github.com/thejerf/suture/v4: Underlying library
*/
package supervisor
