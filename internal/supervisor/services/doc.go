// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

/*
Package services adapts Bridgeboard components to suture.Service.

# Available Services

ManagerService wraps the reload orchestrator's Start/Stop lifecycle.

LoopService drives anything with RunOnce and TimeUntilNextReload: the
username resolver and the global history recorder. It sleeps until the
runner is due again, clamped to [minWait, maxWait].

HTTPServerService wraps *http.Server, translating ListenAndServe and
Shutdown into Serve.

# Error Handling

	nil         -> stopped cleanly, not restarted
	error       -> crashed, restarted by the supervisor
	ctx.Err()   -> shutdown requested

Every wrapper implements fmt.Stringer; suture uses the name in its log
events.
*/
package services
