// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

/*
Package api serves the operational HTTP endpoints.

	GET /healthz   process is up
	GET /readyz    503 until the campaign index has loaded once
	GET /metrics   Prometheus exposition
	GET /status    reload state counts, username queue depths, next reloads

Every route is rate limited per client IP with go-chi/httprate. Requests
carry a correlation ID, taken from X-Request-ID when the caller sends one,
so handler logs can be joined with the caller's.
*/
package api
