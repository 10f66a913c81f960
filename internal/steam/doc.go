// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

/*
Package steam is the production backend for leaderboard snapshots, player
names and CDN assets.

Three upstream surfaces are used:

  - the community leaderboard pages (XML), for resolving leaderboard names to
    IDs and fetching the top entries
  - the Steam Web API ISteamUser/GetPlayerSummaries, for persona names
  - the game's CDN, for the campaign and weekly manifests and the bucket table

Client performs the HTTP calls and retries 429 and 5xx responses with
exponential backoff. BreakerClient wraps any API with a sony/gobreaker circuit
breaker and records backend call metrics. Neither applies rate limiting;
callers gate every call through a ratelimit.Limiter.

A leaderboard ID that Steam no longer serves surfaces as
leaderboard.ErrAccessDenied so the caller can drop its cached ID and resolve
the name again.
*/
package steam
