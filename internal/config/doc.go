// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

/*
Package config loads and validates Bridgeboard configuration.

Configuration is layered with Koanf v2, later layers winning:

 1. Defaults from defaultConfig()
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/bridgeboard/config.yaml or /etc/bridgeboard/config.yml
 3. Environment variables, mapped explicitly by envTransformFunc

Example config.yaml:

	store:
	  path: /data/bridgeboard
	steam:
	  api_key: XXXXXXXX
	  request_interval: 1s
	reload:
	  level_interval: 8h
	  id_interval: 80h
	history:
	  oldest_rank_limit: 25
	global:
	  default_scoring_mode: rank
	server:
	  addr: ":9090"

Validation runs in two passes. Struct tags are checked with
go-playground/validator, then semantic rules run, such as duration minimums
and parsing the default scoring mode. Failures are returned as *ConfigError
so the caller can exit before any background work starts.
*/
package config
