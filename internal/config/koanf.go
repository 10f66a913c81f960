// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/bridgeboard/config.yaml",
	"/etc/bridgeboard/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:             "/data/bridgeboard",
			SyncWrites:       true,
			MemTableSize:     16 << 20,
			ValueLogFileSize: 64 << 20,
			NumCompactors:    2,
			Compression:      true,
			GCRatio:          0.5,
			GCInterval:       10 * time.Minute,
		},
		Steam: SteamConfig{
			AppID:               1850160, // Poly Bridge 3
			CommunityURL:        "https://steamcommunity.com",
			WebAPIURL:           "https://api.steampowered.com",
			CDNURL:              "http://dfp529wcvahka.cloudfront.net",
			RequestInterval:     time.Second,
			UserRequestInterval: time.Second,
			Timeout:             30 * time.Second,
			MaxRetries:          3,
		},
		Reload: ReloadConfig{
			CampaignIndexInterval: 24 * time.Hour,
			WeeklyIndexInterval:   time.Hour,
			LevelInterval:         8 * time.Hour,
			WeeklyLevelInterval:   time.Hour,
			IDInterval:            80 * time.Hour,
			BucketsInterval:       30 * time.Minute,
			IdleWait:              time.Minute,
		},
		History: HistoryConfig{
			OldestRankLimit:   25,
			GlobalInterval:    30 * time.Minute,
			SumOfBestInterval: 30 * time.Minute,
			GlobalRankLimit:   25,
		},
		Usernames: UsernamesConfig{
			BatchSize:       100,
			TTL:             100 * time.Hour,
			RefreshInterval: 6 * time.Hour,
		},
		Global: GlobalConfig{
			DefaultScoringMode: "rank",
		},
		Server: ServerConfig{
			Addr:              ":9090",
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
			ShutdownTimeout:   10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file and
// environment variables, in increasing priority, then validates it.
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// STEAM_API_KEY -> steam.api_key
	// BRIDGEBOARD_DATA_DIR -> store.path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names, lowercased, to koanf paths.
var envMappings = map[string]string{
	// Store
	"bridgeboard_data_dir":  "store.path",
	"badger_sync_writes":    "store.sync_writes",
	"badger_memtable_size":  "store.memtable_size",
	"badger_value_log_size": "store.value_log_file_size",
	"badger_num_compactors": "store.num_compactors",
	"badger_compression":    "store.compression",
	"badger_gc_ratio":       "store.gc_ratio",
	"badger_gc_interval":    "store.gc_interval",

	// Steam
	"steam_app_id":                "steam.app_id",
	"steam_api_key":               "steam.api_key",
	"steam_community_url":         "steam.community_url",
	"steam_webapi_url":            "steam.webapi_url",
	"steam_cdn_url":               "steam.cdn_url",
	"steam_request_interval":      "steam.request_interval",
	"steam_user_request_interval": "steam.user_request_interval",
	"steam_timeout":               "steam.timeout",
	"steam_max_retries":           "steam.max_retries",

	// Reload scheduling
	"reload_campaign_index_interval": "reload.campaign_index_interval",
	"reload_weekly_index_interval":   "reload.weekly_index_interval",
	"reload_level_interval":          "reload.level_interval",
	"reload_weekly_level_interval":   "reload.weekly_level_interval",
	"reload_id_interval":             "reload.id_interval",
	"reload_buckets_interval":        "reload.buckets_interval",
	"reload_idle_wait":               "reload.idle_wait",

	// History
	"oldest_rank_limit":            "history.oldest_rank_limit",
	"global_history_interval":      "history.global_interval",
	"sum_of_best_history_interval": "history.sum_of_best_interval",
	"global_history_rank_limit":    "history.global_rank_limit",

	// Usernames
	"username_batch_size":       "usernames.batch_size",
	"username_ttl":              "usernames.ttl",
	"username_refresh_interval": "usernames.refresh_interval",

	// Global ranking
	"default_scoring_mode": "global.default_scoring_mode",

	// Ops server
	"http_addr":               "server.addr",
	"rate_limit_requests":     "server.rate_limit_requests",
	"rate_limit_window":       "server.rate_limit_window",
	"server_shutdown_timeout": "server.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - STEAM_API_KEY -> steam.api_key
//   - BRIDGEBOARD_DATA_DIR -> store.path
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
