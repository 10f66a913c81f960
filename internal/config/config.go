// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package config

import (
	"time"

	"github.com/tomtom215/bridgeboard/internal/logging"
	"github.com/tomtom215/bridgeboard/internal/store"
)

// Config holds all application configuration
type Config struct {
	Store     StoreConfig     `koanf:"store"`
	Steam     SteamConfig     `koanf:"steam"`
	Reload    ReloadConfig    `koanf:"reload"`
	History   HistoryConfig   `koanf:"history"`
	Usernames UsernamesConfig `koanf:"usernames"`
	Global    GlobalConfig    `koanf:"global"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// StoreConfig holds BadgerDB settings
type StoreConfig struct {
	Path             string        `koanf:"path" validate:"required"`
	SyncWrites       bool          `koanf:"sync_writes"`
	MemTableSize     int64         `koanf:"memtable_size" validate:"min=1048576"`
	ValueLogFileSize int64         `koanf:"value_log_file_size" validate:"min=1048576"`
	NumCompactors    int           `koanf:"num_compactors" validate:"min=2"`
	Compression      bool          `koanf:"compression"`
	GCRatio          float64       `koanf:"gc_ratio" validate:"gt=0,lt=1"`
	GCInterval       time.Duration `koanf:"gc_interval"`
}

// StoreOptions converts the section into store.Config.
func (s StoreConfig) StoreOptions() store.Config {
	cfg := store.DefaultConfig()
	cfg.Path = s.Path
	cfg.SyncWrites = s.SyncWrites
	cfg.MemTableSize = s.MemTableSize
	cfg.ValueLogFileSize = s.ValueLogFileSize
	cfg.NumCompactors = s.NumCompactors
	cfg.Compression = s.Compression
	cfg.GCRatio = s.GCRatio
	cfg.GCInterval = s.GCInterval
	return cfg
}

// SteamConfig holds the upstream endpoints and request pacing
type SteamConfig struct {
	AppID        int    `koanf:"app_id" validate:"required,min=1"`
	APIKey       string `koanf:"api_key"`
	CommunityURL string `koanf:"community_url" validate:"required,url"`
	WebAPIURL    string `koanf:"webapi_url" validate:"required,url"`
	CDNURL       string `koanf:"cdn_url" validate:"required,url"`

	// RequestInterval spaces leaderboard calls; UserRequestInterval spaces
	// name lookups.
	RequestInterval     time.Duration `koanf:"request_interval"`
	UserRequestInterval time.Duration `koanf:"user_request_interval"`
	Timeout             time.Duration `koanf:"timeout"`
	MaxRetries          int           `koanf:"max_retries" validate:"min=0,max=10"`
}

// ReloadConfig holds refresh intervals for every mirrored resource
type ReloadConfig struct {
	CampaignIndexInterval time.Duration `koanf:"campaign_index_interval"`
	WeeklyIndexInterval   time.Duration `koanf:"weekly_index_interval"`
	LevelInterval         time.Duration `koanf:"level_interval"`
	WeeklyLevelInterval   time.Duration `koanf:"weekly_level_interval"`
	IDInterval            time.Duration `koanf:"id_interval"`
	BucketsInterval       time.Duration `koanf:"buckets_interval"`
	IdleWait              time.Duration `koanf:"idle_wait"`
}

// HistoryConfig holds history tracking settings
type HistoryConfig struct {
	OldestRankLimit   int           `koanf:"oldest_rank_limit" validate:"min=1,max=1000"`
	GlobalInterval    time.Duration `koanf:"global_interval"`
	SumOfBestInterval time.Duration `koanf:"sum_of_best_interval"`
	GlobalRankLimit   int           `koanf:"global_rank_limit" validate:"min=1"`
}

// UsernamesConfig holds username resolution settings
type UsernamesConfig struct {
	BatchSize       int           `koanf:"batch_size" validate:"min=1,max=100"`
	TTL             time.Duration `koanf:"ttl"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// GlobalConfig holds global ranking defaults
type GlobalConfig struct {
	DefaultScoringMode string `koanf:"default_scoring_mode" validate:"required"`
}

// ServerConfig holds the ops HTTP server settings
type ServerConfig struct {
	Addr              string        `koanf:"addr" validate:"required"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// LoggingOptions converts the section into logging.Config.
func (l LoggingConfig) LoggingOptions() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}
