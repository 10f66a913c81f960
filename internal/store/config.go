// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

// Package store provides the persistent key-value store backing every
// leaderboard, history log, ID cache entry and resolved username.
//
// Values are JSON documents stored in BadgerDB. A leaderboard and its history
// log are always written in the same transaction, so a reader never observes
// one without the other.
package store

import (
	"fmt"
	"time"
)

// Config holds BadgerDB tuning for the store.
type Config struct {
	// Path is the directory where BadgerDB keeps its files.
	Path string

	// SyncWrites forces fsync after every commit.
	SyncWrites bool

	// MemTableSize is the size of each memtable in bytes.
	MemTableSize int64

	// ValueLogFileSize is the size of each value log file in bytes.
	ValueLogFileSize int64

	// NumCompactors is the number of compaction workers (BadgerDB minimum: 2).
	NumCompactors int

	// Compression enables Snappy compression of values.
	Compression bool

	// GCRatio is the discard ratio passed to RunValueLogGC.
	GCRatio float64

	// GCInterval is how often the value log GC service runs.
	GCInterval time.Duration

	// CloseTimeout bounds how long Close waits for BadgerDB.
	CloseTimeout time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Path:             "/data/bridgeboard",
		SyncWrites:       true,
		MemTableSize:     16 * 1024 * 1024,
		ValueLogFileSize: 64 * 1024 * 1024,
		NumCompactors:    2,
		Compression:      true,
		GCRatio:          0.5,
		GCInterval:       10 * time.Minute,
		CloseTimeout:     30 * time.Second,
	}
}

// ConfigError describes an invalid store setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("store config %s: %s", e.Field, e.Message)
}

// Validate checks the configuration against BadgerDB's requirements.
func (c *Config) Validate() error {
	if c.Path == "" {
		return &ConfigError{Field: "Path", Message: "must not be empty"}
	}
	if c.MemTableSize < 1024*1024 {
		return &ConfigError{Field: "MemTableSize", Message: "must be at least 1MB"}
	}
	if c.ValueLogFileSize < 1024*1024 {
		return &ConfigError{Field: "ValueLogFileSize", Message: "must be at least 1MB"}
	}
	if c.NumCompactors < 2 {
		return &ConfigError{Field: "NumCompactors", Message: "must be at least 2"}
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return &ConfigError{Field: "GCRatio", Message: "must be between 0 and 1 exclusive"}
	}
	if c.GCInterval < time.Minute {
		return &ConfigError{Field: "GCInterval", Message: "must be at least 1m"}
	}
	return nil
}
