// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/bridgeboard/internal/global"
	"github.com/tomtom215/bridgeboard/internal/logging"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ConfigError describes one invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks struct tags first, then the rules tags cannot express.
func (c *Config) Validate() error {
	if err := c.validateTags(); err != nil {
		return err
	}

	validators := []func() error{
		c.validateSteam,
		c.validateReload,
		c.validateHistory,
		c.validateUsernames,
		c.validateGlobal,
		c.validateServer,
		c.validateStore,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}

	return c.validateLogging()
}

// validateTags runs the validate struct tags and reports the first failure.
func (c *Config) validateTags() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}
	fe := verrs[0]
	msg := "failed " + fe.Tag()
	if fe.Param() != "" {
		msg += "=" + fe.Param()
	}
	return &ConfigError{Field: fieldPath(fe.Namespace()), Message: msg}
}

// fieldPath turns "Config.Steam.AppID" into "Steam.AppID".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}

func atLeast(field string, d, minimum time.Duration) error {
	if d < minimum {
		return &ConfigError{Field: field, Message: fmt.Sprintf("must be at least %s, got %s", minimum, d)}
	}
	return nil
}

func (c *Config) validateSteam() error {
	if err := atLeast("Steam.RequestInterval", c.Steam.RequestInterval, 100*time.Millisecond); err != nil {
		return err
	}
	if err := atLeast("Steam.UserRequestInterval", c.Steam.UserRequestInterval, 100*time.Millisecond); err != nil {
		return err
	}
	return atLeast("Steam.Timeout", c.Steam.Timeout, time.Second)
}

func (c *Config) validateReload() error {
	checks := []struct {
		field string
		value time.Duration
		min   time.Duration
	}{
		{"Reload.CampaignIndexInterval", c.Reload.CampaignIndexInterval, time.Minute},
		{"Reload.WeeklyIndexInterval", c.Reload.WeeklyIndexInterval, time.Minute},
		{"Reload.LevelInterval", c.Reload.LevelInterval, time.Minute},
		{"Reload.WeeklyLevelInterval", c.Reload.WeeklyLevelInterval, time.Minute},
		{"Reload.IDInterval", c.Reload.IDInterval, time.Hour},
		{"Reload.BucketsInterval", c.Reload.BucketsInterval, time.Minute},
		{"Reload.IdleWait", c.Reload.IdleWait, time.Second},
	}
	for _, ch := range checks {
		if err := atLeast(ch.field, ch.value, ch.min); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateHistory() error {
	if err := atLeast("History.GlobalInterval", c.History.GlobalInterval, time.Minute); err != nil {
		return err
	}
	return atLeast("History.SumOfBestInterval", c.History.SumOfBestInterval, time.Minute)
}

func (c *Config) validateUsernames() error {
	if c.Usernames.TTL > 0 && c.Usernames.TTL < c.Usernames.RefreshInterval {
		return &ConfigError{Field: "Usernames.TTL", Message: "must not be shorter than Usernames.RefreshInterval"}
	}
	if err := atLeast("Usernames.TTL", c.Usernames.TTL, time.Hour); err != nil {
		return err
	}
	return atLeast("Usernames.RefreshInterval", c.Usernames.RefreshInterval, time.Minute)
}

// validateGlobal rejects unknown scoring modes before any ranking runs.
func (c *Config) validateGlobal() error {
	if _, err := global.ParseScoringMode(c.Global.DefaultScoringMode); err != nil {
		return &ConfigError{Field: "Global.DefaultScoringMode", Message: err.Error()}
	}
	return nil
}

func (c *Config) validateServer() error {
	if err := atLeast("Server.RateLimitWindow", c.Server.RateLimitWindow, time.Second); err != nil {
		return err
	}
	return atLeast("Server.ShutdownTimeout", c.Server.ShutdownTimeout, time.Second)
}

func (c *Config) validateStore() error {
	opts := c.Store.StoreOptions()
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return &ConfigError{Field: "Logging.Level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	return nil
}
