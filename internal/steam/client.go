// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package steam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/bridgeboard/internal/config"
	"github.com/tomtom215/bridgeboard/internal/logging"
)

// maxBodySize caps any single response body. The largest payload is the
// bucket table, well under this.
const maxBodySize = 32 << 20

// ErrLeaderboardNotFound is returned by ResolveLeaderboard when the game has
// no leaderboard with the requested name.
var ErrLeaderboardNotFound = errors.New("leaderboard not found")

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Client talks to the Steam community leaderboard pages, the Steam Web API
// and the game's CDN. It applies no rate limiting of its own.
type Client struct {
	appID        int
	apiKey       string
	communityURL string
	webAPIURL    string
	cdnURL       string

	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a client from the steam config section.
func NewClient(cfg *config.SteamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		appID:        cfg.AppID,
		apiKey:       cfg.APIKey,
		communityURL: strings.TrimRight(cfg.CommunityURL, "/"),
		webAPIURL:    strings.TrimRight(cfg.WebAPIURL, "/"),
		cdnURL:       strings.TrimRight(cfg.CDNURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: time.Second,
	}
}

// get performs a GET and returns the body of a 200 response. HTTP 429 and 5xx
// responses are retried with exponential backoff (1s, 2s, 4s, ...), honoring
// Retry-After when present.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
			_ = resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read response: %w", err)
			}
			return body, nil
		}
		_ = resp.Body.Close()

		lastErr = &StatusError{URL: redact(reqURL), StatusCode: resp.StatusCode}
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return nil, lastErr
		}
		if attempt == c.maxRetries {
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		logging.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Dur("delay", delay).Msg("Steam request failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("max retry attempts reached: %w", lastErr)
}

// redact strips the API key from a URL before it reaches logs or errors.
func redact(u string) string {
	i := strings.Index(u, "key=")
	if i < 0 {
		return u
	}
	end := strings.IndexByte(u[i:], '&')
	if end < 0 {
		return u[:i] + "key=REDACTED"
	}
	return u[:i] + "key=REDACTED" + u[i+end:]
}

// Download fetches a file from the game's CDN.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	body, err := c.get(ctx, c.cdnURL+"/"+strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	return body, nil
}
