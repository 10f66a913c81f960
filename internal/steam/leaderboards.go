// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package steam

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
)

// leaderboardList is the community index of every leaderboard of a game.
type leaderboardList struct {
	Error        string `xml:"error"`
	Leaderboards []struct {
		ID   int64  `xml:"lbid"`
		Name string `xml:"name"`
	} `xml:"leaderboard"`
}

type xmlEntry struct {
	SteamID string `xml:"steamid"`
	Score   int    `xml:"score"`
	Rank    int    `xml:"rank"`
	UGCID   string `xml:"ugcid"`
	Details string `xml:"details"`
}

// entryPage is one page of a leaderboard.
type entryPage struct {
	Error        string     `xml:"error"`
	TotalEntries int        `xml:"totalLeaderboardEntries"`
	Entries      []xmlEntry `xml:"entries>entry"`
}

// ResolveLeaderboard returns the numeric ID of the named leaderboard.
func (c *Client) ResolveLeaderboard(ctx context.Context, name string) (int64, error) {
	reqURL := fmt.Sprintf("%s/stats/%d/leaderboards/?xml=1", c.communityURL, c.appID)
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return 0, fmt.Errorf("list leaderboards: %w", err)
	}

	var list leaderboardList
	if err := xml.Unmarshal(body, &list); err != nil {
		return 0, fmt.Errorf("decode leaderboard list: %w", err)
	}
	if list.Error != "" {
		return 0, fmt.Errorf("list leaderboards: %s", strings.TrimSpace(list.Error))
	}
	for _, lb := range list.Leaderboards {
		if lb.Name == name {
			return lb.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrLeaderboardNotFound, name)
}

// FetchEntries returns the first limit entries of leaderboard id in rank
// order. An ID Steam no longer serves yields leaderboard.ErrAccessDenied.
func (c *Client) FetchEntries(ctx context.Context, id int64, limit int) ([]leaderboard.RawEntry, error) {
	reqURL := fmt.Sprintf("%s/stats/%d/leaderboards/%d/?xml=1&start=1&end=%d", c.communityURL, c.appID, id, limit)
	body, err := c.get(ctx, reqURL)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && isDenied(se.StatusCode) {
			return nil, fmt.Errorf("leaderboard %d: %w", id, leaderboard.ErrAccessDenied)
		}
		return nil, fmt.Errorf("fetch leaderboard %d: %w", id, err)
	}

	var page entryPage
	if err := xml.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode leaderboard %d: %w", id, err)
	}
	if page.Error != "" {
		return nil, fmt.Errorf("leaderboard %d: %s: %w", id, strings.TrimSpace(page.Error), leaderboard.ErrAccessDenied)
	}

	slices.SortStableFunc(page.Entries, func(a, b xmlEntry) int {
		return a.Rank - b.Rank
	})

	out := make([]leaderboard.RawEntry, 0, min(len(page.Entries), limit))
	for _, e := range page.Entries {
		if len(out) == limit {
			break
		}
		scoreID := e.UGCID
		if scoreID == "" || scoreID == "-1" {
			scoreID = e.SteamID + ":" + strconv.Itoa(e.Score)
		}
		out = append(out, leaderboard.RawEntry{
			ID:       scoreID,
			OwnerID:  e.SteamID,
			Value:    e.Score,
			DidBreak: didBreak(e.Details),
		})
	}
	return out, nil
}

func isDenied(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusNotFound
}

// didBreak decodes the entry details blob. Its first little-endian int32 is
// non-zero when the bridge broke during the run.
func didBreak(details string) bool {
	raw, err := hex.DecodeString(strings.TrimSpace(details))
	if err != nil || len(raw) < 4 {
		return false
	}
	return int32(binary.LittleEndian.Uint32(raw)) != 0
}
