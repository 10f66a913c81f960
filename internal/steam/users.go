// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package steam

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// MaxUsersPerLookup is the GetPlayerSummaries batch limit.
const MaxUsersPerLookup = 100

type playerSummaries struct {
	Response struct {
		Players []struct {
			SteamID     string `json:"steamid"`
			PersonaName string `json:"personaname"`
		} `json:"players"`
	} `json:"response"`
}

// LookupUsers resolves up to MaxUsersPerLookup Steam IDs to persona names.
// IDs Steam does not return are absent from the result.
func (c *Client) LookupUsers(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	if len(ids) > MaxUsersPerLookup {
		return nil, fmt.Errorf("lookup of %d users exceeds limit of %d", len(ids), MaxUsersPerLookup)
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("steamids", strings.Join(ids, ","))
	reqURL := c.webAPIURL + "/ISteamUser/GetPlayerSummaries/v2/?" + params.Encode()

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("get player summaries: %w", err)
	}

	var summaries playerSummaries
	if err := json.Unmarshal(body, &summaries); err != nil {
		return nil, fmt.Errorf("decode player summaries: %w", err)
	}

	names := make(map[string]string, len(summaries.Response.Players))
	for _, p := range summaries.Response.Players {
		names[p.SteamID] = p.PersonaName
	}
	return names, nil
}
