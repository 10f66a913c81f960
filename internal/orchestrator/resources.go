// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bridgeboard/internal/buckets"
	"github.com/tomtom215/bridgeboard/internal/levels"
	"github.com/tomtom215/bridgeboard/internal/resource"
	"github.com/tomtom215/bridgeboard/internal/store"
)

// CDN paths of the remote resources.
const (
	CampaignManifestPath = "manifests/campaign.json"
	WeeklyManifestPath   = "manifests/weeklyChallenges.json"
	BucketsPath          = "buckets/campaign.bin"
)

// Resource names, used in store keys, logs and metrics.
const (
	campaignIndexName = "campaign_index"
	weeklyIndexName   = "weekly_index"
	bucketsName       = "buckets"
)

// reloadable is the scheduling view of a resource.Resource.
type reloadable interface {
	Name() string
	Reload(ctx context.Context) error
	TimeUntilNextReload() time.Duration
	LastReload() time.Time
}

func download(cdn CDN, path string) func(ctx context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		return cdn.Download(ctx, path)
	}
}

func newCampaignIndex(st *store.Store, cdn CDN, interval time.Duration, now func() time.Time) *resource.Resource[[]levels.CampaignInfo, []byte] {
	return resource.New(st, resource.Config[[]levels.CampaignInfo, []byte]{
		Name:     campaignIndexName,
		Interval: interval,
		Fetch:    download(cdn, CampaignManifestPath),
		Process:  decodeCampaignIndex,
		Now:      now,
	})
}

func newWeeklyIndex(st *store.Store, cdn CDN, interval time.Duration, now func() time.Time) *resource.Resource[[]levels.WeeklyInfo, []byte] {
	return resource.New(st, resource.Config[[]levels.WeeklyInfo, []byte]{
		Name:     weeklyIndexName,
		Interval: interval,
		Fetch:    download(cdn, WeeklyManifestPath),
		Process:  decodeWeeklyIndex,
		Now:      now,
	})
}

func newBucketTable(st *store.Store, cdn CDN, interval time.Duration, now func() time.Time) *resource.Resource[buckets.Table, []byte] {
	return resource.New(st, resource.Config[buckets.Table, []byte]{
		Name:     bucketsName,
		Interval: interval,
		Fetch:    download(cdn, BucketsPath),
		Process: func(_ buckets.Table, remote []byte) (buckets.Table, error) {
			return buckets.Decode(remote)
		},
		Now: now,
	})
}

// decodeCampaignIndex parses the campaign manifest. Level codes are
// validated while decoding, so an unknown world rejects the whole manifest
// and the previous index is kept.
func decodeCampaignIndex(_ []levels.CampaignInfo, remote []byte) ([]levels.CampaignInfo, error) {
	var infos []levels.CampaignInfo
	if err := json.Unmarshal(remote, &infos); err != nil {
		return nil, fmt.Errorf("decode campaign manifest: %w", err)
	}
	seen := make(map[string]bool, len(infos))
	for i, info := range infos {
		if info.ID == "" {
			return nil, fmt.Errorf("campaign manifest entry %d has no id", i)
		}
		if seen[info.ID] {
			return nil, fmt.Errorf("campaign manifest lists %s twice", info.ID)
		}
		seen[info.ID] = true
	}
	return infos, nil
}

func decodeWeeklyIndex(_ []levels.WeeklyInfo, remote []byte) ([]levels.WeeklyInfo, error) {
	var infos []levels.WeeklyInfo
	if err := json.Unmarshal(remote, &infos); err != nil {
		return nil, fmt.Errorf("decode weekly manifest: %w", err)
	}
	seen := make(map[string]bool, len(infos))
	for i, info := range infos {
		if info.ID == "" {
			return nil, fmt.Errorf("weekly manifest entry %d has no id", i)
		}
		if seen[info.ID] {
			return nil, fmt.Errorf("weekly manifest lists %s twice", info.ID)
		}
		seen[info.ID] = true
	}
	return infos, nil
}
