// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package usernames

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/tomtom215/bridgeboard/internal/metrics"
)

// Tier is a queue priority. Lower values drain first.
type Tier int

const (
	TierRetry Tier = iota
	TierTop25
	TierTop100
	TierTop250
	TierTop1000
	TierRefresh

	numTiers
)

// Tiers lists every tier in drain order.
var Tiers = []Tier{TierRetry, TierTop25, TierTop100, TierTop250, TierTop1000, TierRefresh}

func (t Tier) String() string {
	switch t {
	case TierRetry:
		return "retry"
	case TierTop25:
		return "top25"
	case TierTop100:
		return "top100"
	case TierTop250:
		return "top250"
	case TierTop1000:
		return "top1000"
	case TierRefresh:
		return "refresh"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// TierForRank maps a board rank to its bracket tier.
func TierForRank(rank int) Tier {
	switch {
	case rank <= 25:
		return TierTop25
	case rank <= 100:
		return TierTop100
	case rank <= 250:
		return TierTop250
	default:
		return TierTop1000
	}
}

type position struct {
	tier Tier
	elem *list.Element
}

// Queue holds pending ID lookups in FIFO order per tier. An ID is queued in
// at most one tier, and enqueueing only ever moves it to a higher priority.
type Queue struct {
	mu      sync.Mutex
	tiers   [numTiers]*list.List
	index   map[string]position
	isFresh func(id string) bool
}

// NewQueue creates an empty queue. isFresh reports IDs resolved recently
// enough to skip; it may be nil.
func NewQueue(isFresh func(id string) bool) *Queue {
	q := &Queue{index: make(map[string]position), isFresh: isFresh}
	for i := range q.tiers {
		q.tiers[i] = list.New()
	}
	return q
}

// Enqueue queues id at tier and reports whether the queue changed. An ID
// already queued at the same or a higher priority is left alone. Fresh IDs
// are skipped except at TierRetry.
func (q *Queue) Enqueue(id string, tier Tier) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	changed := q.enqueue(id, tier)
	if changed {
		q.publishDepths()
	}
	return changed
}

// EnqueueAll queues every id at tier and returns how many changed.
func (q *Queue) EnqueueAll(ids []string, tier Tier) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, id := range ids {
		if q.enqueue(id, tier) {
			n++
		}
	}
	if n > 0 {
		q.publishDepths()
	}
	return n
}

func (q *Queue) enqueue(id string, tier Tier) bool {
	if tier < 0 || tier >= numTiers {
		panic(fmt.Sprintf("usernames: invalid tier %d", int(tier)))
	}
	if pos, ok := q.index[id]; ok {
		if pos.tier <= tier {
			return false
		}
		q.tiers[pos.tier].Remove(pos.elem)
	} else if tier != TierRetry && q.isFresh != nil && q.isFresh(id) {
		return false
	}
	q.index[id] = position{tier: tier, elem: q.tiers[tier].PushBack(id)}
	return true
}

// Drain removes up to n IDs, highest priority first.
func (q *Queue) Drain(n int) []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []string
	for _, l := range q.tiers {
		for len(out) < n && l.Len() > 0 {
			id := l.Remove(l.Front()).(string)
			delete(q.index, id)
			out = append(out, id)
		}
	}
	if len(out) > 0 {
		q.publishDepths()
	}
	return out
}

// Requeue puts ids back at TierRetry after a failed lookup.
func (q *Queue) Requeue(ids []string) {
	q.EnqueueAll(ids, TierRetry)
}

// Len returns the number of queued IDs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.index)
}

// TierOf returns the tier id is queued at.
func (q *Queue) TierOf(id string) (Tier, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	pos, ok := q.index[id]
	return pos.tier, ok
}

// Depths returns the number of IDs per tier.
func (q *Queue) Depths() map[Tier]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[Tier]int, numTiers)
	for i, l := range q.tiers {
		out[Tier(i)] = l.Len()
	}
	return out
}

func (q *Queue) publishDepths() {
	for i, l := range q.tiers {
		metrics.UsernameQueueDepth.WithLabelValues(Tier(i).String()).Set(float64(l.Len()))
	}
}
