// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/bridgeboard/internal/buckets"
	"github.com/tomtom215/bridgeboard/internal/config"
	"github.com/tomtom215/bridgeboard/internal/global"
	"github.com/tomtom215/bridgeboard/internal/leaderboard"
	"github.com/tomtom215/bridgeboard/internal/levels"
	"github.com/tomtom215/bridgeboard/internal/logging"
	"github.com/tomtom215/bridgeboard/internal/metrics"
	"github.com/tomtom215/bridgeboard/internal/ratelimit"
	"github.com/tomtom215/bridgeboard/internal/resource"
	"github.com/tomtom215/bridgeboard/internal/store"
	"github.com/tomtom215/bridgeboard/internal/usernames"
)

// Backend is the remote leaderboard service.
type Backend interface {
	ResolveLeaderboard(ctx context.Context, name string) (int64, error)
	FetchEntries(ctx context.Context, id int64, limit int) ([]leaderboard.RawEntry, error)
}

// CDN serves the level manifests and the bucket table.
type CDN interface {
	Download(ctx context.Context, path string) ([]byte, error)
}

// OwnerQueue receives the owners of every reloaded board for name
// resolution.
type OwnerQueue interface {
	Enqueue(id string, tier usernames.Tier) bool
}

// Names maps user IDs to display names.
type Names interface {
	Name(id string) string
}

// Config controls reload scheduling.
type Config struct {
	CampaignIndexInterval time.Duration
	WeeklyIndexInterval   time.Duration
	BucketsInterval       time.Duration
	LevelInterval         time.Duration
	WeeklyLevelInterval   time.Duration
	IDInterval            time.Duration
	// IdleWait is the longest the loop sleeps between passes, and the retry
	// delay for failed boards and resources.
	IdleWait time.Duration
	// OldestRankLimit is the rank window tracked by history logs.
	OldestRankLimit int
	// ProfileMode scores the global positions shown on profiles.
	ProfileMode global.ScoringMode
}

// DefaultConfig returns the production schedule.
func DefaultConfig() Config {
	return Config{
		CampaignIndexInterval: 24 * time.Hour,
		WeeklyIndexInterval:   time.Hour,
		BucketsInterval:       30 * time.Minute,
		LevelInterval:         8 * time.Hour,
		WeeklyLevelInterval:   time.Hour,
		IDInterval:            80 * time.Hour,
		IdleWait:              time.Minute,
		OldestRankLimit:       leaderboard.OldestRankLimit,
		ProfileMode:           global.ModeRank,
	}
}

// FromAppConfig extracts the orchestrator settings from the application
// config.
func FromAppConfig(cfg *config.Config) Config {
	// Validate has already rejected unknown modes.
	mode, _ := global.ParseScoringMode(cfg.Global.DefaultScoringMode)
	return Config{
		CampaignIndexInterval: cfg.Reload.CampaignIndexInterval,
		WeeklyIndexInterval:   cfg.Reload.WeeklyIndexInterval,
		BucketsInterval:       cfg.Reload.BucketsInterval,
		LevelInterval:         cfg.Reload.LevelInterval,
		WeeklyLevelInterval:   cfg.Reload.WeeklyLevelInterval,
		IDInterval:            cfg.Reload.IDInterval,
		IdleWait:              cfg.Reload.IdleWait,
		OldestRankLimit:       cfg.History.OldestRankLimit,
		ProfileMode:           mode,
	}
}

// minLoopWait keeps a pass that found overdue work from spinning.
const minLoopWait = time.Second

// Manager owns the leaderboard mirror: it schedules reloads, commits boards
// with their history and serves the committed data.
type Manager struct {
	cfg     Config
	store   *store.Store
	backend Backend
	limiter *ratelimit.Limiter
	queue   OwnerQueue
	names   Names
	events  *logging.ReloadLogger
	now     func() time.Time

	campaignIndex *resource.Resource[[]levels.CampaignInfo, []byte]
	weeklyIndex   *resource.Resource[[]levels.WeeklyInfo, []byte]
	bucketTable   *resource.Resource[buckets.Table, []byte]
	resources     []reloadable

	// reloadMu serializes reload passes and stale-on-read reloads.
	reloadMu sync.Mutex

	mu               sync.RWMutex
	boards           map[string]*boardState
	resourceFailedAt map[string]time.Time
	lastCycle        time.Time
	campaignLoaded   bool
	running          bool
	stopChan         chan struct{}
	wg               sync.WaitGroup
}

// NewManager creates a manager. Every backend call is gated by limiter.
// CDN downloads are not.
func NewManager(cfg Config, st *store.Store, backend Backend, cdn CDN, limiter *ratelimit.Limiter) *Manager {
	m := &Manager{
		cfg:              cfg,
		store:            st,
		backend:          backend,
		limiter:          limiter,
		events:           logging.NewReloadLogger(),
		now:              time.Now,
		boards:           make(map[string]*boardState),
		resourceFailedAt: make(map[string]time.Time),
		stopChan:         make(chan struct{}),
	}
	clock := func() time.Time { return m.now() }
	m.campaignIndex = newCampaignIndex(st, cdn, cfg.CampaignIndexInterval, clock)
	m.weeklyIndex = newWeeklyIndex(st, cdn, cfg.WeeklyIndexInterval, clock)
	m.bucketTable = newBucketTable(st, cdn, cfg.BucketsInterval, clock)
	m.resources = []reloadable{m.campaignIndex, m.weeklyIndex, m.bucketTable}
	return m
}

// SetOwnerQueue sets where board owners are enqueued for name resolution.
func (m *Manager) SetOwnerQueue(q OwnerQueue) {
	m.queue = q
}

// SetNames sets the display name source for read results.
func (m *Manager) SetNames(n Names) {
	m.names = n
}

// Start begins the background reload loop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("orchestrator is already running")
	}
	m.running = true
	m.stopChan = make(chan struct{})
	m.mu.Unlock()

	logging.Info().Msg("Starting leaderboard orchestrator...")

	m.wg.Add(1)
	go m.reloadLoop(ctx)
	return nil
}

// Stop halts the loop and waits for an in-flight pass to finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("orchestrator is not running")
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	logging.Info().Msg("Stopping leaderboard orchestrator...")
	m.wg.Wait()
	logging.Info().Msg("Leaderboard orchestrator stopped")
	return nil
}

func (m *Manager) reloadLoop(ctx context.Context) {
	defer m.wg.Done()

	m.mu.RLock()
	stop := m.stopChan
	m.mu.RUnlock()

	for {
		m.MaybeReload(ctx)

		wait := m.TimeUntilNextReload()
		if wait < minLoopWait {
			wait = minLoopWait
		}
		if wait > m.cfg.IdleWait {
			wait = m.cfg.IdleWait
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// CycleResult summarizes one scheduling pass.
type CycleResult struct {
	Reloaded int
	Failed   int
}

// MaybeReload refreshes stale resources and then reloads every due board,
// one at a time. Failures are logged and counted; they never abort the pass.
func (m *Manager) MaybeReload(ctx context.Context) CycleResult {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	ctx = logging.ContextWithNewCorrelationID(ctx)
	start := m.now()

	m.reloadResources(ctx)
	m.track(m.peekLevels())

	due := m.dueBoards(m.now())
	m.events.LogCycleStarted(ctx, len(due))

	var res CycleResult
	for _, b := range due {
		if ctx.Err() != nil {
			break
		}
		if err := m.reloadBoard(ctx, b); err != nil {
			res.Failed++
		} else {
			res.Reloaded++
		}
	}

	took := m.now().Sub(start)
	m.mu.Lock()
	m.lastCycle = m.now()
	m.mu.Unlock()
	m.publishStates()
	metrics.ReloadCycleDuration.Observe(took.Seconds())
	m.events.LogCycleFinished(ctx, res.Reloaded, res.Failed, took)
	return res
}

// reloadResources reloads every stale resource. A failed resource is not
// retried before IdleWait has passed. Caller must hold reloadMu.
func (m *Manager) reloadResources(ctx context.Context) {
	for _, r := range m.resources {
		if m.resourceWait(r) > 0 {
			continue
		}
		err := r.Reload(ctx)

		m.mu.Lock()
		if err != nil {
			m.resourceFailedAt[r.Name()] = m.now()
		} else {
			delete(m.resourceFailedAt, r.Name())
			if r.Name() == campaignIndexName {
				m.campaignLoaded = true
			}
		}
		m.mu.Unlock()
	}
}

func (m *Manager) resourceWait(r reloadable) time.Duration {
	m.mu.RLock()
	failedAt, failed := m.resourceFailedAt[r.Name()]
	m.mu.RUnlock()
	if failed {
		if retry := m.cfg.IdleWait - m.now().Sub(failedAt); retry > 0 {
			return retry
		}
	}
	return r.TimeUntilNextReload()
}

// peekLevels lists the indexed levels without reloading the indexes.
func (m *Manager) peekLevels() []levels.Level {
	return indexLevels(m.campaignIndex.Peek(), m.weeklyIndex.Peek())
}

func indexLevels(campaign []levels.CampaignInfo, weekly []levels.WeeklyInfo) []levels.Level {
	out := make([]levels.Level, 0, len(campaign)+len(weekly))
	for _, info := range campaign {
		out = append(out, levels.Campaign(info))
	}
	for _, info := range weekly {
		out = append(out, levels.Weekly(info))
	}
	return out
}

// track replaces the tracked set with the boards of all. Existing state is
// kept for boards still present; new boards start from the last-reload time
// persisted in the store.
func (m *Manager) track(all []levels.Level) {
	next := make(map[string]*boardState)
	for _, level := range all {
		for _, t := range level.Types() {
			key := boardKey(level, t)
			m.mu.RLock()
			b, ok := m.boards[key]
			m.mu.RUnlock()
			if !ok {
				b = m.loadBoardState(level, t)
			}
			m.mu.Lock()
			b.level = level
			m.mu.Unlock()
			next[key] = b
		}
	}

	m.mu.Lock()
	m.boards = next
	m.mu.Unlock()
}

func (m *Manager) loadBoardState(level levels.Level, t leaderboard.Type) *boardState {
	b := &boardState{level: level, typ: t, state: StateNeedsReload}
	var last time.Time
	if err := m.store.Get(lastReloadKey(level, t), &last); err == nil {
		b.lastReload = last
	}
	if b.timeUntilDue(m.now(), m.interval(level), m.cfg.IdleWait) > 0 {
		b.state = StateFresh
	}
	return b
}

// boardState returns the tracked state of a board, creating an untracked
// one for levels missing from the indexes.
func (m *Manager) boardState(level levels.Level, t leaderboard.Type) *boardState {
	m.mu.RLock()
	b, ok := m.boards[boardKey(level, t)]
	m.mu.RUnlock()
	if ok {
		return b
	}
	return m.loadBoardState(level, t)
}

func (m *Manager) interval(level levels.Level) time.Duration {
	if level.Kind == levels.KindWeekly {
		return m.cfg.WeeklyLevelInterval
	}
	return m.cfg.LevelInterval
}

// dueBoards marks and returns every board that should be reloaded, oldest
// first.
func (m *Manager) dueBoards(now time.Time) []*boardState {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*boardState
	for _, b := range m.boards {
		if b.timeUntilDue(now, m.interval(b.level), m.cfg.IdleWait) > 0 {
			continue
		}
		if b.state == StateFresh {
			b.state = StateNeedsReload
		}
		due = append(due, b)
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].lastReload.Equal(due[j].lastReload) {
			return due[i].lastReload.Before(due[j].lastReload)
		}
		return boardKey(due[i].level, due[i].typ) < boardKey(due[j].level, due[j].typ)
	})
	return due
}

// TimeUntilNextReload is the time until the next board or resource is due.
// It is zero or negative when work is overdue.
func (m *Manager) TimeUntilNextReload() time.Duration {
	next := m.cfg.IdleWait
	for _, r := range m.resources {
		if d := m.resourceWait(r); d < next {
			next = d
		}
	}

	now := m.now()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.boards {
		if d := b.timeUntilDue(now, m.interval(b.level), m.cfg.IdleWait); d < next {
			next = d
		}
	}
	return next
}

// StateCounts returns the number of tracked boards in each state.
func (m *Manager) StateCounts() map[string]int {
	counts := make(map[string]int, len(States))
	for _, s := range States {
		counts[s.String()] = 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.boards {
		counts[b.state.String()]++
	}
	return counts
}

func (m *Manager) publishStates() {
	metrics.SetLevelStates(m.StateCounts())
}

// Ready reports whether the campaign index has been loaded at least once,
// in this process or a previous one.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	loaded := m.campaignLoaded
	m.mu.RUnlock()
	return loaded || !m.campaignIndex.LastReload().IsZero()
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	States     map[string]int       `json:"states"`
	Tracked    int                  `json:"tracked"`
	LastCycle  time.Time            `json:"last_cycle"`
	NextReload time.Time            `json:"next_reload"`
	Resources  map[string]time.Time `json:"resources"`
}

// Status reports board state counts and the next scheduled reload.
func (m *Manager) Status() Status {
	st := Status{
		States:     m.StateCounts(),
		NextReload: m.now().Add(m.TimeUntilNextReload()),
		Resources:  make(map[string]time.Time, len(m.resources)),
	}
	for _, r := range m.resources {
		st.Resources[r.Name()] = r.LastReload()
	}
	m.mu.RLock()
	st.Tracked = len(m.boards)
	st.LastCycle = m.lastCycle
	m.mu.RUnlock()
	return st
}
