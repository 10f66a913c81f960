// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/bridgeboard/internal/orchestrator"
	"github.com/tomtom215/bridgeboard/internal/usernames"
)

// Scheduler is the read side of the reload orchestrator.
type Scheduler interface {
	Ready() bool
	Status() orchestrator.Status
}

// QueueDepths reports pending username lookups per tier.
type QueueDepths interface {
	Depths() map[usernames.Tier]int
}

// NextReloader reports how long until a background loop is next due.
type NextReloader interface {
	TimeUntilNextReload() time.Duration
}

// Config holds the router's rate limit.
type Config struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Router wires the ops handlers.
type Router struct {
	cfg       Config
	scheduler Scheduler
	queue     QueueDepths
	loops     map[string]NextReloader
	now       func() time.Time
}

// NewRouter creates a router. queue may be nil. loops names the background
// loops whose next run is reported by /status.
func NewRouter(cfg Config, scheduler Scheduler, queue QueueDepths, loops map[string]NextReloader) *Router {
	if cfg.RateLimitRequests <= 0 {
		cfg.RateLimitRequests = 100
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	return &Router{
		cfg:       cfg,
		scheduler: scheduler,
		queue:     queue,
		loops:     loops,
		now:       time.Now,
	}
}

// Handler builds the chi handler tree.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetrics)
	r.Use(httprate.Limit(
		router.cfg.RateLimitRequests,
		router.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimited),
	))

	r.Get("/healthz", router.Healthz)
	r.Get("/readyz", router.Readyz)
	r.Get("/status", router.Status)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
