// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bridgeboard/internal/logging"
	"github.com/tomtom215/bridgeboard/internal/orchestrator"
)

// StatusResponse is the body of /status.
type StatusResponse struct {
	Timestamp  time.Time            `json:"timestamp"`
	Ready      bool                 `json:"ready"`
	Reload     orchestrator.Status  `json:"reload"`
	Queue      map[string]int       `json:"username_queue"`
	NextReload map[string]time.Time `json:"next_reload"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Healthz reports liveness only.
func (router *Router) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz is ready once the campaign index has loaded.
func (router *Router) Readyz(w http.ResponseWriter, r *http.Request) {
	if !router.scheduler.Ready() {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Campaign index not loaded yet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Status reports the scheduler state, queue depths and upcoming reloads.
func (router *Router) Status(w http.ResponseWriter, r *http.Request) {
	now := router.now()
	resp := StatusResponse{
		Timestamp:  now,
		Ready:      router.scheduler.Ready(),
		Reload:     router.scheduler.Status(),
		Queue:      make(map[string]int),
		NextReload: make(map[string]time.Time, len(router.loops)),
	}
	if router.queue != nil {
		for tier, n := range router.queue.Depths() {
			resp.Queue[tier.String()] = n
		}
	}
	for name, loop := range router.loops {
		resp.NextReload[name] = now.Add(max(loop.TimeUntilNextReload(), 0))
	}
	respondJSON(w, http.StatusOK, resp)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Code: code, Message: message})
}
