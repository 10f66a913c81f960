// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/bridgeboard/internal/api"
	"github.com/tomtom215/bridgeboard/internal/config"
	"github.com/tomtom215/bridgeboard/internal/global"
	"github.com/tomtom215/bridgeboard/internal/logging"
	"github.com/tomtom215/bridgeboard/internal/orchestrator"
	"github.com/tomtom215/bridgeboard/internal/ratelimit"
	"github.com/tomtom215/bridgeboard/internal/steam"
	"github.com/tomtom215/bridgeboard/internal/store"
	"github.com/tomtom215/bridgeboard/internal/supervisor"
	"github.com/tomtom215/bridgeboard/internal/supervisor/services"
	"github.com/tomtom215/bridgeboard/internal/usernames"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Bridgeboard exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return err
	}
	logging.Init(cfg.Logging.LoggingOptions())
	logging.Info().
		Str("store_path", cfg.Store.Path).
		Int("app_id", cfg.Steam.AppID).
		Str("addr", cfg.Server.Addr).
		Msg("Configuration loaded")

	storeCfg := cfg.Store.StoreOptions()
	st, err := store.Open(&storeCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	client := steam.NewBreakerClient(steam.NewClient(&cfg.Steam))
	boardLimiter := ratelimit.New("leaderboards", cfg.Steam.RequestInterval)
	userLimiter := ratelimit.New("users", cfg.Steam.UserRequestInterval)

	resolver := usernames.NewResolver(st, client, userLimiter, usernames.Config{
		BatchSize:       cfg.Usernames.BatchSize,
		TTL:             cfg.Usernames.TTL,
		RefreshInterval: cfg.Usernames.RefreshInterval,
	})

	manager := orchestrator.NewManager(orchestrator.FromAppConfig(cfg), st, client, client, boardLimiter)
	manager.SetOwnerQueue(resolver.Queue())
	manager.SetNames(resolver)

	history := global.NewHistory(st, manager, global.HistoryConfig{
		GlobalInterval:    cfg.History.GlobalInterval,
		SumOfBestInterval: cfg.History.SumOfBestInterval,
		RankLimit:         cfg.History.GlobalRankLimit,
	})

	router := api.NewRouter(
		api.Config{
			RateLimitRequests: cfg.Server.RateLimitRequests,
			RateLimitWindow:   cfg.Server.RateLimitWindow,
		},
		manager,
		resolver.Queue(),
		map[string]api.NextReloader{
			"reload-manager":    manager,
			"username-resolver": resolver,
			"global-history":    history,
		},
	)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	tree.AddDataService(st.GCService())
	tree.AddSyncService(services.NewManagerService(manager))
	tree.AddSyncService(services.NewLoopService("username-resolver", resolver, 0, cfg.Reload.IdleWait))
	tree.AddSyncService(services.NewLoopService("global-history", history, 0, 0))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree")
	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	logging.Info().Msg("Bridgeboard stopped")
	return nil
}
