// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

// Command server runs the DermaRec recommendation service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lunara-health/dermarec/internal/api"
	"github.com/lunara-health/dermarec/internal/catalog"
	"github.com/lunara-health/dermarec/internal/config"
	"github.com/lunara-health/dermarec/internal/logging"
	"github.com/lunara-health/dermarec/internal/metrics"
	"github.com/lunara-health/dermarec/internal/ranking"
	"github.com/lunara-health/dermarec/internal/recommend"
	"github.com/lunara-health/dermarec/internal/rules"
	"github.com/lunara-health/dermarec/internal/supervisor"
	"github.com/lunara-health/dermarec/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("rules_path", cfg.Rules.Path).
		Msg("Starting DermaRec")

	store := rules.NewStore(logger)
	if err := loadInitialRules(store, cfg.Rules.Path); err != nil {
		return err
	}

	var resolver catalog.Resolver
	if cfg.Catalog.URL != "" {
		resolver = catalog.NewClient(cfg.Catalog, logger)
	} else {
		logger.Info().Msg("Catalog service not configured, requests must supply candidates")
	}

	var feedback catalog.FeedbackProvider
	if cfg.Feedback.URL != "" {
		feedback = catalog.NewFeedbackClient(cfg.Feedback, logger)
	} else {
		logger.Info().Msg("Feedback service not configured, scoring with neutral feedback")
	}

	rankCfg, err := ranking.ConfigFromApp(cfg.Ranking)
	if err != nil {
		return fmt.Errorf("invalid ranking configuration: %w", err)
	}
	ranker, err := ranking.NewRanker(rankCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create ranker: %w", err)
	}

	engine := recommend.NewEngine(store, resolver, feedback, ranker, logger)
	handler := api.NewHandler(engine, store)
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
	if err := tree.Serve(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("supervisor exited: %w", err)
	}

	logger.Info().Msg("Shutdown complete")
	return nil
}

// loadInitialRules loads the startup rule document. A missing file is not
// fatal: the service starts degraded and reports waiting_for_rules until an
// admin reloads, matching the all-or-nothing reload contract.
func loadInitialRules(store *rules.Store, path string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn().Str("path", path).Msg("Rule document not found, starting without rules")
			return nil
		}
		return fmt.Errorf("failed to read rule document %s: %w", path, err)
	}

	count, err := store.Load(doc)
	snap := store.Current()
	var version int64
	if snap != nil {
		version = snap.Version()
	}
	metrics.RecordReload(count, version, err)
	if err != nil {
		return fmt.Errorf("failed to load rule document %s: %w", path, err)
	}

	logging.Info().Int("rules", count).Str("path", path).Msg("Rule document loaded")
	return nil
}
