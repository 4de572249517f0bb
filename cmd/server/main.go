// Package main is the entry point for item-sentinel, a scoring service for Dota 2 market
// items. It scores tracked items on a schedule, records portfolio history and serves the
// analytics over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/itemsentinel/internal/config"
	"github.com/aristath/itemsentinel/internal/di"
	herostatshandlers "github.com/aristath/itemsentinel/internal/modules/herostats/handlers"
	markethandlers "github.com/aristath/itemsentinel/internal/modules/market/handlers"
	portfoliohandlers "github.com/aristath/itemsentinel/internal/modules/portfolio/handlers"
	scoringhandlers "github.com/aristath/itemsentinel/internal/modules/scoring/handlers"
	trendhandlers "github.com/aristath/itemsentinel/internal/modules/trend/handlers"
	"github.com/aristath/itemsentinel/internal/server"
	"github.com/aristath/itemsentinel/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config failed before the log level is known
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting item-sentinel")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, jobs, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:       log,
		Databases: container.Databases(),
		Bus:       container.EventBus,
		Jobs:      container.Scheduler,
		DataDir:   cfg.DataDir,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Scoring:   scoringhandlers.NewHandlers(container.ScoringService, log),
		Trend:     trendhandlers.NewHandlers(container.TrendService, log),
		Portfolio: portfoliohandlers.NewHandler(container.PortfolioService, log),
		Market:    markethandlers.NewHandler(container.MarketRepo, log),
		HeroStats: herostatshandlers.NewHandler(container.HeroStatsRepo, cfg.DefaultRank, log),
	})

	container.Scheduler.Start()

	// Verify storage once at startup rather than waiting for the first scheduled check
	if err := container.Scheduler.RunNow(jobs.CheckDatabases); err != nil {
		log.Error().Err(err).Msg("Startup database check failed")
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
