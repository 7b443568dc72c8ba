package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"sportrate/tennis-ingestion/internal/api"
	"sportrate/tennis-ingestion/internal/app"
	"sportrate/tennis-ingestion/internal/config"
	"sportrate/tennis-ingestion/internal/metrics"
	"sportrate/tennis-ingestion/internal/models"
	"sportrate/tennis-ingestion/internal/scheduler"
)

const statsInterval = 30 * time.Second

func main() {
	app.SetupLogger()

	log.Info().Msg("Starting tennis ingestion server")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()
	log.Info().Msg("Database connection established")

	sched := scheduler.NewScheduler(cfg.ImportCron, a.Importer, func(ctx context.Context) error {
		count, err := a.DB.Matches.Count(ctx, models.SportTennis)
		if err != nil {
			return err
		}
		metrics.UpdateMatchesStored(count)
		a.DB.PoolStats()
		if st, err := a.Quota.Status(ctx); err == nil {
			metrics.UpdateQuota(st.Used, st.Remaining)
		}
		return nil
	}, statsInterval)

	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: api.NewRouter(a.Importer, a.DB, api.RouterConfig{
			OperatorToken:    cfg.OperatorToken,
			CORSAllowOrigins: cfg.CORSAllowOrigins,
			EnableMetrics:    cfg.EnableMetrics,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		// imports page through the provider; allow for a slow upstream
		WriteTimeout: 2*cfg.TennisAPITimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			cancel()
		}
	}()

	// Keep running until context is cancelled
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Server shutdown complete")
}
