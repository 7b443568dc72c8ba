// Package app wires configuration into the running pieces shared by the
// server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sportrate/tennis-ingestion/internal/client"
	"sportrate/tennis-ingestion/internal/config"
	"sportrate/tennis-ingestion/internal/ingest"
	"sportrate/tennis-ingestion/internal/quota"
	"sportrate/tennis-ingestion/internal/repository"
)

// App holds the long-lived dependencies
type App struct {
	Config   *config.Config
	DB       *repository.Database
	Redis    *redis.Client
	Quota    quota.Counter
	Client   *client.Client
	Importer *ingest.Importer
}

// New connects to the database (and Redis when it backs the quota) and
// builds the importer
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	counter, rdb, err := NewCounter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Quota = counter
	a.Redis = rdb

	a.Client = client.NewClient(
		cfg.TennisAPIBaseURL,
		cfg.TennisAPIKey,
		cfg.TennisAPITimeout,
		counter,
		client.WithRequestsPerMinute(cfg.TennisRequestsPerMinute),
	)
	log.Info().
		Str("base_url", cfg.TennisAPIBaseURL).
		Int("quota_max", cfg.QuotaMax).
		Str("quota_backend", cfg.QuotaBackend).
		Msg("Tennis API client initialized")

	db, err := repository.NewDatabase(ctx, DatabaseConfig(cfg))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.DB = db

	a.Importer = ingest.NewImporter(
		a.Client,
		ingest.NewWriter(db.Matches, cfg.ImportRejectUndated),
		cfg.TennisPageSize,
	)

	return a, nil
}

// Close releases connections
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
}

// DatabaseConfig maps application config onto the repository's
func DatabaseConfig(cfg *config.Config) repository.Config {
	return repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}
}

// NewCounter builds the configured quota counter. The Redis client is
// returned so the caller can close it; it is nil for the memory backend.
func NewCounter(ctx context.Context, cfg *config.Config) (quota.Counter, *redis.Client, error) {
	switch cfg.QuotaBackend {
	case config.QuotaBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr(), err)
		}
		log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis quota counter connected")
		return quota.NewRedis(rdb, cfg.QuotaMax, cfg.QuotaWindow), rdb, nil
	default:
		return quota.NewMemory(cfg.QuotaMax, cfg.QuotaWindow), nil, nil
	}
}

// SetupLogger configures the zerolog logger
func SetupLogger() {
	// Pretty console logging in development
	if env := os.Getenv("APP_ENV"); env == "" || env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
}
