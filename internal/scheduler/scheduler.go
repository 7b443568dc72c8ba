package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"sportrate/tennis-ingestion/internal/apperr"
	"sportrate/tennis-ingestion/internal/ingest"
)

// ImportJob is the import the scheduler triggers
type ImportJob interface {
	ImportATPMatches(ctx context.Context) (*ingest.Result, error)
}

// StatsRefresher publishes storage gauges; it is called on every tick
type StatsRefresher func(ctx context.Context) error

// Scheduler manages background tasks for tennis ingestion:
// - the optional cron-driven import of the latest matches
// - a periodic refresh of storage gauges
type Scheduler struct {
	importCron    string
	job           ImportJob
	refresh       StatsRefresher
	statsInterval time.Duration
	cron          *cron.Cron
	ticker        *time.Ticker
	stopChan      chan struct{}
}

// NewScheduler creates a new scheduler instance. An empty importCron
// disables scheduled imports; a nil refresh disables the stats ticker.
func NewScheduler(importCron string, job ImportJob, refresh StatsRefresher, statsInterval time.Duration) *Scheduler {
	return &Scheduler{
		importCron:    importCron,
		job:           job,
		refresh:       refresh,
		statsInterval: statsInterval,
		// overlapping imports would only race each other for the quota
		cron:     cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if s.importCron != "" {
		if _, err := s.cron.AddFunc(s.importCron, func() {
			s.runImport(ctx)
		}); err != nil {
			return fmt.Errorf("failed to schedule import %q: %w", s.importCron, err)
		}
		s.cron.Start()
		log.Info().
			Str("schedule", s.importCron).
			Msg("Tennis import scheduled")
	} else {
		log.Info().Msg("IMPORT_CRON not set, scheduled imports disabled")
	}

	if s.refresh != nil && s.statsInterval > 0 {
		s.ticker = time.NewTicker(s.statsInterval)
		go s.pollStats(ctx)
		log.Info().
			Dur("interval", s.statsInterval).
			Msg("Stats refresh started")
	}

	return nil
}

// Stop stops the scheduler and waits for a running import to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) runImport(ctx context.Context) {
	log.Info().Msg("Running scheduled tennis import...")

	res, err := s.job.ImportATPMatches(ctx)
	if err != nil {
		ev := log.Error()
		if apperr.Is(err, apperr.KindQuotaExceeded) {
			// expected once the window's budget is spent
			ev = log.Warn()
		}
		ev.Err(err).
			Str("kind", string(apperr.KindOf(err))).
			Strs("hints", apperr.Hints(err)).
			Msg("Scheduled import failed")
		return
	}

	log.Info().
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Int("errors", res.Errors).
		Msg("Scheduled import complete")
}

func (s *Scheduler) pollStats(ctx context.Context) {
	s.refreshStats(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping stats refresh")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping stats refresh")
			return
		case <-s.ticker.C:
			s.refreshStats(ctx)
		}
	}
}

func (s *Scheduler) refreshStats(ctx context.Context) {
	if err := s.refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to refresh stats")
	}
}
