package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportrate/tennis-ingestion/internal/apperr"
	"sportrate/tennis-ingestion/internal/ingest"
)

type countingJob struct {
	runs int32
	err  error
}

func (j *countingJob) ImportATPMatches(_ context.Context) (*ingest.Result, error) {
	atomic.AddInt32(&j.runs, 1)
	if j.err != nil {
		return nil, j.err
	}
	return &ingest.Result{Imported: 1}, nil
}

func TestScheduler_RunsImportOnSchedule(t *testing.T) {
	job := &countingJob{}
	s := NewScheduler("@every 1s", job, nil, 0)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.runs) >= 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestScheduler_InvalidCron(t *testing.T) {
	s := NewScheduler("every now and then", &countingJob{}, nil, 0)
	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_DisabledImport(t *testing.T) {
	job := &countingJob{}
	s := NewScheduler("", job, nil, 0)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	assert.Equal(t, int32(0), atomic.LoadInt32(&job.runs))
}

func TestScheduler_FailedImportIsLogged(t *testing.T) {
	job := &countingJob{err: apperr.New(apperr.KindQuotaExceeded, "quota exhausted")}
	s := NewScheduler("", job, nil, 0)

	s.runImport(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.runs))
}

func TestScheduler_RefreshesStats(t *testing.T) {
	var refreshes int32
	s := NewScheduler("", &countingJob{}, func(context.Context) error {
		atomic.AddInt32(&refreshes, 1)
		return nil
	}, 20*time.Millisecond)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&refreshes) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}
