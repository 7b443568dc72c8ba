package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"sportrate/tennis-ingestion/internal/apperr"
	"sportrate/tennis-ingestion/internal/metrics"
	"sportrate/tennis-ingestion/internal/models"
)

// MaxExamples bounds Result.Examples
const MaxExamples = 5

// Reasons recorded in Result.RejectReasons besides the classifier's own
const (
	ReasonMalformed = "malformed"
	ReasonUndated   = "undated"
)

// MatchStore is the persistence the writer needs
type MatchStore interface {
	FindExisting(ctx context.Context, key models.DedupKey) (bool, error)
	Insert(ctx context.Context, match *models.Match) error
}

// Result aggregates the outcome of an import run
type Result struct {
	Fetched       int            `json:"fetched"`
	Rejected      int            `json:"rejected"`
	Imported      int            `json:"imported"`
	Skipped       int            `json:"skipped"`
	Errors        int            `json:"errors"`
	Examples      []string       `json:"examples"`
	RejectReasons map[string]int `json:"reject_reasons,omitempty"`
}

func newResult() *Result {
	return &Result{Examples: []string{}, RejectReasons: map[string]int{}}
}

func (r *Result) reject(reason string) {
	r.Rejected++
	r.RejectReasons[reason]++
}

func (r *Result) example(s string) {
	if len(r.Examples) < MaxExamples {
		r.Examples = append(r.Examples, s)
	}
}

// Writer deduplicates normalized matches and inserts the new ones, one
// record at a time and without a transaction
type Writer struct {
	store         MatchStore
	rejectUndated bool
	now           func() time.Time
}

// NewWriter creates a writer. With rejectUndated, matches whose date had to
// be defaulted are rejected instead of stored.
func NewWriter(store MatchStore, rejectUndated bool) *Writer {
	return &Writer{
		store:         store,
		rejectUndated: rejectUndated,
		now:           time.Now,
	}
}

// Write stores matches into res. A failing record is counted and the loop
// moves on; only a schema error, which every later insert would hit too,
// stops the run.
func (w *Writer) Write(ctx context.Context, matches []*models.TennisMatch, res *Result) error {
	importedAt := w.now()

	for _, tm := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}

		if w.rejectUndated && tm.IsDefaulted(models.FieldDate) {
			res.reject(ReasonUndated)
			log.Debug().Str("match_id", tm.ID).Msg("Rejecting match without a start time")
			continue
		}

		row, err := tm.ToMatch(importedAt)
		if err != nil {
			res.Errors++
			log.Error().Err(err).Str("match_id", tm.ID).Msg("Failed to build match row")
			continue
		}

		exists, err := w.store.FindExisting(ctx, row.DedupKey())
		if err != nil {
			if apperr.Is(err, apperr.KindSchema) {
				return err
			}
			res.Errors++
			metrics.RecordError("writer", string(apperr.KindOf(err)))
			log.Error().Err(err).Str("match_id", tm.ID).Msg("Failed to check for existing match")
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		if err := w.store.Insert(ctx, row); err != nil {
			if apperr.Is(err, apperr.KindSchema) {
				return err
			}
			res.Errors++
			metrics.RecordError("writer", string(apperr.KindOf(err)))
			log.Error().Err(err).Str("match_id", tm.ID).Msg("Failed to insert match")
			continue
		}

		res.Imported++
		res.example(describe(tm))
	}

	return nil
}

func describe(tm *models.TennisMatch) string {
	return fmt.Sprintf("%s vs %s (%s, %s)",
		tm.Player1.Name, tm.Player2.Name, tm.Tournament.Name, tm.Date.Format("2006-01-02"))
}
