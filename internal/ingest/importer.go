// Package ingest runs the tennis import pipeline: fetch one page from the
// provider, classify each record, normalize the accepted ones and store
// those not already present.
package ingest

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"sportrate/tennis-ingestion/internal/apperr"
	"sportrate/tennis-ingestion/internal/classify"
	"sportrate/tennis-ingestion/internal/client"
	"sportrate/tennis-ingestion/internal/metrics"
	"sportrate/tennis-ingestion/internal/models"
	"sportrate/tennis-ingestion/internal/normalize"
	"sportrate/tennis-ingestion/internal/quota"
)

// Import actions, also used as metric labels
const (
	ActionImportLatest = "import_atp_matches"
	ActionImportJuly   = "import_atp_july_2025"
	ActionImportRange  = "import_range"
)

// debugSampleSize is how many records a debug call asks for
const debugSampleSize = 10

// Fetcher is the provider access the importer needs
type Fetcher interface {
	FetchMatches(ctx context.Context, q client.MatchQuery) (*client.Page, error)
	FetchRaw(ctx context.Context, path string, params url.Values) (json.RawMessage, error)
	Ping(ctx context.Context) (int, error)
	QuotaStatus(ctx context.Context) (quota.Status, error)
}

// Importer composes fetch, classify, normalize and write
type Importer struct {
	fetcher  Fetcher
	writer   *Writer
	pageSize int
	now      func() time.Time
}

// NewImporter creates an importer
func NewImporter(fetcher Fetcher, writer *Writer, pageSize int) *Importer {
	if pageSize <= 0 || pageSize > client.MaxPageSize {
		pageSize = client.MaxPageSize
	}
	return &Importer{
		fetcher:  fetcher,
		writer:   writer,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// ImportATPMatches imports the most recent page of matches
func (i *Importer) ImportATPMatches(ctx context.Context) (*Result, error) {
	return i.run(ctx, ActionImportLatest, client.MatchQuery{
		Limit: i.pageSize,
		Order: "start_time.desc",
	})
}

// ImportRange imports matches starting in [from, to)
func (i *Importer) ImportRange(ctx context.Context, from, to time.Time) (*Result, error) {
	if !to.After(from) {
		return nil, apperr.Newf(apperr.KindInvalidInput, "empty import range %s - %s",
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return i.run(ctx, ActionImportRange, client.MatchQuery{
		From:  from,
		To:    to,
		Limit: i.pageSize,
		Order: "start_time.asc",
	})
}

// ImportATPJuly2025 imports matches played in July 2025
func (i *Importer) ImportATPJuly2025(ctx context.Context) (*Result, error) {
	return i.run(ctx, ActionImportJuly, client.MatchQuery{
		From:  time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		Limit: i.pageSize,
		Order: "start_time.asc",
	})
}

func (i *Importer) run(ctx context.Context, action string, q client.MatchQuery) (*Result, error) {
	start := time.Now()
	logger := log.With().Str("action", action).Logger()
	logger.Info().Msg("Import starting")

	res, err := i.importPage(ctx, q)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordImport(action, "error", duration.Seconds())
		metrics.RecordError("importer", string(apperr.KindOf(err)))
		logger.Error().Err(err).Str("kind", string(apperr.KindOf(err))).Msg("Import failed")
		return nil, err
	}

	metrics.RecordImport(action, "success", duration.Seconds())
	metrics.RecordRecords(metrics.OutcomeFetched, res.Fetched)
	metrics.RecordRecords(metrics.OutcomeRejected, res.Rejected)
	metrics.RecordRecords(metrics.OutcomeImported, res.Imported)
	metrics.RecordRecords(metrics.OutcomeSkipped, res.Skipped)
	metrics.RecordRecords(metrics.OutcomeError, res.Errors)

	logger.Info().
		Int("fetched", res.Fetched).
		Int("rejected", res.Rejected).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Int("errors", res.Errors).
		Dur("duration", duration).
		Msg("Import complete")

	return res, nil
}

func (i *Importer) importPage(ctx context.Context, q client.MatchQuery) (*Result, error) {
	page, err := i.fetcher.FetchMatches(ctx, q)
	if err != nil {
		return nil, err
	}

	res := newResult()
	res.Fetched = len(page.Matches) + page.Malformed
	for n := 0; n < page.Malformed; n++ {
		res.reject(ReasonMalformed)
	}

	now := i.now()
	accepted := make([]*models.TennisMatch, 0, len(page.Matches))
	for _, raw := range page.Matches {
		a := classify.Assess(raw)
		if !a.Official {
			res.reject(a.Reason)
			metrics.RecordClassifierRejection(a.Reason)
			log.Debug().
				Str("tournament", raw.TournamentName).
				Str("reason", a.Reason).
				Msg("Match rejected by classifier")
			continue
		}
		accepted = append(accepted, normalize.Normalize(raw, a, now))
	}

	if err := i.writer.Write(ctx, accepted, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ConnectionReport is the outcome of a connection test
type ConnectionReport struct {
	Connected bool         `json:"connected"`
	Records   int          `json:"records"`
	Quota     quota.Status `json:"quota"`
}

// TestConnection makes one minimal provider call
func (i *Importer) TestConnection(ctx context.Context) (*ConnectionReport, error) {
	n, err := i.fetcher.Ping(ctx)
	if err != nil {
		return nil, err
	}
	st, err := i.fetcher.QuotaStatus(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Int("records", n).Int("quota_remaining", st.Remaining).Msg("Tennis API connection ok")
	return &ConnectionReport{Connected: true, Records: n, Quota: st}, nil
}

// QuotaStatus reports quota usage without calling the provider
func (i *Importer) QuotaStatus(ctx context.Context) (quota.Status, error) {
	return i.fetcher.QuotaStatus(ctx)
}

// Verdict is the classifier's view of one record in a debug response
type Verdict struct {
	ID         *int64 `json:"id,omitempty"`
	Tournament string `json:"tournament"`
	Importance *int   `json:"importance,omitempty"`
	GroundType string `json:"ground_type,omitempty"`
	Official   bool   `json:"official"`
	Reason     string `json:"reason"`
	Tier       string `json:"tier"`
	Surface    string `json:"surface"`
	Guessed    bool   `json:"surface_guessed"`
}

// DebugReport shows what the provider returned and how it was classified
type DebugReport struct {
	Records   int             `json:"records"`
	Malformed int             `json:"malformed"`
	Verdicts  []Verdict       `json:"verdicts"`
	Sample    json.RawMessage `json:"sample,omitempty"`
}

// DebugResponse fetches a small page and classifies it without storing
// anything. A body that is not a list of records is returned as the sample
// so the operator can see what the provider sent.
func (i *Importer) DebugResponse(ctx context.Context) (*DebugReport, error) {
	q := client.MatchQuery{Limit: debugSampleSize, Order: "start_time.desc"}
	body, err := i.fetcher.FetchRaw(ctx, client.MatchesPath, q.Values())
	if err != nil {
		return nil, err
	}

	matches, recordErrs, err := models.ParseRawMatches(body)
	if err != nil {
		log.Warn().Err(err).Msg("Debug response is not a list of matches")
		return &DebugReport{Verdicts: []Verdict{}, Sample: body}, nil
	}

	report := &DebugReport{
		Records:   len(matches),
		Malformed: len(recordErrs),
		Verdicts:  make([]Verdict, 0, len(matches)),
	}
	for _, raw := range matches {
		a := classify.Assess(raw)
		v := Verdict{
			Tournament: raw.TournamentName,
			Importance: a.Importance,
			GroundType: raw.GroundType,
			Official:   a.Official,
			Reason:     a.Reason,
			Tier:       a.Tier,
			Surface:    a.Surface,
			Guessed:    a.SurfaceGuessed,
		}
		if raw.ID.Valid {
			id := raw.ID.Value
			v.ID = &id
		}
		report.Verdicts = append(report.Verdicts, v)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err == nil && len(records) > 0 {
		report.Sample = records[0]
	}

	return report, nil
}
