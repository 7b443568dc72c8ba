package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"sportrate/tennis-ingestion/internal/apperr"
	"sportrate/tennis-ingestion/internal/metrics"
	"sportrate/tennis-ingestion/internal/models"
)

const matchesTable = "matches"

// Postgres error codes that mean the sport_type enum is missing a value
const (
	pgInvalidTextRepresentation = "22P02"
	pgUndefinedObject           = "42704"
	pgUniqueViolation           = "23505"
)

const sportEnumHint = "add the enum value with: ALTER TYPE sport_type ADD VALUE 'TENNIS' (see migrations/002_add_tennis_sport.sql)"

// MatchRepository handles matches table operations
type MatchRepository struct {
	db *Database
}

// FindExisting reports whether a row matching key already exists. A row
// matches on the provider ID, or on home, away, sport and date together.
func (r *MatchRepository) FindExisting(ctx context.Context, key models.DedupKey) (bool, error) {
	query := `
		SELECT id
		FROM matches
		WHERE ($1::bigint IS NOT NULL AND api_match_id = $1)
		   OR (home_team = $2 AND away_team = $3 AND sport = $4 AND match_date = $5)
		LIMIT 1
	`

	start := time.Now()
	var id int64
	err := r.db.Pool.QueryRow(ctx, query,
		key.APIMatchID, key.HomeTeam, key.AwayTeam, key.Sport, key.MatchDate.UTC(),
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordDBQuery("select", matchesTable, "success", time.Since(start).Seconds())
		return false, nil
	}
	if err != nil {
		metrics.RecordDBQuery("select", matchesTable, "error", time.Since(start).Seconds())
		return false, classifyPgError(err, "failed to look up match")
	}

	metrics.RecordDBQuery("select", matchesTable, "success", time.Since(start).Seconds())
	log.Debug().
		Int64("id", id).
		Str("home", key.HomeTeam).
		Str("away", key.AwayTeam).
		Msg("Match already stored")
	return true, nil
}

// Insert adds a new match row and fills in its generated columns
func (r *MatchRepository) Insert(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (
			api_match_id, home_team, away_team, sport, league,
			match_date, status, home_score, away_score, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	start := time.Now()
	err := r.db.Pool.QueryRow(ctx, query,
		match.APIMatchID, match.HomeTeam, match.AwayTeam, match.Sport, match.League,
		match.MatchDate.UTC(), match.Status, match.HomeScore, match.AwayScore, []byte(match.Details),
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	if err != nil {
		metrics.RecordDBQuery("insert", matchesTable, "error", time.Since(start).Seconds())
		return classifyPgError(err, "failed to insert match")
	}
	metrics.RecordDBQuery("insert", matchesTable, "success", time.Since(start).Seconds())

	log.Debug().
		Int64("id", match.ID).
		Str("home", match.HomeTeam).
		Str("away", match.AwayTeam).
		Time("match_date", match.MatchDate).
		Msg("Match created")

	return nil
}

// Count returns the number of stored matches for a sport
func (r *MatchRepository) Count(ctx context.Context, sport string) (int64, error) {
	start := time.Now()
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches WHERE sport = $1`, sport).Scan(&count)
	if err != nil {
		metrics.RecordDBQuery("count", matchesTable, "error", time.Since(start).Seconds())
		return 0, classifyPgError(err, "failed to count matches")
	}
	metrics.RecordDBQuery("count", matchesTable, "success", time.Since(start).Seconds())
	return count, nil
}

// ListRecent returns the most recent matches of a sport, newest first
func (r *MatchRepository) ListRecent(ctx context.Context, sport string, limit int) ([]*models.Match, error) {
	query := `
		SELECT id, api_match_id, home_team, away_team, sport, league,
		       match_date, status, home_score, away_score, details,
		       created_at, updated_at
		FROM matches
		WHERE sport = $1
		ORDER BY match_date DESC
		LIMIT $2
	`

	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, query, sport, limit)
	if err != nil {
		metrics.RecordDBQuery("select", matchesTable, "error", time.Since(start).Seconds())
		return nil, classifyPgError(err, "failed to list matches")
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var m models.Match
		var details []byte
		if err := rows.Scan(
			&m.ID, &m.APIMatchID, &m.HomeTeam, &m.AwayTeam, &m.Sport, &m.League,
			&m.MatchDate, &m.Status, &m.HomeScore, &m.AwayScore, &details,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.Details = details
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	metrics.RecordDBQuery("select", matchesTable, "success", time.Since(start).Seconds())
	return matches, nil
}

// classifyPgError tags database failures. A missing sport_type enum value
// is a schema error with a remediation hint; anything else is left
// untagged.
func classifyPgError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgInvalidTextRepresentation, pgUndefinedObject:
			if strings.Contains(pgErr.Message, "sport_type") {
				return apperr.WithHint(apperr.Wrap(err, apperr.KindSchema, msg), sportEnumHint)
			}
		case pgUniqueViolation:
			return errors.Wrapf(err, "%s: duplicate row (%s)", msg, pgErr.ConstraintName)
		}
	}
	return errors.Wrap(err, msg)
}
