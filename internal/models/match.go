package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// SportTennis is the sport_type enum value for tennis rows. The enum also
// holds the values of the other sports sharing the matches table.
const SportTennis = "TENNIS"

// Match is a row of the generic matches table shared by every sport
type Match struct {
	ID         int64          `db:"id"`
	APIMatchID sql.NullInt64  `db:"api_match_id"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	Sport      string         `db:"sport"`
	League     sql.NullString `db:"league"`
	MatchDate  time.Time      `db:"match_date"`
	Status     string         `db:"status"`

	// Scores (sets won for tennis)
	HomeScore sql.NullInt32 `db:"home_score"`
	AwayScore sql.NullInt32 `db:"away_score"`

	// Sport-specific metadata
	Details json.RawMessage `db:"details"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DedupKey identifies a match that may already be stored: by provider ID
// when there is one, or by the (home, away, sport, date) tuple
type DedupKey struct {
	APIMatchID *int64
	HomeTeam   string
	AwayTeam   string
	Sport      string
	MatchDate  time.Time
}

// DedupKey returns the key used to look the match up before insert
func (m *Match) DedupKey() DedupKey {
	key := DedupKey{
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		Sport:     m.Sport,
		MatchDate: m.MatchDate,
	}
	if m.APIMatchID.Valid {
		id := m.APIMatchID.Int64
		key.APIMatchID = &id
	}
	return key
}
