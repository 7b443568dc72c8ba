package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Match statuses
const (
	StatusFinished  = "FINISHED"
	StatusLive      = "LIVE"
	StatusScheduled = "SCHEDULED"
	StatusPostponed = "POSTPONED"
	StatusCancelled = "CANCELLED"
)

// Names of fields the normalizer may fabricate
const (
	FieldID      = "id"
	FieldPlayer1 = "player1"
	FieldPlayer2 = "player2"
	FieldDate    = "date"
	FieldVenue   = "venue"
	FieldSurface = "surface"
)

// ProviderName identifies where imported rows came from
const ProviderName = "sportdevs"

// Player is one side of a singles match. Ranking and Country are not
// supplied by the provider and stay empty.
type Player struct {
	Name    string `json:"name"`
	Ranking *int   `json:"ranking,omitempty"`
	Country string `json:"country,omitempty"`
}

// Tournament describes the event a match belongs to
type Tournament struct {
	Name       string `json:"name"`
	Level      string `json:"level"`
	Surface    string `json:"surface"`
	Importance *int   `json:"importance,omitempty"`
	Round      string `json:"round,omitempty"`
}

// Venue is where a match is played
type Venue struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// PlayerScore holds sets won plus games and tiebreak points per set
type PlayerScore struct {
	Sets      int   `json:"sets"`
	Games     []int `json:"games"`
	Tiebreaks []int `json:"tiebreaks"`
}

// Scores holds both players' scores
type Scores struct {
	Player1 PlayerScore `json:"player1"`
	Player2 PlayerScore `json:"player2"`
}

// TennisMatch is the normalized internal shape of an accepted match
type TennisMatch struct {
	ID         string     `json:"id"`
	ExternalID *int64     `json:"external_id,omitempty"`
	Player1    Player     `json:"player1"`
	Player2    Player     `json:"player2"`
	Tournament Tournament `json:"tournament"`
	Venue      Venue      `json:"venue"`
	Date       time.Time  `json:"date"`
	Status     string     `json:"status"`
	Scores     Scores     `json:"scores"`

	// Defaulted lists the fields whose values were fabricated because the
	// provider did not supply them
	Defaulted []string `json:"defaulted,omitempty"`
}

// IsDefaulted reports whether field was fabricated
func (m *TennisMatch) IsDefaulted(field string) bool {
	for _, f := range m.Defaulted {
		if f == field {
			return true
		}
	}
	return false
}

// MarkDefaulted records that field was fabricated
func (m *TennisMatch) MarkDefaulted(field string) {
	if !m.IsDefaulted(field) {
		m.Defaulted = append(m.Defaulted, field)
	}
}

// MatchDetails is the JSON blob stored in matches.details
type MatchDetails struct {
	Tournament      string      `json:"tournament"`
	Level           string      `json:"level"`
	Surface         string      `json:"surface"`
	Round           string      `json:"round,omitempty"`
	Importance      *int        `json:"importance,omitempty"`
	Venue           Venue       `json:"venue"`
	Scores          Scores      `json:"scores"`
	Source          MatchSource `json:"source"`
	DefaultedFields []string    `json:"defaulted_fields,omitempty"`
}

// MatchSource records provenance of an imported row
type MatchSource struct {
	Provider   string    `json:"provider"`
	ExternalID string    `json:"external_id"`
	ImportedAt time.Time `json:"imported_at"`
}

// ToMatch converts a normalized match into a generic matches row
func (m *TennisMatch) ToMatch(importedAt time.Time) (*Match, error) {
	details := MatchDetails{
		Tournament: m.Tournament.Name,
		Level:      m.Tournament.Level,
		Surface:    m.Tournament.Surface,
		Round:      m.Tournament.Round,
		Importance: m.Tournament.Importance,
		Venue:      m.Venue,
		Scores:     m.Scores,
		Source: MatchSource{
			Provider:   ProviderName,
			ExternalID: m.ID,
			ImportedAt: importedAt.UTC(),
		},
		DefaultedFields: m.Defaulted,
	}

	blob, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal match details: %w", err)
	}

	match := &Match{
		HomeTeam:  m.Player1.Name,
		AwayTeam:  m.Player2.Name,
		Sport:     SportTennis,
		MatchDate: m.Date.UTC(),
		Status:    m.Status,
		Details:   blob,
	}

	if m.ExternalID != nil {
		match.APIMatchID = sql.NullInt64{Int64: *m.ExternalID, Valid: true}
	}
	if m.Tournament.Name != "" {
		match.League = sql.NullString{String: m.Tournament.Name, Valid: true}
	}

	// Only report a score once the match has one
	if m.Status == StatusFinished || m.Status == StatusLive {
		match.HomeScore = sql.NullInt32{Int32: int32(m.Scores.Player1.Sets), Valid: true}
		match.AwayScore = sql.NullInt32{Int32: int32(m.Scores.Player2.Sets), Valid: true}
	}

	return match, nil
}
