// Package normalize reshapes accepted provider records into TennisMatch.
// It never fails: missing values are defaulted and recorded in
// TennisMatch.Defaulted.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sportrate/tennis-ingestion/internal/classify"
	"sportrate/tennis-ingestion/internal/models"
)

// Placeholders for values the provider did not supply
const (
	UnknownPlayer  = "Unknown Player"
	UnknownVenue   = "Unknown Venue"
	UnknownPlace   = "Unknown"
	generatedIDTag = "gen-"
)

// maxSets is the most sets a singles match can have
const maxSets = 5

var startTimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a raw match and its assessment into a TennisMatch.
// now is used when the start time is missing.
func Normalize(raw *models.RawMatch, a classify.Assessment, now time.Time) *models.TennisMatch {
	m := &models.TennisMatch{
		Tournament: models.Tournament{
			Name:       strings.TrimSpace(raw.TournamentName),
			Level:      a.Tier,
			Surface:    a.Surface,
			Importance: a.Importance,
			Round:      strings.TrimSpace(raw.RoundName),
		},
		Status: MapStatus(raw.StatusText()),
	}

	if raw.ID.Valid {
		id := raw.ID.Value
		m.ID = strconv.FormatInt(id, 10)
		m.ExternalID = &id
	} else {
		m.ID = generatedIDTag + uuid.NewString()
		m.MarkDefaulted(models.FieldID)
	}

	m.Player1.Name = strings.TrimSpace(raw.HomeTeamName)
	if m.Player1.Name == "" {
		m.Player1.Name = UnknownPlayer
		m.MarkDefaulted(models.FieldPlayer1)
	}
	m.Player2.Name = strings.TrimSpace(raw.AwayTeamName)
	if m.Player2.Name == "" {
		m.Player2.Name = UnknownPlayer
		m.MarkDefaulted(models.FieldPlayer2)
	}

	if date, ok := parseStartTime(raw.StartTime); ok {
		m.Date = date
	} else {
		m.Date = now.UTC()
		m.MarkDefaulted(models.FieldDate)
	}

	m.Venue = venueFor(raw)
	if m.Venue.Name == UnknownVenue {
		m.MarkDefaulted(models.FieldVenue)
	}

	if a.SurfaceGuessed {
		m.MarkDefaulted(models.FieldSurface)
	}

	m.Scores = models.Scores{
		Player1: scoreFor(raw.HomeTeamScore),
		Player2: scoreFor(raw.AwayTeamScore),
	}

	return m
}

// MapStatus maps the provider's free-text status onto a match status
func MapStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)

	switch s {
	case "finished", "ended", "ft", "final", "retired", "walkover", "after penalties", "awarded":
		return models.StatusFinished
	case "live", "inprogress", "in progress", "started", "interrupted", "break":
		return models.StatusLive
	case "postponed", "delayed", "suspended":
		return models.StatusPostponed
	case "canceled", "cancelled", "abandoned":
		return models.StatusCancelled
	default:
		return models.StatusScheduled
	}
}

func parseStartTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func venueFor(raw *models.RawMatch) models.Venue {
	v := models.Venue{
		Name:    strings.TrimSpace(raw.ArenaName),
		City:    strings.TrimSpace(raw.ArenaCity),
		Country: strings.TrimSpace(raw.ArenaCountry),
	}
	if v.Name == "" {
		v.Name = UnknownVenue
	}
	if v.City == "" {
		v.City = UnknownPlace
	}
	if v.Country == "" {
		v.Country = UnknownPlace
	}
	return v
}

func scoreFor(raw models.RawScore) models.PlayerScore {
	score := models.PlayerScore{
		Games:     []int{},
		Tiebreaks: []int{},
	}

	if sets, ok := raw.Get("current"); ok {
		score.Sets = sets
	} else if sets, ok := raw.Get("display"); ok {
		score.Sets = sets
	}

	for set := 1; set <= maxSets; set++ {
		games, ok := raw.Get(fmt.Sprintf("period_%d", set))
		if !ok {
			break
		}
		score.Games = append(score.Games, games)

		// tiebreak points are only present for sets that went to a tiebreak
		tb, _ := raw.Get(fmt.Sprintf("period_%d_tie_break", set))
		score.Tiebreaks = append(score.Tiebreaks, tb)
	}

	return score
}
