package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt decodes an integer the provider may send as a number, a numeric
// string or null. Anything unparseable decodes as absent.
type FlexInt struct {
	Value int64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt{}
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt{Value: n, Valid: true}
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexInt{Value: int64(fl), Valid: true}
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

// Int returns the value as an int pointer, nil when absent
func (f FlexInt) Int() *int {
	if !f.Valid {
		return nil
	}
	v := int(f.Value)
	return &v
}

// RawScore is a per-player score blob, e.g.
// {"current": 2, "display": 2, "period_1": 6, "period_1_tie_break": 5}.
// A blob that is not a JSON object decodes as empty.
type RawScore map[string]FlexInt

// UnmarshalJSON implements json.Unmarshaler
func (s *RawScore) UnmarshalJSON(b []byte) error {
	var m map[string]FlexInt
	if err := json.Unmarshal(b, &m); err != nil {
		*s = nil
		return nil
	}
	*s = m
	return nil
}

// Get returns the integer stored under key
func (s RawScore) Get(key string) (int, bool) {
	v, ok := s[key]
	if !ok || !v.Valid {
		return 0, false
	}
	return int(v.Value), true
}

// RawMatch is a match record as received from the tennis provider.
// Every field is optional.
type RawMatch struct {
	ID                   FlexInt `json:"id"`
	Name                 string  `json:"name"`
	HomeTeamID           FlexInt `json:"home_team_id"`
	HomeTeamName         string  `json:"home_team_name"`
	AwayTeamID           FlexInt `json:"away_team_id"`
	AwayTeamName         string  `json:"away_team_name"`
	TournamentID         FlexInt `json:"tournament_id"`
	TournamentName       string  `json:"tournament_name"`
	TournamentImportance FlexInt `json:"tournament_importance"`
	LeagueName           string  `json:"league_name"`
	SeasonName           string  `json:"season_name"`
	RoundName            string  `json:"round_name"`
	GroundType           string  `json:"ground_type"`
	StartTime            string  `json:"start_time"`
	ArenaName            string  `json:"arena_name"`
	ArenaCity            string  `json:"arena_city"`
	ArenaCountry         string  `json:"arena_country"`

	// status arrives either as status_type or as status, which is a plain
	// string or an object {"type": "...", "reason": "..."}
	StatusType string          `json:"status_type"`
	Status     json.RawMessage `json:"status,omitempty"`

	HomeTeamScore RawScore `json:"home_team_score"`
	AwayTeamScore RawScore `json:"away_team_score"`
}

// StatusText returns the provider's free-text status
func (r *RawMatch) StatusText() string {
	if r.StatusType != "" {
		return r.StatusType
	}
	raw := bytes.TrimSpace(r.Status)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Type != "" {
			return obj.Type
		}
		return obj.Description
	}
	return ""
}

// ParseRawMatches decodes a provider page. Records that cannot be decoded at
// all are returned separately so callers can count them.
func ParseRawMatches(body []byte) ([]*RawMatch, []error, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, nil, err
	}

	matches := make([]*RawMatch, 0, len(items))
	var recordErrs []error
	for _, item := range items {
		var m RawMatch
		if err := json.Unmarshal(item, &m); err != nil {
			recordErrs = append(recordErrs, err)
			continue
		}
		matches = append(matches, &m)
	}
	return matches, recordErrs, nil
}
