// Package classify decides whether a provider match belongs to the official
// ATP tour and derives its tier and surface.
//
// The rules are name heuristics backed by the provider's importance score.
// They will both over- and under-include; there is no manual override.
package classify

import (
	"strings"

	"sportrate/tennis-ingestion/internal/models"
)

// Rejection reasons
const (
	ReasonAllowList      = "allow_list"
	ReasonATPImportance  = "atp_importance"
	ReasonNotATP         = "not_atp"
	reasonExcludedPrefix = "excluded:"
)

// Assessment is the classifier's verdict on one raw match
type Assessment struct {
	Official bool
	Reason   string

	Tier           string
	Surface        string
	SurfaceGuessed bool
	Importance     *int
}

// Assess classifies a raw match. It is the single source of truth for
// admission, tier and surface.
func Assess(raw *models.RawMatch) Assessment {
	tournament := strings.ToLower(strings.TrimSpace(raw.TournamentName))
	league := strings.ToLower(strings.TrimSpace(raw.LeagueName))
	season := strings.ToLower(strings.TrimSpace(raw.SeasonName))
	names := strings.Join([]string{tournament, league, season}, " ")

	a := Assessment{Importance: raw.TournamentImportance.Int()}
	a.Surface, a.SurfaceGuessed = surfaceFor(raw.GroundType, names)
	a.Tier = tierFor(a.Importance, names)

	if kw, hit := firstMatch(names, excludedKeywords); hit {
		a.Reason = reasonExcludedPrefix + kw
		return a
	}

	switch {
	case isAllowListed(names):
		a.Official = true
		a.Reason = ReasonAllowList
	case a.Importance != nil && *a.Importance >= importance250 && hasATPKeyword(names):
		a.Official = true
		a.Reason = ReasonATPImportance
	default:
		a.Reason = ReasonNotATP
	}

	return a
}

// IsExclusion reports whether a rejection reason came from the exclusion list
func IsExclusion(reason string) bool {
	return strings.HasPrefix(reason, reasonExcludedPrefix)
}

func isAllowListed(names string) bool {
	for _, list := range [][]string{grandSlams, masters1000, atp500, atp250} {
		if _, hit := firstMatch(names, list); hit {
			return true
		}
	}
	return false
}

func hasATPKeyword(names string) bool {
	if _, hit := firstMatch(names, atpKeywords); hit {
		return true
	}
	return containsWord(names, "atp") && !strings.Contains(names, "challenger")
}

// tierFor prefers the importance score and falls back to name heuristics
func tierFor(importance *int, names string) string {
	if importance != nil {
		switch {
		case *importance >= importanceGrandSlam:
			return TierGrandSlam
		case *importance >= importanceMasters:
			return TierMasters1000
		case *importance >= importance500:
			return TierATP500
		case *importance >= importance250:
			return TierATP250
		}
	}

	switch {
	case hasAny(names, grandSlams) || strings.Contains(names, "grand slam"):
		return TierGrandSlam
	case hasAny(names, masters1000) || strings.Contains(names, "atp masters") || strings.Contains(names, "atp 1000"):
		return TierMasters1000
	case hasAny(names, atp500) || strings.Contains(names, "atp 500"):
		return TierATP500
	case hasAny(names, atp250) || strings.Contains(names, "atp 250"):
		return TierATP250
	default:
		return TierGeneric
	}
}

// surfaceFor uses the provider's ground type when it has one and otherwise
// guesses from the names
func surfaceFor(groundType, names string) (string, bool) {
	if s := normalizeGround(groundType); s != "" {
		return s, false
	}

	switch {
	case strings.Contains(names, "wimbledon") || strings.Contains(names, "grass"):
		return SurfaceGrass, true
	case strings.Contains(names, "roland garros") ||
		strings.Contains(names, "roland-garros") ||
		strings.Contains(names, "french open") ||
		strings.Contains(names, "clay"):
		return SurfaceClay, true
	default:
		return SurfaceHard, true
	}
}

func normalizeGround(groundType string) string {
	g := strings.ToLower(strings.TrimSpace(groundType))
	switch {
	case g == "":
		return ""
	case strings.Contains(g, "clay"):
		return SurfaceClay
	case strings.Contains(g, "grass"):
		return SurfaceGrass
	case strings.Contains(g, "carpet"):
		return SurfaceCarpet
	case strings.Contains(g, "indoor"):
		return SurfaceIndoorHard
	case strings.Contains(g, "hard"):
		return SurfaceHard
	default:
		return strings.TrimSpace(groundType)
	}
}

func firstMatch(s string, fragments []string) (string, bool) {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return f, true
		}
	}
	return "", false
}

func hasAny(s string, fragments []string) bool {
	_, hit := firstMatch(s, fragments)
	return hit
}

// containsWord reports whether word appears in s delimited by non-letters
func containsWord(s, word string) bool {
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		if field == word {
			return true
		}
	}
	return false
}
