package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sportrate/tennis-ingestion/internal/models"
)

func importance(v int64) models.FlexInt {
	return models.FlexInt{Value: v, Valid: true}
}

func TestAssess_ExclusionWinsOverImportance(t *testing.T) {
	for _, name := range []string{
		"WTA Wimbledon",
		"Wimbledon Women Singles",
		"Wimbledon Doubles",
		"US Open Wheelchair",
		"Roland Garros Juniors",
		"ATP Challenger Bergamo",
		"Wimbledon Qualifying",
		"ITF M25 Monastir",
	} {
		t.Run(name, func(t *testing.T) {
			a := Assess(&models.RawMatch{
				TournamentName:       name,
				TournamentImportance: importance(2000),
			})
			assert.False(t, a.Official)
			assert.True(t, IsExclusion(a.Reason), "reason %q", a.Reason)
		})
	}
}

func TestAssess_ExcludedKeywordReasons(t *testing.T) {
	tests := map[string]string{
		"ATP Team Cup":            "excluded:team cup",
		"UTR Men's Series ATP":    "excluded:utr",
		"Hopman ATP Exhibit Rome": "excluded:hopman",
		"Woman ATP Rome":          "excluded:woman",
		"Davis Cup Finals":        "excluded:davis cup",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			a := Assess(&models.RawMatch{
				TournamentName:       name,
				TournamentImportance: importance(500),
			})
			assert.False(t, a.Official)
			assert.Equal(t, want, a.Reason)
		})
	}
}

func TestAssess_ExclusionInLeagueOrSeason(t *testing.T) {
	a := Assess(&models.RawMatch{
		TournamentName: "Wimbledon",
		LeagueName:     "WTA",
	})
	assert.False(t, a.Official)
	assert.Equal(t, "excluded:wta", a.Reason)

	a = Assess(&models.RawMatch{
		TournamentName: "Madrid Open",
		SeasonName:     "Legends 2025",
	})
	assert.False(t, a.Official)
}

func TestAssess_AllowListCaseInsensitive(t *testing.T) {
	for _, name := range []string{"wimbledon", "Wimbledon", "WIMBLEDON", "  wimbledon  "} {
		a := Assess(&models.RawMatch{
			TournamentName:       name,
			TournamentImportance: importance(2000),
		})
		assert.True(t, a.Official, name)
		assert.Equal(t, ReasonAllowList, a.Reason)
		assert.Equal(t, TierGrandSlam, a.Tier)
	}
}

func TestAssess_ImportanceWithATPKeyword(t *testing.T) {
	tests := []struct {
		name       string
		tournament string
		importance models.FlexInt
		official   bool
		tier       string
	}{
		{"atp 250 keyword", "ATP 250 Somewhere", importance(250), true, TierATP250},
		{"bare atp", "ATP Somewhere Open", importance(500), true, TierATP500},
		{"atp masters keyword", "ATP Masters New Event", importance(1000), true, TierMasters1000},
		{"importance below threshold", "ATP Somewhere Open", importance(125), false, TierGeneric},
		{"no importance", "ATP Somewhere Open", models.FlexInt{}, false, TierGeneric},
		{"importance without keyword", "Somewhere Open", importance(500), false, TierATP500},
		{"atp inside a word is not a keyword", "Satpura Open", importance(500), false, TierATP500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(&models.RawMatch{
				TournamentName:       tt.tournament,
				TournamentImportance: tt.importance,
			})
			assert.Equal(t, tt.official, a.Official)
			assert.Equal(t, tt.tier, a.Tier)
			if tt.official {
				assert.Equal(t, ReasonATPImportance, a.Reason)
			} else {
				assert.Equal(t, ReasonNotATP, a.Reason)
			}
		})
	}
}

func TestAssess_TierFromImportance(t *testing.T) {
	tests := []struct {
		importance int64
		tier       string
	}{
		{2000, TierGrandSlam},
		{2500, TierGrandSlam},
		{1000, TierMasters1000},
		{1999, TierMasters1000},
		{500, TierATP500},
		{250, TierATP250},
	}
	for _, tt := range tests {
		a := Assess(&models.RawMatch{TournamentName: "Halle", TournamentImportance: importance(tt.importance)})
		assert.Equal(t, tt.tier, a.Tier, "importance %d", tt.importance)
	}
}

func TestAssess_TierFromNames(t *testing.T) {
	tests := []struct {
		tournament string
		tier       string
	}{
		{"Australian Open", TierGrandSlam},
		{"Miami Open presented by Itau", TierMasters1000},
		{"Rolex Paris Masters", TierMasters1000},
		{"Barcelona Open Banc Sabadell", TierATP500},
		{"Terra Wortmann Open Halle", TierATP500},
		{"Eastbourne International", TierATP250},
		{"Generic ATP 250 Event", TierATP250},
		{"Unknown Cup", TierGeneric},
	}
	for _, tt := range tests {
		a := Assess(&models.RawMatch{TournamentName: tt.tournament})
		assert.Equal(t, tt.tier, a.Tier, tt.tournament)
	}
}

func TestAssess_RejectsUnknownEvents(t *testing.T) {
	a := Assess(&models.RawMatch{TournamentName: "Local Club Championship"})
	assert.False(t, a.Official)
	assert.Equal(t, ReasonNotATP, a.Reason)

	a = Assess(&models.RawMatch{})
	assert.False(t, a.Official)
}

func TestAssess_Surface(t *testing.T) {
	tests := []struct {
		name       string
		tournament string
		ground     string
		surface    string
		guessed    bool
	}{
		{"roland garros guess", "Roland Garros Masters", "", SurfaceClay, true},
		{"french open guess", "French Open", "", SurfaceClay, true},
		{"wimbledon guess", "Wimbledon", "", SurfaceGrass, true},
		{"default hard", "Cincinnati", "", SurfaceHard, true},
		{"provider clay wins over name", "Wimbledon", "Red clay", SurfaceClay, false},
		{"provider grass", "Halle", "Grass", SurfaceGrass, false},
		{"provider indoor", "Basel", "Hardcourt indoor", SurfaceIndoorHard, false},
		{"provider outdoor hard", "Cincinnati", "Hardcourt outdoor", SurfaceHard, false},
		{"unknown provider value kept", "Tokyo", "Synthetic", "Synthetic", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(&models.RawMatch{TournamentName: tt.tournament, GroundType: tt.ground})
			assert.Equal(t, tt.surface, a.Surface)
			assert.Equal(t, tt.guessed, a.SurfaceGuessed)
		})
	}
}
