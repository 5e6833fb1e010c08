package predict

import (
	"fmt"
	"strings"
	"time"
)

///////////////////////////////////////////////////
////// Match results and fixtures
///////////////////////////////////////////////////

// Match status values as they appear in loaded data
const (
	StatusScheduled = "scheduled"
	StatusFinished  = "finished"
	StatusPostponed = "postponed"
	StatusCancelled = "cancelled"
)

// Home/draw/away outcome codes used in results and accuracy scoring
const (
	OutcomeHome = "H"
	OutcomeDraw = "D"
	OutcomeAway = "A"
)

// MatchResult is a single historical match as held by the match store.
// Goals are only meaningful when Status is StatusFinished.
type MatchResult struct {
	Date      time.Time `json:"date"`
	League    string    `json:"league,omitempty"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeGoals int       `json:"home_goals"`
	AwayGoals int       `json:"away_goals"`
	Status    string    `json:"status"`
}

// IsFinished returns true when the match has a usable final score
func (m *MatchResult) IsFinished() bool {
	return m.Status == StatusFinished
}

// Involves returns true when the given team played in this match
func (m *MatchResult) Involves(team string) bool {
	return m.HomeTeam == team || m.AwayTeam == team
}

// TotalGoals returns the combined score of both sides
func (m *MatchResult) TotalGoals() int {
	return m.HomeGoals + m.AwayGoals
}

// GoalsFor returns the goals the given team scored in this match
func (m *MatchResult) GoalsFor(team string) int {
	switch team {
	case m.HomeTeam:
		return m.HomeGoals
	case m.AwayTeam:
		return m.AwayGoals
	}
	return 0
}

// GoalsAgainst returns the goals the given team conceded in this match
func (m *MatchResult) GoalsAgainst(team string) int {
	switch team {
	case m.HomeTeam:
		return m.AwayGoals
	case m.AwayTeam:
		return m.HomeGoals
	}
	return 0
}

// PointsFor returns the league points the given team took from this match.
// Three for a win, one for a draw, zero for a defeat or for a team
// that didn't actually play in it.
func (m *MatchResult) PointsFor(team string) int {
	if !m.Involves(team) {
		return 0
	}
	gf := m.GoalsFor(team)
	ga := m.GoalsAgainst(team)
	if gf > ga {
		return 3
	}
	if gf == ga {
		return 1
	}
	return 0
}

// Outcome returns "H", "D" or "A" from the home side's perspective
func (m *MatchResult) Outcome() string {
	if m.HomeGoals > m.AwayGoals {
		return OutcomeHome
	}
	if m.HomeGoals < m.AwayGoals {
		return OutcomeAway
	}
	return OutcomeDraw
}

// SameFixture returns true when this result is the given pairing played
// at the given venue orientation on the same calendar day
func (m *MatchResult) SameFixture(home, away string, date time.Time) bool {
	if m.HomeTeam != home || m.AwayTeam != away {
		return false
	}
	return m.Date.Year() == date.Year() && m.Date.YearDay() == date.YearDay()
}

///////////////////////////////////////////////////
////// Fixtures awaiting prediction
///////////////////////////////////////////////////

// FixtureInput identifies an upcoming match to predict.
// League positions and market odds are optional enrichments.
// Leave the positions at zero and the odds nil when they aren't known.
type FixtureInput struct {
	Date               time.Time `json:"date"`
	League             string    `json:"league,omitempty"`
	HomeTeam           string    `json:"home_team"`
	AwayTeam           string    `json:"away_team"`
	LeaguePositionHome int       `json:"league_position_home,omitempty"`
	LeaguePositionAway int       `json:"league_position_away,omitempty"`
	OddsHome           *float64  `json:"odds_home,omitempty"`
	OddsDraw           *float64  `json:"odds_draw,omitempty"`
	OddsAway           *float64  `json:"odds_away,omitempty"`
}

// Validate checks the fields every prediction needs
func (f *FixtureInput) Validate() error {
	if strings.TrimSpace(f.HomeTeam) == "" {
		return fmt.Errorf("fixture is missing a home team")
	}
	if strings.TrimSpace(f.AwayTeam) == "" {
		return fmt.Errorf("fixture is missing an away team")
	}
	if f.HomeTeam == f.AwayTeam {
		return fmt.Errorf("fixture has %s playing itself", f.HomeTeam)
	}
	if f.Date.IsZero() {
		return fmt.Errorf("fixture %s v %s has no date", f.HomeTeam, f.AwayTeam)
	}
	return nil
}

// HasMarketOdds returns true when all three 1X2 prices are present and usable.
// Decimal odds at or below 1.0 imply a probability of 100% or more
// which only ever means bad data.
func (f *FixtureInput) HasMarketOdds() bool {
	for _, o := range []*float64{f.OddsHome, f.OddsDraw, f.OddsAway} {
		if o == nil || *o <= 1.0 {
			return false
		}
	}
	return true
}

// Description returns a loggable one liner like "Arsenal v Chelsea (2025-08-23)"
func (f *FixtureInput) Description() string {
	return fmt.Sprintf("%s v %s (%s)", f.HomeTeam, f.AwayTeam, f.Date.Format("2006-01-02"))
}
