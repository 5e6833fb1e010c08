package predict

import (
	"math"
	"time"
)

///////////////////////////////////////////////////
////// Team form
///////////////////////////////////////////////////

// neutralWeightedForm is the recency weighted points value assumed for a
// team with no history at all. League wide points per match sit around 1.35
const neutralWeightedForm = 1.35

// formDecay is the per match recency decay used for weighted form.
// The newest match counts fully, the one before it 90% and so on
const formDecay = 0.9

// TeamFormProfile summarises a team's recent record as of a given date.
// Averages fall back through venue split, then overall, then the league
// average prior, so every field is always populated and usable.
type TeamFormProfile struct {
	Team         string    `json:"team"`
	AsOf         time.Time `json:"as_of_date"`
	MatchesFound int       `json:"matches_found"`

	// Points per match over the window, three for a win and one for a draw.
	// Zero when no matches were found
	RollingPoints float64 `json:"rolling_points"`

	// Recency weighted points per match over the same window
	WeightedForm float64 `json:"weighted_form"`

	GoalsScoredAvg   float64 `json:"goals_scored_avg"`
	GoalsConcededAvg float64 `json:"goals_conceded_avg"`

	HomeGoalsScoredAvg   float64 `json:"home_goals_scored_avg"`
	HomeGoalsConcededAvg float64 `json:"home_goals_conceded_avg"`
	AwayGoalsScoredAvg   float64 `json:"away_goals_scored_avg"`
	AwayGoalsConcededAvg float64 `json:"away_goals_conceded_avg"`
}

// ComputeForm builds the form profile for a team as of the given date,
// looking back over at most windowSize finished matches. Matches played on
// or after asOf never count, which keeps backtests honest.
func ComputeForm(store *MatchStore, cfg *Config, team string, asOf time.Time, windowSize int) TeamFormProfile {
	recent := store.RecentForTeam(team, asOf, windowSize)

	profile := TeamFormProfile{
		Team:         team,
		AsOf:         asOf,
		MatchesFound: len(recent),
	}

	var points int
	var weighted, weightSum float64
	var scored, conceded int
	var homeScored, homeConceded, homePlayed int
	var awayScored, awayConceded, awayPlayed int

	for i, m := range recent {
		pts := m.PointsFor(team)
		points += pts
		w := math.Pow(formDecay, float64(i))
		weighted += w * float64(pts)
		weightSum += w

		gf := m.GoalsFor(team)
		ga := m.GoalsAgainst(team)
		scored += gf
		conceded += ga
		if m.HomeTeam == team {
			homePlayed++
			homeScored += gf
			homeConceded += ga
		} else {
			awayPlayed++
			awayScored += gf
			awayConceded += ga
		}
	}

	// The max(1, n) divisor makes an empty window read as zero points
	profile.RollingPoints = float64(points) / math.Max(1, float64(len(recent)))

	if weightSum > 0 {
		profile.WeightedForm = weighted / weightSum
	} else {
		profile.WeightedForm = neutralWeightedForm
	}

	// Overall goal averages, league prior for a completely unknown team
	if len(recent) > 0 {
		profile.GoalsScoredAvg = float64(scored) / float64(len(recent))
		profile.GoalsConcededAvg = float64(conceded) / float64(len(recent))
	} else {
		profile.GoalsScoredAvg = cfg.LeagueAverageGoals
		profile.GoalsConcededAvg = cfg.LeagueAverageGoals
	}

	// Venue splits fall back to the overall averages when the team hasn't
	// played at that venue inside the window
	if homePlayed > 0 {
		profile.HomeGoalsScoredAvg = float64(homeScored) / float64(homePlayed)
		profile.HomeGoalsConcededAvg = float64(homeConceded) / float64(homePlayed)
	} else {
		profile.HomeGoalsScoredAvg = profile.GoalsScoredAvg
		profile.HomeGoalsConcededAvg = profile.GoalsConcededAvg
	}
	if awayPlayed > 0 {
		profile.AwayGoalsScoredAvg = float64(awayScored) / float64(awayPlayed)
		profile.AwayGoalsConcededAvg = float64(awayConceded) / float64(awayPlayed)
	} else {
		profile.AwayGoalsScoredAvg = profile.GoalsScoredAvg
		profile.AwayGoalsConcededAvg = profile.GoalsConcededAvg
	}

	return profile
}
