package predict

import "time"

///////////////////////////////////////////////////
////// Head to head history
///////////////////////////////////////////////////

// HeadToHeadSummary tallies past meetings between a pair of teams.
// TeamA is always the lexicographically smaller name, so the same pairing
// produces the same summary whichever way round you ask for it.
type HeadToHeadSummary struct {
	TeamA             string  `json:"team_a"`
	TeamB             string  `json:"team_b"`
	MatchesConsidered int     `json:"matches_considered"`
	TeamAWins         int     `json:"team_a_wins"`
	Draws             int     `json:"draws"`
	TeamBWins         int     `json:"team_b_wins"`
	TeamAGoals        int     `json:"team_a_goals"`
	TeamBGoals        int     `json:"team_b_goals"`
	AvgTotalGoals     float64 `json:"avg_total_goals"`
}

// ComputeHeadToHead tallies up to maxMatches meetings between the two
// teams before the given date, newest first. Venue is ignored, a meeting
// at either ground counts the same. Teams that have never met get a
// summary carrying a neutral goals prior rather than an error.
func ComputeHeadToHead(store *MatchStore, cfg *Config, teamA, teamB string, asOf time.Time, maxMatches int) HeadToHeadSummary {
	a, b := teamA, teamB
	if a > b {
		a, b = b, a
	}
	sum := HeadToHeadSummary{TeamA: a, TeamB: b}

	meetings := store.Meetings(a, b, asOf, maxMatches)
	sum.MatchesConsidered = len(meetings)
	if len(meetings) == 0 {
		// What two run of the mill teams would be expected to produce
		sum.AvgTotalGoals = 2 * cfg.LeagueAverageGoals
		return sum
	}

	totalGoals := 0
	for _, m := range meetings {
		goalsA := m.GoalsFor(a)
		goalsB := m.GoalsFor(b)
		sum.TeamAGoals += goalsA
		sum.TeamBGoals += goalsB
		totalGoals += m.TotalGoals()
		switch {
		case goalsA > goalsB:
			sum.TeamAWins++
		case goalsA < goalsB:
			sum.TeamBWins++
		default:
			sum.Draws++
		}
	}
	sum.AvgTotalGoals = float64(totalGoals) / float64(len(meetings))
	return sum
}

// OutcomeRates returns the win/draw/win split of the considered meetings
// in canonical order. With nothing on record it returns even thirds.
func (h *HeadToHeadSummary) OutcomeRates() (teamAWin, draw, teamBWin float64) {
	if h.MatchesConsidered == 0 {
		return 1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0
	}
	n := float64(h.MatchesConsidered)
	return float64(h.TeamAWins) / n, float64(h.Draws) / n, float64(h.TeamBWins) / n
}

// GoalShare returns the share of head to head goals scored by the given
// team, 0.5 when there's nothing useful on record
func (h *HeadToHeadSummary) GoalShare(team string) float64 {
	total := h.TeamAGoals + h.TeamBGoals
	if h.MatchesConsidered == 0 || total == 0 {
		return 0.5
	}
	switch team {
	case h.TeamA:
		return float64(h.TeamAGoals) / float64(total)
	case h.TeamB:
		return float64(h.TeamBGoals) / float64(total)
	}
	return 0.5
}
