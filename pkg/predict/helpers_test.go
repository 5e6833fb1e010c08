package predict

import (
	"time"
)

//////////////////////////////////////////////////////////
// Shared test fixtures
//////////////////////////////////////////////////////////

// mustDate parses a yyyy-mm-dd day at a three o'clock kickoff
func mustDate(day string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day+" 15:00")
	if err != nil {
		panic(err)
	}
	return t
}

// finished builds a completed league match, reading like a scoreline:
// finished("2025-01-04", "Arsenal", 2, 0, "Chelsea")
func finished(day, home string, homeGoals, awayGoals int, away string) MatchResult {
	return MatchResult{
		Date:      mustDate(day),
		League:    "E0",
		HomeTeam:  home,
		AwayTeam:  away,
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
		Status:    StatusFinished,
	}
}

// neutralProfile builds a form profile with flat venue splits and a
// neutral weighted form, so rate tests can vary one input at a time
func neutralProfile(team string, scored, conceded float64) TeamFormProfile {
	return TeamFormProfile{
		Team:                 team,
		MatchesFound:         6,
		RollingPoints:        1.35,
		WeightedForm:         neutralWeightedForm,
		GoalsScoredAvg:       scored,
		GoalsConcededAvg:     conceded,
		HomeGoalsScoredAvg:   scored,
		HomeGoalsConcededAvg: conceded,
		AwayGoalsScoredAvg:   scored,
		AwayGoalsConcededAvg: conceded,
	}
}

// seasonResults is a small two-month season across four clubs. Every
// pairing meets exactly twice
func seasonResults() []MatchResult {
	return []MatchResult{
		finished("2025-01-04", "Arsenal", 2, 0, "Chelsea"),
		finished("2025-01-04", "Leeds", 1, 1, "Everton"),
		finished("2025-01-11", "Chelsea", 1, 3, "Leeds"),
		finished("2025-01-11", "Everton", 0, 2, "Arsenal"),
		finished("2025-01-18", "Arsenal", 3, 1, "Leeds"),
		finished("2025-01-18", "Chelsea", 2, 2, "Everton"),
		finished("2025-01-25", "Leeds", 0, 0, "Arsenal"),
		finished("2025-01-25", "Everton", 1, 0, "Chelsea"),
		finished("2025-02-01", "Arsenal", 1, 0, "Chelsea"),
		finished("2025-02-01", "Leeds", 2, 1, "Everton"),
		finished("2025-02-08", "Chelsea", 0, 0, "Leeds"),
		finished("2025-02-08", "Everton", 2, 3, "Arsenal"),
	}
}

func seasonStore() *MatchStore {
	return NewMatchStore(seasonResults())
}

func floatPtr(v float64) *float64 {
	return &v
}
