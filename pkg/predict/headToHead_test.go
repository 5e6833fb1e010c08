package predict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadToHeadTalliesAndSymmetry(t *testing.T) {
	store := NewMatchStore([]MatchResult{
		finished("2024-09-01", "Leeds", 2, 0, "Arsenal"),
		finished("2025-01-04", "Arsenal", 3, 1, "Leeds"),
		finished("2025-02-08", "Arsenal", 1, 1, "Leeds"),
	})
	cfg := DefaultConfig()
	asOf := mustDate("2025-03-01")

	one := ComputeHeadToHead(store, &cfg, "Arsenal", "Leeds", asOf, 10)
	two := ComputeHeadToHead(store, &cfg, "Leeds", "Arsenal", asOf, 10)

	t.Log("Asking either way round produces the identical canonical summary")
	assert.Equal(t, one, two)
	assert.Equal(t, "Arsenal", one.TeamA)
	assert.Equal(t, "Leeds", one.TeamB)

	require.Equal(t, 3, one.MatchesConsidered)
	assert.Equal(t, 1, one.TeamAWins)
	assert.Equal(t, 1, one.Draws)
	assert.Equal(t, 1, one.TeamBWins)
	assert.Equal(t, 4, one.TeamAGoals)
	assert.Equal(t, 4, one.TeamBGoals)
	assert.InDelta(t, 8.0/3.0, one.AvgTotalGoals, 1e-9)

	assert.InDelta(t, 0.5, one.GoalShare("Arsenal"), 1e-9)
	assert.InDelta(t, 0.5, one.GoalShare("Leeds"), 1e-9)
}

func TestHeadToHeadNeverMet(t *testing.T) {
	t.Log("Two teams with no shared history get a neutral prior, never an error")
	store := NewMatchStore(nil)
	cfg := DefaultConfig()

	sum := ComputeHeadToHead(store, &cfg, "Zebra FC", "Aardvark Town", mustDate("2025-01-01"), cfg.H2HMaxMatches)

	assert.Equal(t, "Aardvark Town", sum.TeamA, "canonical ordering still applies")
	assert.Equal(t, "Zebra FC", sum.TeamB)
	assert.Zero(t, sum.MatchesConsidered)
	assert.Equal(t, 2*cfg.LeagueAverageGoals, sum.AvgTotalGoals)

	aWin, draw, bWin := sum.OutcomeRates()
	assert.InDelta(t, 1.0/3.0, aWin, 1e-9)
	assert.InDelta(t, 1.0/3.0, draw, 1e-9)
	assert.InDelta(t, 1.0/3.0, bWin, 1e-9)

	assert.Equal(t, 0.5, sum.GoalShare("Zebra FC"))
	assert.Equal(t, 0.5, sum.GoalShare("Aardvark Town"))
}

func TestHeadToHeadRespectsMaxMatches(t *testing.T) {
	var results []MatchResult
	for i := 0; i < 12; i++ {
		day := fmt.Sprintf("2024-%02d-01", i%12+1)
		if i >= 6 {
			// Newer half of the history: all Chelsea home wins
			results = append(results, finished(day, "Chelsea", 1, 0, "Arsenal"))
		} else {
			results = append(results, finished(day, "Arsenal", 2, 0, "Chelsea"))
		}
	}
	store := NewMatchStore(results)
	cfg := DefaultConfig()

	sum := ComputeHeadToHead(store, &cfg, "Arsenal", "Chelsea", mustDate("2025-06-01"), 10)

	require.Equal(t, 10, sum.MatchesConsidered)
	t.Log("The cap keeps the newest meetings: six Chelsea wins then four Arsenal wins")
	assert.Equal(t, 4, sum.TeamAWins)
	assert.Equal(t, 6, sum.TeamBWins)
	assert.Zero(t, sum.Draws)
}

func TestHeadToHeadGoalShareLopsided(t *testing.T) {
	store := NewMatchStore([]MatchResult{
		finished("2025-01-04", "Arsenal", 3, 0, "Chelsea"),
		finished("2025-01-11", "Chelsea", 1, 3, "Arsenal"),
	})
	cfg := DefaultConfig()

	sum := ComputeHeadToHead(store, &cfg, "Chelsea", "Arsenal", mustDate("2025-02-01"), 10)

	assert.InDelta(t, 6.0/7.0, sum.GoalShare("Arsenal"), 1e-9)
	assert.InDelta(t, 1.0/7.0, sum.GoalShare("Chelsea"), 1e-9)
	assert.Equal(t, 0.5, sum.GoalShare("Nobody"), "unknown team gets the neutral share")
}
