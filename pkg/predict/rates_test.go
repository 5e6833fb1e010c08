package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateGoalRatesFloor(t *testing.T) {
	t.Log("Hopeless attacking numbers still never drop below the floor")
	cfg := DefaultConfig()
	home := neutralProfile("A", 0, 0)
	away := neutralProfile("B", 0, 0)

	lambdaHome, lambdaAway := EstimateGoalRates(&cfg, FixtureInput{HomeTeam: "A", AwayTeam: "B"}, home, away, HeadToHeadSummary{}, 0.01)

	assert.Equal(t, cfg.GoalRateFloor, lambdaHome)
	assert.Equal(t, cfg.GoalRateFloor, lambdaAway)
}

func TestEstimateGoalRatesCeiling(t *testing.T) {
	cfg := DefaultConfig()
	home := neutralProfile("A", 6, 6)
	away := neutralProfile("B", 6, 6)

	lambdaHome, lambdaAway := EstimateGoalRates(&cfg, FixtureInput{HomeTeam: "A", AwayTeam: "B"}, home, away, HeadToHeadSummary{}, 1.35)

	assert.Equal(t, cfg.MaxGoalRate, lambdaHome)
	assert.Equal(t, cfg.MaxGoalRate, lambdaAway)
}

func TestEstimateGoalRatesMonotonicInAttack(t *testing.T) {
	t.Log("A better home scoring record never lowers the home goal rate")
	cfg := DefaultConfig()
	away := neutralProfile("B", 1.2, 1.2)
	fixture := FixtureInput{HomeTeam: "A", AwayTeam: "B"}

	prev := -1.0
	for _, scored := range []float64{0.5, 1.0, 1.5, 2.0, 3.0} {
		home := neutralProfile("A", scored, 1.0)
		lambdaHome, _ := EstimateGoalRates(&cfg, fixture, home, away, HeadToHeadSummary{}, 1.35)
		assert.Greater(t, lambdaHome, prev, "scored avg %.1f", scored)
		prev = lambdaHome
	}
}

func TestEstimateGoalRatesHomeAdvantage(t *testing.T) {
	t.Log("With perfectly symmetric sides the only difference left is home advantage")
	cfg := DefaultConfig()
	cfg.HomeAdvantage = 1.25
	home := neutralProfile("A", 1.4, 1.1)
	away := neutralProfile("B", 1.4, 1.1)

	lambdaHome, lambdaAway := EstimateGoalRates(&cfg, FixtureInput{HomeTeam: "A", AwayTeam: "B"}, home, away, HeadToHeadSummary{}, 1.35)

	assert.InDelta(t, lambdaAway*1.25, lambdaHome, 1e-9)
}

func TestEstimateGoalRatesHeadToHeadGate(t *testing.T) {
	cfg := DefaultConfig()
	home := neutralProfile("A", 1.0, 1.0)
	away := neutralProfile("B", 1.0, 1.0)
	fixture := FixtureInput{HomeTeam: "A", AwayTeam: "B"}

	baseHome, baseAway := EstimateGoalRates(&cfg, fixture, home, away, HeadToHeadSummary{}, 1.35)

	t.Log("Below the minimum sample the head to head history is ignored entirely")
	thin := HeadToHeadSummary{TeamA: "A", TeamB: "B", MatchesConsidered: cfg.H2HMinSample - 1, TeamAGoals: 10, TeamBGoals: 0, AvgTotalGoals: 5}
	thinHome, thinAway := EstimateGoalRates(&cfg, fixture, home, away, thin, 1.35)
	assert.Equal(t, baseHome, thinHome)
	assert.Equal(t, baseAway, thinAway)

	t.Log("At the minimum sample a lopsided history starts pulling the rates")
	rich := thin
	rich.MatchesConsidered = cfg.H2HMinSample
	richHome, richAway := EstimateGoalRates(&cfg, fixture, home, away, rich, 1.35)
	assert.Greater(t, richHome, baseHome, "A scored every head to head goal")
	assert.Less(t, richAway, baseAway)
}

func TestEstimateGoalRatesPositionTilt(t *testing.T) {
	cfg := DefaultConfig()
	home := neutralProfile("A", 1.3, 1.0)
	away := neutralProfile("B", 1.3, 1.0)

	plain := FixtureInput{HomeTeam: "A", AwayTeam: "B"}
	baseHome, baseAway := EstimateGoalRates(&cfg, plain, home, away, HeadToHeadSummary{}, 1.35)

	t.Log("Leaders at home to strugglers get a boost, reversed for the visitors")
	tilted := plain
	tilted.LeaguePositionHome = 1
	tilted.LeaguePositionAway = 20
	tiltHome, tiltAway := EstimateGoalRates(&cfg, tilted, home, away, HeadToHeadSummary{}, 1.35)
	assert.Greater(t, tiltHome, baseHome)
	assert.Less(t, tiltAway, baseAway)

	t.Log("An unknown position on either side disables the tilt")
	half := plain
	half.LeaguePositionHome = 1
	halfHome, halfAway := EstimateGoalRates(&cfg, half, home, away, HeadToHeadSummary{}, 1.35)
	assert.Equal(t, baseHome, halfHome)
	assert.Equal(t, baseAway, halfAway)
}

func TestEstimateGoalRatesFormTilt(t *testing.T) {
	cfg := DefaultConfig()
	fixture := FixtureInput{HomeTeam: "A", AwayTeam: "B"}

	inForm := neutralProfile("A", 1.2, 1.2)
	inForm.WeightedForm = 2.7
	outOfForm := neutralProfile("B", 1.2, 1.2)
	outOfForm.WeightedForm = 0.3

	lambdaHome, lambdaAway := EstimateGoalRates(&cfg, fixture, inForm, outOfForm, HeadToHeadSummary{}, 1.35)

	flatHome := neutralProfile("A", 1.2, 1.2)
	flatAway := neutralProfile("B", 1.2, 1.2)
	baseHome, baseAway := EstimateGoalRates(&cfg, fixture, flatHome, flatAway, HeadToHeadSummary{}, 1.35)

	assert.Greater(t, lambdaHome, baseHome, "hot side over a cold side picks up goals")
	assert.Less(t, lambdaAway, baseAway)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, clamp(0.2, 0.5, 2.0))
	assert.Equal(t, 2.0, clamp(3.7, 0.5, 2.0))
	assert.Equal(t, 1.1, clamp(1.1, 0.5, 2.0))
}
