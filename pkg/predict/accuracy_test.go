package predict

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredPrediction(home, away string, day string, h, d, a float64) *PredictionOutput {
	return &PredictionOutput{
		Fixture:            FixtureInput{Date: mustDate(day), League: "E0", HomeTeam: home, AwayTeam: away},
		HomeWinProbability: h,
		DrawProbability:    d,
		AwayWinProbability: a,
		Over2p5Probability: 0.6,
		BttsProbability:    0.4,
		MostLikelyScore:    "2-0",
		GeneratedAt:        mustDate(day),
	}
}

func TestEvaluatePredictionHit(t *testing.T) {
	pred := scoredPrediction("Arsenal", "Chelsea", "2025-01-04", 0.6, 0.25, 0.15)
	result := finished("2025-01-04", "Arsenal", 2, 0, "Chelsea")

	score, err := EvaluatePrediction(pred, &result)
	require.NoError(t, err)

	assert.Equal(t, OutcomeHome, score.PredictedOutcome)
	assert.Equal(t, OutcomeHome, score.ActualOutcome)
	assert.True(t, score.OutcomeCorrect)
	assert.True(t, score.ExactScoreCorrect, "called the 2-0 on the nose")
	assert.False(t, score.Over2p5Correct, "called over but only two goals arrived")
	assert.True(t, score.BttsCorrect, "called no and Chelsea indeed never scored")

	// One-hot Brier: (0.6-1)^2 + 0.25^2 + 0.15^2
	assert.InDelta(t, 0.245, score.BrierScore, 1e-9)
}

func TestEvaluatePredictionMiss(t *testing.T) {
	pred := scoredPrediction("Arsenal", "Chelsea", "2025-01-04", 0.6, 0.25, 0.15)
	result := finished("2025-01-04", "Arsenal", 1, 2, "Chelsea")

	score, err := EvaluatePrediction(pred, &result)
	require.NoError(t, err)

	assert.False(t, score.OutcomeCorrect)
	assert.Equal(t, OutcomeAway, score.ActualOutcome)
	assert.False(t, score.ExactScoreCorrect)
	assert.True(t, score.Over2p5Correct, "called over and three goals arrived")
	assert.False(t, score.BttsCorrect, "called no but both sides scored")

	// (0.6)^2 + (0.25)^2 + (0.15-1)^2
	assert.InDelta(t, 0.36+0.0625+0.7225, score.BrierScore, 1e-9)
}

func TestEvaluatePredictionPerfectBrier(t *testing.T) {
	pred := scoredPrediction("Arsenal", "Chelsea", "2025-01-04", 1, 0, 0)
	result := finished("2025-01-04", "Arsenal", 3, 1, "Chelsea")

	score, err := EvaluatePrediction(pred, &result)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score.BrierScore, 1e-12, "certainty that comes true scores zero")
}

func TestEvaluatePredictionRefusals(t *testing.T) {
	pred := scoredPrediction("Arsenal", "Chelsea", "2025-01-04", 0.6, 0.25, 0.15)

	_, err := EvaluatePrediction(nil, nil)
	require.Error(t, err)

	unplayed := MatchResult{Date: mustDate("2025-01-04"), HomeTeam: "Arsenal", AwayTeam: "Chelsea", Status: StatusScheduled}
	_, err = EvaluatePrediction(pred, &unplayed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unfinished")

	other := finished("2025-01-04", "Leeds", 2, 0, "Everton")
	_, err = EvaluatePrediction(pred, &other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestAggregateAccuracy(t *testing.T) {
	scores := []*PredictionScore{
		{OutcomeCorrect: true, ExactScoreCorrect: true, Over2p5Correct: true, BttsCorrect: true, BrierScore: 0.1},
		{OutcomeCorrect: true, Over2p5Correct: true, BrierScore: 0.2},
		{BttsCorrect: true, BrierScore: 0.3},
	}

	sum := AggregateAccuracy(scores)
	require.NotNil(t, sum)

	assert.Equal(t, 3, sum.TotalPredictions)
	assert.Equal(t, 2, sum.OutcomeCorrect)
	assert.InDelta(t, 66.67, sum.OutcomePercentage, 1e-9)
	assert.Equal(t, 1, sum.ExactScoreCorrect)
	assert.InDelta(t, 33.33, sum.ExactScorePercentage, 1e-9)
	assert.InDelta(t, 66.67, sum.Over2p5Percentage, 1e-9)
	assert.InDelta(t, 66.67, sum.BttsPercentage, 1e-9)
	assert.InDelta(t, 0.2, sum.MeanBrierScore, 1e-9)

	assert.Nil(t, AggregateAccuracy(nil), "nothing to aggregate")
}

func TestEvaluateRunSkipsUnplayedFixtures(t *testing.T) {
	store := seasonStore()
	res := &RunResult{
		RunID:        uuid.New(),
		GeneratedAt:  time.Now().UTC(),
		ModelVersion: ModelVersion,
		Predictions: []PredictionOutput{
			*scoredPrediction("Arsenal", "Chelsea", "2025-01-04", 0.6, 0.25, 0.15),
			*scoredPrediction("Arsenal", "Chelsea", "2025-06-01", 0.6, 0.25, 0.15),
		},
	}

	scores := EvaluateRun(store, res)

	require.Len(t, scores, 1, "the June fixture has no result yet")
	assert.Equal(t, "Arsenal", scores[0].HomeTeam)
	assert.True(t, scores[0].OutcomeCorrect)
}
