package predict

import (
	"fmt"
	"math"

	"github.com/JamieWeston/Football-Predictions/internal/logger"
)

///////////////////////////////////////////////////
////// Prediction accuracy
///////////////////////////////////////////////////

// PredictionScore says how one prediction fared against the real result
type PredictionScore struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`

	PredictedOutcome string `json:"predicted_outcome"`
	ActualOutcome    string `json:"actual_outcome"`
	OutcomeCorrect   bool   `json:"outcome_correct"`

	ExactScoreCorrect bool `json:"exact_score_correct"`
	Over2p5Correct    bool `json:"over_2_5_correct"`
	BttsCorrect       bool `json:"btts_correct"`

	// BrierScore is the squared error summed across the three outcomes.
	// Zero for a perfect call, two for a maximally confident wrong one
	BrierScore float64 `json:"brier_score"`
}

// EvaluatePrediction scores a prediction against a finished result.
// It refuses unfinished matches and results for a different fixture.
func EvaluatePrediction(pred *PredictionOutput, result *MatchResult) (*PredictionScore, error) {
	if pred == nil || result == nil {
		return nil, fmt.Errorf("need both a prediction and a result to evaluate")
	}
	if !result.IsFinished() {
		return nil, fmt.Errorf("cannot evaluate against unfinished match %s v %s", result.HomeTeam, result.AwayTeam)
	}
	if pred.Fixture.HomeTeam != result.HomeTeam || pred.Fixture.AwayTeam != result.AwayTeam {
		return nil, fmt.Errorf("prediction for %s v %s does not match result %s v %s",
			pred.Fixture.HomeTeam, pred.Fixture.AwayTeam, result.HomeTeam, result.AwayTeam)
	}

	actual := result.Outcome()
	predicted := pred.PredictedOutcome()

	var actualHome, actualDraw, actualAway float64
	switch actual {
	case OutcomeHome:
		actualHome = 1
	case OutcomeDraw:
		actualDraw = 1
	default:
		actualAway = 1
	}
	brier := math.Pow(pred.HomeWinProbability-actualHome, 2) +
		math.Pow(pred.DrawProbability-actualDraw, 2) +
		math.Pow(pred.AwayWinProbability-actualAway, 2)

	return &PredictionScore{
		HomeTeam:          result.HomeTeam,
		AwayTeam:          result.AwayTeam,
		PredictedOutcome:  predicted,
		ActualOutcome:     actual,
		OutcomeCorrect:    predicted == actual,
		ExactScoreCorrect: pred.MostLikelyScore == fmt.Sprintf("%d-%d", result.HomeGoals, result.AwayGoals),
		Over2p5Correct:    (pred.Over2p5Probability >= 0.5) == (result.TotalGoals() >= 3),
		BttsCorrect:       (pred.BttsProbability >= 0.5) == (result.HomeGoals >= 1 && result.AwayGoals >= 1),
		BrierScore:        brier,
	}, nil
}

// AccuracySummary rolls a batch of prediction scores up into hit rates
type AccuracySummary struct {
	TotalPredictions int `json:"total_predictions"`

	OutcomeCorrect    int     `json:"outcome_correct"`
	OutcomePercentage float64 `json:"outcome_percentage"`

	ExactScoreCorrect    int     `json:"exact_score_correct"`
	ExactScorePercentage float64 `json:"exact_score_percentage"`

	Over2p5Correct    int     `json:"over_2_5_correct"`
	Over2p5Percentage float64 `json:"over_2_5_percentage"`

	BttsCorrect    int     `json:"btts_correct"`
	BttsPercentage float64 `json:"btts_percentage"`

	MeanBrierScore float64 `json:"mean_brier_score"`
}

// AggregateAccuracy summarises individual scores into percentages.
// Returns nil when there is nothing to aggregate.
func AggregateAccuracy(scores []*PredictionScore) *AccuracySummary {
	if len(scores) == 0 {
		return nil
	}

	sum := &AccuracySummary{TotalPredictions: len(scores)}
	var brier float64
	for _, s := range scores {
		if s.OutcomeCorrect {
			sum.OutcomeCorrect++
		}
		if s.ExactScoreCorrect {
			sum.ExactScoreCorrect++
		}
		if s.Over2p5Correct {
			sum.Over2p5Correct++
		}
		if s.BttsCorrect {
			sum.BttsCorrect++
		}
		brier += s.BrierScore
	}

	n := float64(len(scores))
	sum.OutcomePercentage = round2(100 * float64(sum.OutcomeCorrect) / n)
	sum.ExactScorePercentage = round2(100 * float64(sum.ExactScoreCorrect) / n)
	sum.Over2p5Percentage = round2(100 * float64(sum.Over2p5Correct) / n)
	sum.BttsPercentage = round2(100 * float64(sum.BttsCorrect) / n)
	sum.MeanBrierScore = round4(brier / n)
	return sum
}

// EvaluateRun scores every prediction in a run that the store now has a
// finished result for. Fixtures still waiting to be played are skipped.
func EvaluateRun(store *MatchStore, res *RunResult) []*PredictionScore {
	var scores []*PredictionScore
	for i := range res.Predictions {
		p := &res.Predictions[i]
		m, ok := store.ResultFor(p.Fixture.HomeTeam, p.Fixture.AwayTeam, p.Fixture.Date)
		if !ok {
			continue
		}
		score, err := EvaluatePrediction(p, m)
		if err != nil {
			logger.Warn("Skipping evaluation for", p.Fixture.Description(), err)
			continue
		}
		scores = append(scores, score)
	}
	return scores
}
