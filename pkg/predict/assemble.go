package predict

import (
	"fmt"
	"math"
	"time"
)

///////////////////////////////////////////////////
////// Prediction assembly
///////////////////////////////////////////////////

// probabilitySumTolerance is how far from 1.0 the outcome trio may drift
// before assembly refuses to ship it
const probabilitySumTolerance = 1e-6

// PredictionOutput is a finished prediction for one fixture, ready for
// serialization. Probabilities are rounded to four decimal places with
// the home/draw/away trio still summing to exactly one.
type PredictionOutput struct {
	Fixture FixtureInput `json:"fixture"`

	HomeWinProbability float64 `json:"home_win_probability"`
	DrawProbability    float64 `json:"draw_probability"`
	AwayWinProbability float64 `json:"away_win_probability"`

	Over2p5Probability float64 `json:"over_2_5_probability"`
	BttsProbability    float64 `json:"btts_probability"`

	ExpectedHomeGoals float64 `json:"expected_home_goals"`
	ExpectedAwayGoals float64 `json:"expected_away_goals"`

	MostLikelyScore string  `json:"most_likely_score"`
	Confidence      float64 `json:"confidence"`

	GeneratedAt time.Time `json:"generated_at"`
}

// PredictedOutcome returns "H", "D" or "A" for whichever outcome carries
// the most probability. Ties resolve in that order
func (p *PredictionOutput) PredictedOutcome() string {
	best := OutcomeHome
	bestProb := p.HomeWinProbability
	if p.DrawProbability > bestProb {
		best = OutcomeDraw
		bestProb = p.DrawProbability
	}
	if p.AwayWinProbability > bestProb {
		best = OutcomeAway
	}
	return best
}

/**
 * AssemblePrediction validates a distribution and stamps it into its final
 * output form.
 *
 * Checks are deliberately paranoid even though upstream already behaved:
 * the fixture fields must be present, every probability must be a real
 * number inside [0,1], and the outcome trio must sum to one within a
 * millionth. Only then is anything rounded for presentation.
 */
func AssemblePrediction(fixture FixtureInput, dist *OutcomeDistribution, generatedAt time.Time, confidence float64) (PredictionOutput, error) {
	if err := fixture.Validate(); err != nil {
		return PredictionOutput{}, err
	}
	if dist == nil {
		return PredictionOutput{}, fmt.Errorf("no distribution to assemble for %s", fixture.Description())
	}
	if generatedAt.IsZero() {
		return PredictionOutput{}, fmt.Errorf("missing generation timestamp for %s", fixture.Description())
	}

	checks := []struct {
		name string
		p    float64
	}{
		{"home win", dist.HomeWin},
		{"draw", dist.Draw},
		{"away win", dist.AwayWin},
		{"over 2.5", dist.Over2p5},
		{"btts", dist.BothTeamsToScore},
	}
	for _, c := range checks {
		if math.IsNaN(c.p) || math.IsInf(c.p, 0) || c.p < 0 || c.p > 1 {
			return PredictionOutput{}, fmt.Errorf("%s probability out of range for %s: %v", c.name, fixture.Description(), c.p)
		}
	}
	sum := dist.HomeWin + dist.Draw + dist.AwayWin
	if math.Abs(sum-1) > probabilitySumTolerance {
		return PredictionOutput{}, fmt.Errorf("outcome probabilities for %s sum to %.8f, expected 1", fixture.Description(), sum)
	}

	home, draw, away := roundOutcomeTrio(dist.HomeWin, dist.Draw, dist.AwayWin)
	modalHome, modalAway := dist.MostLikelyScoreline()

	return PredictionOutput{
		Fixture:            fixture,
		HomeWinProbability: home,
		DrawProbability:    draw,
		AwayWinProbability: away,
		Over2p5Probability: round4(dist.Over2p5),
		BttsProbability:    round4(dist.BothTeamsToScore),
		ExpectedHomeGoals:  round2(dist.LambdaHome),
		ExpectedAwayGoals:  round2(dist.LambdaAway),
		MostLikelyScore:    fmt.Sprintf("%d-%d", modalHome, modalAway),
		Confidence:         round2(clamp(confidence, 0, 1)),
		GeneratedAt:        generatedAt,
	}, nil
}

// roundOutcomeTrio rounds the three outcome probabilities to four decimal
// places and hands the rounding residue to the largest of them, so the
// rounded trio still sums to exactly one
func roundOutcomeTrio(home, draw, away float64) (float64, float64, float64) {
	h := round4(home)
	d := round4(draw)
	a := round4(away)
	residue := 1 - h - d - a
	switch {
	case h >= d && h >= a:
		h = round4(h + residue)
	case d >= a:
		d = round4(d + residue)
	default:
		a = round4(a + residue)
	}
	return h, d, a
}

// round4 rounds to four decimal places, the presentation precision
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
