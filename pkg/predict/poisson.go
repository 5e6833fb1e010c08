package predict

import (
	"fmt"
	"math"
)

///////////////////////////////////////////////////
////// Poisson outcome model
///////////////////////////////////////////////////

// InvalidRateError reports goal rates the model cannot work with.
// This is the one failure the prediction pipeline treats as fatal
// for a fixture, everything upstream degrades gracefully instead.
type InvalidRateError struct {
	LambdaHome float64
	LambdaAway float64
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid goal rates: home=%v away=%v", e.LambdaHome, e.LambdaAway)
}

// OutcomeDistribution is the full probability picture for one fixture,
// derived analytically from the two goal rates
type OutcomeDistribution struct {
	LambdaHome float64 `json:"lambda_home"`
	LambdaAway float64 `json:"lambda_away"`

	HomeWin float64 `json:"home_win"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"away_win"`

	Over2p5          float64 `json:"over_2_5"`
	BothTeamsToScore float64 `json:"btts"`

	// TruncatedMass is the raw probability mass the enumerated grid caught
	// before renormalization. Anything much below 0.999 would mean the
	// grid was cut too tight for the rates in play
	TruncatedMass float64 `json:"truncated_mass"`

	// Grid[h][a] is the renormalized probability of the exact score h-a
	Grid [][]float64 `json:"-"`
}

/**
 * PredictOutcome runs a pair of goal rates through the Poisson scoreline
 * model and folds the grid into match level probabilities.
 *
 * Every scoreline from 0-0 up to the truncation bound is enumerated, the
 * four low scoring cells get the Dixon-Coles correction, and the whole
 * grid is renormalized so home + draw + away sums to exactly one. The
 * computation is fully deterministic, the same rates always produce the
 * same distribution.
 *
 * The only error is being handed a rate that is negative, NaN or infinite.
 */
func PredictOutcome(cfg *Config, lambdaHome, lambdaAway float64) (*OutcomeDistribution, error) {
	if !validRate(lambdaHome) || !validRate(lambdaAway) {
		return nil, &InvalidRateError{LambdaHome: lambdaHome, LambdaAway: lambdaAway}
	}

	bound := gridBound(cfg.ScorelineTruncation, lambdaHome, lambdaAway)
	grid, rawMass := scorelineGrid(lambdaHome, lambdaAway, bound)
	applyDixonColes(grid, lambdaHome, lambdaAway, cfg.DixonColesRho)
	renormalizeGrid(grid)

	d := &OutcomeDistribution{
		LambdaHome:    lambdaHome,
		LambdaAway:    lambdaAway,
		TruncatedMass: rawMass,
		Grid:          grid,
	}
	d.deriveOutcomes()
	return d, nil
}

// validRate accepts any finite non negative rate. Zero is fine, it just
// means that side never scores
func validRate(lambda float64) bool {
	return !math.IsNaN(lambda) && !math.IsInf(lambda, 0) && lambda >= 0
}

// gridBound picks the largest scoreline enumerated per side. Three times
// the bigger rate keeps the truncated tail below a thousandth even for
// freakishly high scoring fixtures
func gridBound(truncation int, lambdaHome, lambdaAway float64) int {
	bound := truncation
	if widened := int(math.Ceil(3 * math.Max(lambdaHome, lambdaAway))); widened > bound {
		bound = widened
	}
	return bound
}

/**
 * scorelineGrid builds the joint probability of every scoreline from 0-0
 * up to bound-bound under independent Poisson scoring.
 *
 * Returns the grid and the raw mass it captured, which sits just under
 * 1.0 because the enumeration has to stop somewhere.
 */
func scorelineGrid(lambdaHome, lambdaAway float64, bound int) ([][]float64, float64) {
	homePmf := make([]float64, bound+1)
	awayPmf := make([]float64, bound+1)
	for k := 0; k <= bound; k++ {
		homePmf[k] = poissonProb(lambdaHome, k)
		awayPmf[k] = poissonProb(lambdaAway, k)
	}

	grid := make([][]float64, bound+1)
	rawMass := 0.0
	for h := 0; h <= bound; h++ {
		grid[h] = make([]float64, bound+1)
		for a := 0; a <= bound; a++ {
			grid[h][a] = homePmf[h] * awayPmf[a]
			rawMass += grid[h][a]
		}
	}
	return grid, rawMass
}

// poissonProb returns P(X = k) for X ~ Poisson(lambda), computed in log
// space so big rates and scores don't underflow on the way through k!
func poissonProb(lambda float64, k int) float64 {
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	logProb := float64(k)*math.Log(lambda) - lambda - logFactorial(k)
	return math.Exp(logProb)
}

// logFactorial returns ln(k!)
func logFactorial(k int) float64 {
	sum := 0.0
	for i := 2; i <= k; i++ {
		sum += math.Log(float64(i))
	}
	return sum
}

// applyDixonColes scales the four low scoring cells by the Dixon-Coles
// tau adjustment. Independent Poisson underrates 0-0 and 1-1 and
// overrates 1-0 and 0-1, a negative rho corrects all four at once
func applyDixonColes(grid [][]float64, lambdaHome, lambdaAway, rho float64) {
	if rho == 0 || len(grid) < 2 {
		return
	}
	// Extreme rates could push a tau negative, never let a cell go below zero
	grid[0][0] = math.Max(0, grid[0][0]*(1-lambdaHome*lambdaAway*rho))
	grid[0][1] = math.Max(0, grid[0][1]*(1+lambdaHome*rho))
	grid[1][0] = math.Max(0, grid[1][0]*(1+lambdaAway*rho))
	grid[1][1] = math.Max(0, grid[1][1]*(1-rho))
}

// renormalizeGrid scales every cell so the grid sums to exactly one
func renormalizeGrid(grid [][]float64) {
	total := 0.0
	for _, row := range grid {
		for _, p := range row {
			total += p
		}
	}
	if total <= 0 {
		return
	}
	for i := range grid {
		for j := range grid[i] {
			grid[i][j] /= total
		}
	}
}

// deriveOutcomes folds the renormalized grid into match level probabilities
func (d *OutcomeDistribution) deriveOutcomes() {
	for h, row := range d.Grid {
		for a, p := range row {
			switch {
			case h > a:
				d.HomeWin += p
			case h == a:
				d.Draw += p
			default:
				d.AwayWin += p
			}
			if h+a >= 3 {
				d.Over2p5 += p
			}
			if h >= 1 && a >= 1 {
				d.BothTeamsToScore += p
			}
		}
	}
}

// OverGoals returns the probability of the two sides scoring more than
// line goals between them, for any asking line like 1.5 or 3.5
func (d *OutcomeDistribution) OverGoals(line float64) float64 {
	total := 0.0
	for h, row := range d.Grid {
		for a, p := range row {
			if float64(h+a) > line {
				total += p
			}
		}
	}
	return total
}

// MostLikelyScoreline returns the modal score in the grid. Ties go to the
// lower scoreline so the answer is stable
func (d *OutcomeDistribution) MostLikelyScoreline() (homeGoals, awayGoals int) {
	best := -1.0
	for h, row := range d.Grid {
		for a, p := range row {
			if p > best {
				best = p
				homeGoals, awayGoals = h, a
			}
		}
	}
	return homeGoals, awayGoals
}
