package predict

import (
	"fmt"
	"math"
)

// Config holds every tunable used by the prediction engine.
// Each Engine keeps its own copy, so two runs with different settings can
// share a process without trampling each other's parameters.
type Config struct {
	// === FORM PARAMETERS ===

	// FormWindowSize is the number of most recent matches considered
	// when computing a team's form profile (default: 6)
	FormWindowSize int `json:"formWindowSize"`

	// FormWeight scales how strongly the recency weighted form gap
	// between the two sides bends the goal rates (default: 0.2)
	FormWeight float64 `json:"formWeight"`

	// === HEAD TO HEAD PARAMETERS ===

	// H2HMaxMatches is the most head to head meetings ever considered
	// for a pairing, newest first (default: 10)
	H2HMaxMatches int `json:"h2hMaxMatches"`

	// H2HMinSample is the fewest head to head meetings required before
	// the history influences the goal rates at all (default: 3)
	H2HMinSample int `json:"h2hMinSample"`

	// H2HWeight is the blend weight given to head to head scoring history
	// once the minimum sample is met (default: 0.25)
	H2HWeight float64 `json:"h2hWeight"`

	// === GOAL RATE PARAMETERS ===

	// GoalRateFloor is the lowest expected goals value the estimator will
	// ever emit for either side (default: 0.1)
	GoalRateFloor float64 `json:"goalRateFloor"`

	// MaxGoalRate caps expected goals so a freak scoring run can't push
	// the model into silly territory (default: 4.5)
	MaxGoalRate float64 `json:"maxGoalRate"`

	// LeagueAverageGoals is the per team per match scoring rate used as a
	// prior wherever real history is missing (default: 1.35)
	LeagueAverageGoals float64 `json:"leagueAverageGoals"`

	// HomeAdvantage multiplies the home side's expected goals (default: 1.12)
	HomeAdvantage float64 `json:"homeAdvantage"`

	// ShrinkageWeight pulls raw team scoring averages back toward the
	// league average, taming small samples (default: 0.15)
	ShrinkageWeight float64 `json:"shrinkageWeight"`

	// PositionWeight scales the league table gap adjustment. Zero disables
	// it entirely (default: 0.05)
	PositionWeight float64 `json:"positionWeight"`

	// === PROBABILITY MODEL PARAMETERS ===

	// ScorelineTruncation is the highest per side score enumerated in the
	// probability grid. The grid widens itself for large rates so the
	// truncated tail stays negligible (default: 10)
	ScorelineTruncation int `json:"scorelineTruncation"`

	// DixonColesRho adjusts the low scoring draw cells where independent
	// Poisson is known to be wrong. Negative values boost 0-0 and 1-1
	// (default: -0.05)
	DixonColesRho float64 `json:"dixonColesRho"`

	// === MARKET ODDS PARAMETERS ===

	// OddsBlendWeight is the share of the final 1X2 probabilities taken
	// from bookmaker odds when a fixture carries them. Zero keeps the
	// model purely historical (default: 0)
	OddsBlendWeight float64 `json:"oddsBlendWeight"`

	// === RUN PARAMETERS ===

	// Concurrency is the number of fixtures predicted in parallel.
	// Zero or one means strictly sequential (default: 4)
	Concurrency int `json:"concurrency"`
}

// DefaultConfig returns the standard engine settings
func DefaultConfig() Config {
	return Config{
		FormWindowSize:      6,
		FormWeight:          0.2,
		H2HMaxMatches:       10,
		H2HMinSample:        3,
		H2HWeight:           0.25,
		GoalRateFloor:       0.1,
		MaxGoalRate:         4.5,
		LeagueAverageGoals:  1.35,
		HomeAdvantage:       1.12,
		ShrinkageWeight:     0.15,
		PositionWeight:      0.05,
		ScorelineTruncation: 10,
		DixonColesRho:       -0.05,
		OddsBlendWeight:     0.0,
		Concurrency:         4,
	}
}

// Validate checks that every parameter is inside its sane range
func (c *Config) Validate() error {
	if c.FormWindowSize < 1 {
		return fmt.Errorf("formWindowSize must be at least 1, got: %d", c.FormWindowSize)
	}
	if c.H2HMaxMatches < 1 {
		return fmt.Errorf("h2hMaxMatches must be at least 1, got: %d", c.H2HMaxMatches)
	}
	if c.H2HMinSample < 1 {
		return fmt.Errorf("h2hMinSample must be at least 1, got: %d", c.H2HMinSample)
	}
	if c.H2HMinSample > c.H2HMaxMatches {
		return fmt.Errorf("h2hMinSample must not exceed h2hMaxMatches, got: %d > %d", c.H2HMinSample, c.H2HMaxMatches)
	}
	if c.GoalRateFloor <= 0 {
		return fmt.Errorf("goalRateFloor must be positive, got: %f", c.GoalRateFloor)
	}
	if c.MaxGoalRate <= c.GoalRateFloor {
		return fmt.Errorf("maxGoalRate must be above goalRateFloor, got: %f <= %f", c.MaxGoalRate, c.GoalRateFloor)
	}
	if c.LeagueAverageGoals <= 0 {
		return fmt.Errorf("leagueAverageGoals must be positive, got: %f", c.LeagueAverageGoals)
	}
	if c.HomeAdvantage < 1.0 {
		return fmt.Errorf("homeAdvantage must be at least 1.0, got: %f", c.HomeAdvantage)
	}
	if c.FormWeight < 0 || c.FormWeight > 1 {
		return fmt.Errorf("formWeight must be between 0.0 and 1.0, got: %f", c.FormWeight)
	}
	if c.H2HWeight < 0 || c.H2HWeight > 1 {
		return fmt.Errorf("h2hWeight must be between 0.0 and 1.0, got: %f", c.H2HWeight)
	}
	if c.ShrinkageWeight < 0 || c.ShrinkageWeight > 1 {
		return fmt.Errorf("shrinkageWeight must be between 0.0 and 1.0, got: %f", c.ShrinkageWeight)
	}
	if c.PositionWeight < 0 || c.PositionWeight > 1 {
		return fmt.Errorf("positionWeight must be between 0.0 and 1.0, got: %f", c.PositionWeight)
	}
	if c.OddsBlendWeight < 0 || c.OddsBlendWeight > 1 {
		return fmt.Errorf("oddsBlendWeight must be between 0.0 and 1.0, got: %f", c.OddsBlendWeight)
	}
	if c.ScorelineTruncation < 1 {
		return fmt.Errorf("scorelineTruncation must be at least 1, got: %d", c.ScorelineTruncation)
	}
	if math.Abs(c.DixonColesRho) >= 0.25 {
		return fmt.Errorf("dixonColesRho must be between -0.25 and 0.25, got: %f", c.DixonColesRho)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got: %d", c.Concurrency)
	}
	return nil
}
