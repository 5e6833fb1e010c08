// Package predict turns historical football results into outcome
// probabilities for upcoming fixtures.
//
// For each fixture the pipeline distils form, head to head history and
// league priors into a pair of expected goals, pushes those through a
// Dixon-Coles adjusted Poisson scoreline model, and assembles the result
// into a rounded, validated PredictionOutput. Everything reads from an
// immutable MatchStore snapshot and all per-invocation state lives in the
// run itself, so fixtures can be predicted in parallel and concurrent
// runs never interfere.
package predict

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JamieWeston/Football-Predictions/internal/logger"
)

// ModelVersion names the algorithm baked into this build. Bump it when
// the maths changes so archived predictions stay comparable
const ModelVersion = "2.0-poisson-dc"

///////////////////////////////////////////////////
////// Engine
///////////////////////////////////////////////////

// Engine predicts fixtures against one historical snapshot.
// Nothing in it mutates after construction so it is safe to share.
type Engine struct {
	cfg   Config
	store *MatchStore
}

// NewEngine validates the configuration and binds it to a store
func NewEngine(cfg Config, store *MatchStore) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bad engine configuration: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("engine needs a match store")
	}
	return &Engine{cfg: cfg, store: store}, nil
}

// Config returns a copy of the engine's configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Store returns the snapshot the engine predicts against
func (e *Engine) Store() *MatchStore {
	return e.store
}

// RunResult carries everything one batch run produced
type RunResult struct {
	RunID        uuid.UUID          `json:"run_id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	ModelVersion string             `json:"model_version"`
	Predictions  []PredictionOutput `json:"predictions"`
}

/**
 * Run predicts every fixture in the batch and returns the outputs in the
 * same order the fixtures came in.
 *
 * Fixtures fan out across cfg.Concurrency workers. Form profiles, head to
 * head summaries and league averages are memoised inside the run, teams
 * that appear in several fixtures are only ever computed once. The first
 * fixture to fail cancels the rest and fails the whole run.
 */
func (e *Engine) Run(ctx context.Context, fixtures []FixtureInput) (*RunResult, error) {
	r := e.newRun()
	logger.Info("Starting prediction run", r.id.String(), "fixtures:", len(fixtures))

	outputs := make([]PredictionOutput, len(fixtures))
	g, ctx := errgroup.WithContext(ctx)
	limit := e.cfg.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range fixtures {
		i := i // per-iteration copy: required for correctness before Go 1.22 loopvar semantics
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := r.predict(fixtures[i])
			if err != nil {
				return fmt.Errorf("predicting %s: %w", fixtures[i].Description(), err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Highlight("Prediction run complete", r.id.String(), "fixtures:", len(fixtures))
	return &RunResult{
		RunID:        r.id,
		GeneratedAt:  r.generatedAt,
		ModelVersion: ModelVersion,
		Predictions:  outputs,
	}, nil
}

// PredictFixture predicts a single fixture in its own run context
func (e *Engine) PredictFixture(ctx context.Context, fixture FixtureInput) (PredictionOutput, error) {
	res, err := e.Run(ctx, []FixtureInput{fixture})
	if err != nil {
		return PredictionOutput{}, err
	}
	return res.Predictions[0], nil
}

///////////////////////////////////////////////////
////// Per run state
///////////////////////////////////////////////////

// run holds everything a single invocation accumulates. It dies with the
// invocation, which is what keeps concurrent runs independent.
type run struct {
	engine      *Engine
	id          uuid.UUID
	generatedAt time.Time

	mu         sync.Mutex
	forms      map[formKey]TeamFormProfile
	meetings   map[h2hKey]HeadToHeadSummary
	leagueAvgs map[string]float64
}

type formKey struct {
	team string
	asOf time.Time
}

type h2hKey struct {
	pair string
	asOf time.Time
}

func (e *Engine) newRun() *run {
	return &run{
		engine:      e,
		id:          uuid.New(),
		generatedAt: time.Now().UTC(),
		forms:       make(map[formKey]TeamFormProfile),
		meetings:    make(map[h2hKey]HeadToHeadSummary),
		leagueAvgs:  make(map[string]float64),
	}
}

// predict runs the full pipeline for one fixture
func (r *run) predict(fixture FixtureInput) (PredictionOutput, error) {
	if err := fixture.Validate(); err != nil {
		return PredictionOutput{}, err
	}
	cfg := &r.engine.cfg

	homeForm := r.formFor(fixture.HomeTeam, fixture.Date)
	awayForm := r.formFor(fixture.AwayTeam, fixture.Date)
	h2h := r.h2hFor(fixture.HomeTeam, fixture.AwayTeam, fixture.Date)
	leagueAvg := r.leagueAvgFor(fixture.League)

	lambdaHome, lambdaAway := EstimateGoalRates(cfg, fixture, homeForm, awayForm, h2h, leagueAvg)
	dist, err := PredictOutcome(cfg, lambdaHome, lambdaAway)
	if err != nil {
		return PredictionOutput{}, err
	}

	oddsUsed := blendMarketOdds(cfg, fixture, dist)
	confidence := confidenceFor(cfg, homeForm, awayForm, h2h, oddsUsed)

	logger.Debug("Estimated rates for", fixture.Description(), lambdaHome, lambdaAway)
	return AssemblePrediction(fixture, dist, r.generatedAt, confidence)
}

// formFor memoises ComputeForm per team and date for the life of the run
func (r *run) formFor(team string, asOf time.Time) TeamFormProfile {
	key := formKey{team: team, asOf: asOf}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.forms[key]; ok {
		return p
	}
	p := ComputeForm(r.engine.store, &r.engine.cfg, team, asOf, r.engine.cfg.FormWindowSize)
	r.forms[key] = p
	return p
}

// h2hFor memoises ComputeHeadToHead per pairing and date
func (r *run) h2hFor(teamA, teamB string, asOf time.Time) HeadToHeadSummary {
	key := h2hKey{pair: pairKey(teamA, teamB), asOf: asOf}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.meetings[key]; ok {
		return s
	}
	s := ComputeHeadToHead(r.engine.store, &r.engine.cfg, teamA, teamB, asOf, r.engine.cfg.H2HMaxMatches)
	r.meetings[key] = s
	return s
}

// leagueAvgFor memoises the league scoring average, falling back to the
// configured prior for leagues the store knows nothing about
func (r *run) leagueAvgFor(league string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.leagueAvgs[league]; ok {
		return v
	}
	v, ok := r.engine.store.LeagueAverageGoals(league)
	if !ok {
		v = r.engine.cfg.LeagueAverageGoals
	}
	r.leagueAvgs[league] = v
	return v
}

///////////////////////////////////////////////////
////// Market odds and confidence
///////////////////////////////////////////////////

/**
 * blendMarketOdds folds bookmaker 1X2 prices into the modelled outcome
 * probabilities when the fixture carries them and OddsBlendWeight is
 * above zero.
 *
 * The bookmaker margin is stripped first by normalizing the implied
 * probabilities. With the weight at zero, or without usable odds, the
 * distribution is left untouched and the model stays purely historical.
 * The over 2.5 and btts markets always come from the scoreline grid.
 */
func blendMarketOdds(cfg *Config, fixture FixtureInput, dist *OutcomeDistribution) bool {
	w := cfg.OddsBlendWeight
	if w <= 0 || !fixture.HasMarketOdds() {
		return false
	}

	impliedHome := 1 / *fixture.OddsHome
	impliedDraw := 1 / *fixture.OddsDraw
	impliedAway := 1 / *fixture.OddsAway
	overround := impliedHome + impliedDraw + impliedAway
	impliedHome /= overround
	impliedDraw /= overround
	impliedAway /= overround

	home := (1-w)*dist.HomeWin + w*impliedHome
	draw := (1-w)*dist.Draw + w*impliedDraw
	away := (1-w)*dist.AwayWin + w*impliedAway

	// Both trios sum to one already, normalize again to squash float drift
	total := home + draw + away
	dist.HomeWin = home / total
	dist.Draw = draw / total
	dist.AwayWin = away / total
	return true
}

// confidenceFor grades how much data stood behind a prediction, from 0.2
// for a pair of complete unknowns up to 0.9 with everything available
func confidenceFor(cfg *Config, homeForm, awayForm TeamFormProfile, h2h HeadToHeadSummary, oddsUsed bool) float64 {
	confidence := 0.5
	if homeForm.MatchesFound >= cfg.FormWindowSize {
		confidence += 0.1
	}
	if awayForm.MatchesFound >= cfg.FormWindowSize {
		confidence += 0.1
	}
	if h2h.MatchesConsidered >= cfg.H2HMinSample {
		confidence += 0.1
	}
	if oddsUsed {
		confidence += 0.1
	}
	if homeForm.MatchesFound == 0 || awayForm.MatchesFound == 0 {
		confidence -= 0.2
	}
	return clamp(confidence, 0.2, 0.9)
}
