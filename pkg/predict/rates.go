package predict

import "math"

///////////////////////////////////////////////////
////// Expected goals estimation
///////////////////////////////////////////////////

/**
 * EstimateGoalRates turns the two form profiles, the head to head history
 * and the league prior into expected goals for each side.
 *
 * The pipeline runs the same way for both teams:
 *   1. average the side's venue specific scoring rate with what the
 *      opposition concedes at their venue
 *   2. shrink toward the league average to tame small samples
 *   3. tilt by the recency weighted form gap
 *   4. blend in head to head scoring once the sample is big enough
 *   5. tilt by league table positions when both are known
 * then the home side takes its home advantage bump and both rates are
 * clamped into [GoalRateFloor, MaxGoalRate].
 */
func EstimateGoalRates(cfg *Config, fixture FixtureInput, homeForm, awayForm TeamFormProfile, h2h HeadToHeadSummary, leagueAvg float64) (lambdaHome, lambdaAway float64) {
	// 1. Venue specific attack against venue specific defence
	lambdaHome = 0.5*homeForm.HomeGoalsScoredAvg + 0.5*awayForm.AwayGoalsConcededAvg
	lambdaAway = 0.5*awayForm.AwayGoalsScoredAvg + 0.5*homeForm.HomeGoalsConcededAvg

	// 2. Shrink toward the league average
	s := cfg.ShrinkageWeight
	lambdaHome = (1-s)*lambdaHome + s*leagueAvg
	lambdaAway = (1-s)*lambdaAway + s*leagueAvg

	// 3. Form tilt. Weighted form lives on a 0..3 points scale so the gap
	// comes back down to roughly -1..1 before weighting
	formGap := (homeForm.WeightedForm - awayForm.WeightedForm) / 3.0
	lambdaHome *= clamp(1+cfg.FormWeight*formGap, 0.75, 1.25)
	lambdaAway *= clamp(1-cfg.FormWeight*formGap, 0.75, 1.25)

	// 4. Head to head blend, only once the sample is meaningful
	if h2h.MatchesConsidered >= cfg.H2HMinSample {
		w := cfg.H2HWeight
		lambdaHome = (1-w)*lambdaHome + w*h2h.AvgTotalGoals*h2h.GoalShare(fixture.HomeTeam)
		lambdaAway = (1-w)*lambdaAway + w*h2h.AvgTotalGoals*h2h.GoalShare(fixture.AwayTeam)
	}

	// 5. League table tilt when both positions are known, twenty places
	// reading as a whole tier of difference
	if fixture.LeaguePositionHome > 0 && fixture.LeaguePositionAway > 0 {
		posGap := float64(fixture.LeaguePositionAway-fixture.LeaguePositionHome) / 20.0
		lambdaHome *= clamp(1+cfg.PositionWeight*posGap, 0.8, 1.2)
		lambdaAway *= clamp(1-cfg.PositionWeight*posGap, 0.8, 1.2)
	}

	// 6. Home advantage
	lambdaHome *= cfg.HomeAdvantage

	// 7. Keep both rates in sane territory
	lambdaHome = clamp(lambdaHome, cfg.GoalRateFloor, cfg.MaxGoalRate)
	lambdaAway = clamp(lambdaAway, cfg.GoalRateFloor, cfg.MaxGoalRate)

	return lambdaHome, lambdaAway
}

// clamp pins v into the closed range [lo, hi]
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
