package datasource

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/JamieWeston/Football-Predictions/internal/logger"
	"github.com/JamieWeston/Football-Predictions/pkg/predict"
)

///////////////////////////////////////////////////
////// Archive rows
///////////////////////////////////////////////////

// Dates in the archive are stored as RFC3339 text, sqlite sorts and
// compares them correctly in that form
const archiveTimeFormat = time.RFC3339

// MatchRecord is the archive row for one historical result
type MatchRecord struct {
	ID        string `json:"id" column:"id" dbtype:"TEXT" primary:"true"`
	Date      string `json:"date" column:"date" dbtype:"TEXT" index:"true"`
	League    string `json:"league" column:"league" dbtype:"TEXT" index:"true"`
	HomeTeam  string `json:"home_team" column:"home_team" dbtype:"TEXT" index:"true"`
	AwayTeam  string `json:"away_team" column:"away_team" dbtype:"TEXT" index:"true"`
	HomeGoals int    `json:"home_goals" column:"home_goals" dbtype:"INTEGER"`
	AwayGoals int    `json:"away_goals" column:"away_goals" dbtype:"INTEGER"`
	Status    string `json:"status" column:"status" dbtype:"TEXT"`
	CreatedAt string `json:"created_at" column:"created_at" dbtype:"TEXT"`
	UpdatedAt string `json:"updated_at" column:"updated_at" dbtype:"TEXT"`
}

// NewMatchRecord converts a domain result into its archive row
func NewMatchRecord(m predict.MatchResult) *MatchRecord {
	return &MatchRecord{
		ID:        recordID(m.Date, m.HomeTeam, m.AwayTeam),
		Date:      m.Date.UTC().Format(archiveTimeFormat),
		League:    m.League,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		HomeGoals: m.HomeGoals,
		AwayGoals: m.AwayGoals,
		Status:    m.Status,
	}
}

// ToResult converts the archive row back into the domain type
func (r *MatchRecord) ToResult() (predict.MatchResult, error) {
	date, err := time.Parse(archiveTimeFormat, r.Date)
	if err != nil {
		return predict.MatchResult{}, fmt.Errorf("match record %s has a bad date %q: %w", r.ID, r.Date, err)
	}
	return predict.MatchResult{
		Date:      date,
		League:    r.League,
		HomeTeam:  r.HomeTeam,
		AwayTeam:  r.AwayTeam,
		HomeGoals: r.HomeGoals,
		AwayGoals: r.AwayGoals,
		Status:    r.Status,
	}, nil
}

func (r *MatchRecord) GetTableName() string {
	return "matches"
}

func (r *MatchRecord) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"id": r.ID}
}

func (r *MatchRecord) SetPrimaryKey(pk map[string]interface{}) error {
	id, ok := pk["id"].(string)
	if !ok {
		return fmt.Errorf("match record primary key must be a string id")
	}
	r.ID = id
	return nil
}

// BeforeSave fills in the row id and timestamps
func (r *MatchRecord) BeforeSave() error {
	if r.HomeTeam == "" || r.AwayTeam == "" {
		return fmt.Errorf("match record is missing a team name")
	}
	if r.ID == "" {
		date, err := time.Parse(archiveTimeFormat, r.Date)
		if err != nil {
			return fmt.Errorf("cannot build an id from date %q: %w", r.Date, err)
		}
		r.ID = recordID(date, r.HomeTeam, r.AwayTeam)
	}
	now := time.Now().UTC().Format(archiveTimeFormat)
	if r.CreatedAt == "" {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

func (r *MatchRecord) AfterSave() error    { return nil }
func (r *MatchRecord) BeforeDelete() error { return nil }
func (r *MatchRecord) AfterDelete() error  { return nil }

// PredictionRecord is the archive row for one generated prediction.
// The row id is the fixture, not the run, so re-running a fixture
// overwrites the previous call and the archive keeps only the latest.
type PredictionRecord struct {
	ID                string  `json:"id" column:"id" dbtype:"TEXT" primary:"true"`
	RunID             string  `json:"run_id" column:"run_id" dbtype:"TEXT" index:"true"`
	MatchDate         string  `json:"match_date" column:"match_date" dbtype:"TEXT" index:"true"`
	League            string  `json:"league" column:"league" dbtype:"TEXT"`
	HomeTeam          string  `json:"home_team" column:"home_team" dbtype:"TEXT" index:"true"`
	AwayTeam          string  `json:"away_team" column:"away_team" dbtype:"TEXT" index:"true"`
	HomeWin           float64 `json:"home_win_probability" column:"home_win" dbtype:"REAL"`
	Draw              float64 `json:"draw_probability" column:"draw" dbtype:"REAL"`
	AwayWin           float64 `json:"away_win_probability" column:"away_win" dbtype:"REAL"`
	Over2p5           float64 `json:"over_2_5_probability" column:"over_2_5" dbtype:"REAL"`
	Btts              float64 `json:"btts_probability" column:"btts" dbtype:"REAL"`
	ExpectedHomeGoals float64 `json:"expected_home_goals" column:"expected_home_goals" dbtype:"REAL"`
	ExpectedAwayGoals float64 `json:"expected_away_goals" column:"expected_away_goals" dbtype:"REAL"`
	MostLikelyScore   string  `json:"most_likely_score" column:"most_likely_score" dbtype:"TEXT"`
	Confidence        float64 `json:"confidence" column:"confidence" dbtype:"REAL"`
	ModelVersion      string  `json:"model_version" column:"model_version" dbtype:"TEXT"`
	GeneratedAt       string  `json:"generated_at" column:"generated_at" dbtype:"TEXT"`
	CreatedAt         string  `json:"created_at" column:"created_at" dbtype:"TEXT"`
	UpdatedAt         string  `json:"updated_at" column:"updated_at" dbtype:"TEXT"`
}

// NewPredictionRecord flattens one run output into its archive row
func NewPredictionRecord(runID, modelVersion string, p predict.PredictionOutput) *PredictionRecord {
	return &PredictionRecord{
		ID:                recordID(p.Fixture.Date, p.Fixture.HomeTeam, p.Fixture.AwayTeam),
		RunID:             runID,
		MatchDate:         p.Fixture.Date.UTC().Format(archiveTimeFormat),
		League:            p.Fixture.League,
		HomeTeam:          p.Fixture.HomeTeam,
		AwayTeam:          p.Fixture.AwayTeam,
		HomeWin:           p.HomeWinProbability,
		Draw:              p.DrawProbability,
		AwayWin:           p.AwayWinProbability,
		Over2p5:           p.Over2p5Probability,
		Btts:              p.BttsProbability,
		ExpectedHomeGoals: p.ExpectedHomeGoals,
		ExpectedAwayGoals: p.ExpectedAwayGoals,
		MostLikelyScore:   p.MostLikelyScore,
		Confidence:        p.Confidence,
		ModelVersion:      modelVersion,
		GeneratedAt:       p.GeneratedAt.UTC().Format(archiveTimeFormat),
	}
}

// ToOutput rebuilds a prediction output from the archived row, mainly so
// old predictions can be scored once results arrive
func (r *PredictionRecord) ToOutput() (predict.PredictionOutput, error) {
	matchDate, err := time.Parse(archiveTimeFormat, r.MatchDate)
	if err != nil {
		return predict.PredictionOutput{}, fmt.Errorf("prediction record %s has a bad match date %q: %w", r.ID, r.MatchDate, err)
	}
	generatedAt, err := time.Parse(archiveTimeFormat, r.GeneratedAt)
	if err != nil {
		return predict.PredictionOutput{}, fmt.Errorf("prediction record %s has a bad generation time %q: %w", r.ID, r.GeneratedAt, err)
	}
	return predict.PredictionOutput{
		Fixture: predict.FixtureInput{
			Date:     matchDate,
			League:   r.League,
			HomeTeam: r.HomeTeam,
			AwayTeam: r.AwayTeam,
		},
		HomeWinProbability: r.HomeWin,
		DrawProbability:    r.Draw,
		AwayWinProbability: r.AwayWin,
		Over2p5Probability: r.Over2p5,
		BttsProbability:    r.Btts,
		ExpectedHomeGoals:  r.ExpectedHomeGoals,
		ExpectedAwayGoals:  r.ExpectedAwayGoals,
		MostLikelyScore:    r.MostLikelyScore,
		Confidence:         r.Confidence,
		GeneratedAt:        generatedAt,
	}, nil
}

func (r *PredictionRecord) GetTableName() string {
	return "predictions"
}

func (r *PredictionRecord) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"id": r.ID}
}

func (r *PredictionRecord) SetPrimaryKey(pk map[string]interface{}) error {
	id, ok := pk["id"].(string)
	if !ok {
		return fmt.Errorf("prediction record primary key must be a string id")
	}
	r.ID = id
	return nil
}

// BeforeSave fills in the row id and timestamps
func (r *PredictionRecord) BeforeSave() error {
	if r.HomeTeam == "" || r.AwayTeam == "" {
		return fmt.Errorf("prediction record is missing a team name")
	}
	if r.ID == "" {
		date, err := time.Parse(archiveTimeFormat, r.MatchDate)
		if err != nil {
			return fmt.Errorf("cannot build an id from match date %q: %w", r.MatchDate, err)
		}
		r.ID = recordID(date, r.HomeTeam, r.AwayTeam)
	}
	now := time.Now().UTC().Format(archiveTimeFormat)
	if r.CreatedAt == "" {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

func (r *PredictionRecord) AfterSave() error    { return nil }
func (r *PredictionRecord) BeforeDelete() error { return nil }
func (r *PredictionRecord) AfterDelete() error  { return nil }

// recordID builds a stable row id like 20250823_arsenal_chelsea
func recordID(date time.Time, home, away string) string {
	return fmt.Sprintf("%s_%s_%s", date.UTC().Format("20060102"), slugify(home), slugify(away))
}

// slugify flattens a team name for use inside a row id
func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

///////////////////////////////////////////////////
////// Batch helpers
///////////////////////////////////////////////////

// SaveResults upserts a batch of results into the archive
func (a *Archive) SaveResults(results []predict.MatchResult) error {
	records := make([]Persistable, 0, len(results))
	for _, m := range results {
		records = append(records, NewMatchRecord(m))
	}
	if err := a.BulkSave(records); err != nil {
		return err
	}
	logger.Info("Archived results", len(records))
	return nil
}

// LoadResults returns every archived result, oldest first.
// Rows that no longer parse are logged and skipped rather than sinking
// the whole load.
func (a *Archive) LoadResults() ([]predict.MatchResult, error) {
	rows, err := a.FindAll(&MatchRecord{})
	if err != nil {
		return nil, err
	}

	out := make([]predict.MatchResult, 0, len(rows))
	for _, row := range rows {
		rec, ok := row.(*MatchRecord)
		if !ok {
			continue
		}
		m, err := rec.ToResult()
		if err != nil {
			logger.Warn("Skipping unreadable match record", rec.ID, err)
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// SavePredictions archives everything a run produced
func (a *Archive) SavePredictions(res *predict.RunResult) error {
	records := make([]Persistable, 0, len(res.Predictions))
	for _, p := range res.Predictions {
		records = append(records, NewPredictionRecord(res.RunID.String(), res.ModelVersion, p))
	}
	if err := a.BulkSave(records); err != nil {
		return err
	}
	logger.Info("Archived predictions", len(records))
	return nil
}

// LoadPredictions returns every archived prediction as outputs ready for
// scoring against later results
func (a *Archive) LoadPredictions() ([]predict.PredictionOutput, error) {
	rows, err := a.FindAll(&PredictionRecord{})
	if err != nil {
		return nil, err
	}

	out := make([]predict.PredictionOutput, 0, len(rows))
	for _, row := range rows {
		rec, ok := row.(*PredictionRecord)
		if !ok {
			continue
		}
		p, err := rec.ToOutput()
		if err != nil {
			logger.Warn("Skipping unreadable prediction record", rec.ID, err)
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Fixture.Date.Before(out[j].Fixture.Date)
	})
	return out, nil
}
