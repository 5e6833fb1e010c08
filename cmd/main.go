package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/JamieWeston/Football-Predictions/internal/logger"
	"github.com/JamieWeston/Football-Predictions/pkg/datasource"
	"github.com/JamieWeston/Football-Predictions/pkg/predict"
)

func main() {
	dataDir := flag.String("data", "", "directory of football-data csv result files")
	fixturesPath := flag.String("fixtures", "", "csv file of fixtures to predict")
	archivePath := flag.String("db", "", "sqlite archive path, empty disables archiving")
	evaluate := flag.Bool("evaluate", false, "score archived predictions against known results and exit")
	logOutput := flag.String("log", "c", "log destination: c console, f file, b both")
	verbose := flag.Bool("v", false, "debug logging")
	quiet := flag.Bool("q", false, "warnings and errors only")
	flag.Parse()

	// Configure logging before anything else says a word
	logger.SetShowDateTime(true)
	switch *logOutput {
	case "c", "f", "b":
		logger.SetLogOutput(rune((*logOutput)[0]))
	default:
		fmt.Fprintf(os.Stderr, "invalid -log value %q, want c, f or b\n", *logOutput)
		os.Exit(2)
	}
	if lvl := os.Getenv("PREDICT_LOG_LEVEL"); lvl != "" {
		logger.SetLevel(logger.ParseLevel(lvl))
	}
	if *verbose {
		logger.SetLevel(logger.DEBUG)
	}
	if *quiet {
		logger.SetLevel(logger.WARN)
	}

	cfg := predict.DefaultConfig()
	applyEnvOverrides(&cfg)

	if err := run(*dataDir, *fixturesPath, *archivePath, *evaluate, cfg); err != nil {
		logger.Error("Run failed:", err)
		os.Exit(1)
	}
}

// run wires the loaders, the store and the engine together and writes
// whatever the mode produced to stdout as JSON
func run(dataDir, fixturesPath, archivePath string, evaluate bool, cfg predict.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var archive *datasource.Archive
	if archivePath != "" {
		var err error
		archive, err = datasource.OpenArchive(archivePath)
		if err != nil {
			return err
		}
		defer archive.Close()
	}

	results, err := loadResults(dataDir, archive)
	if err != nil {
		return err
	}
	// Fresh csv data also tops up the archive for later runs
	if archive != nil && dataDir != "" {
		if err := archive.SaveResults(results); err != nil {
			return fmt.Errorf("archiving results: %w", err)
		}
	}

	store := predict.NewMatchStore(results)
	logger.Info("Store ready", "teams:", len(store.Teams()), "finished matches:", store.FinishedCount())

	if evaluate {
		if archive == nil {
			return fmt.Errorf("evaluate mode needs -db pointing at an archive of predictions")
		}
		return evaluateArchive(store, archive)
	}

	if fixturesPath == "" {
		return fmt.Errorf("nothing to do, pass -fixtures or -evaluate")
	}
	fixtures, err := datasource.LoadFixturesCSV(fixturesPath)
	if err != nil {
		return err
	}

	engine, err := predict.NewEngine(cfg, store)
	if err != nil {
		return err
	}
	res, err := engine.Run(ctx, fixtures)
	if err != nil {
		return err
	}

	if archive != nil {
		if err := archive.SavePredictions(res); err != nil {
			return fmt.Errorf("archiving predictions: %w", err)
		}
	}
	return emitJSON(res)
}

// loadResults prefers fresh csv files, falling back to whatever the
// archive already holds
func loadResults(dataDir string, archive *datasource.Archive) ([]predict.MatchResult, error) {
	if dataDir != "" {
		return datasource.LoadResultsDir(dataDir)
	}
	if archive != nil {
		results, err := archive.LoadResults()
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("archive has no results yet, pass -data to load some")
		}
		logger.Info("Loaded results from archive", len(results))
		return results, nil
	}
	return nil, fmt.Errorf("no historical data, pass -data or -db")
}

// evaluateArchive scores every archived prediction that now has a result
func evaluateArchive(store *predict.MatchStore, archive *datasource.Archive) error {
	preds, err := archive.LoadPredictions()
	if err != nil {
		return err
	}
	if len(preds) == 0 {
		return fmt.Errorf("archive has no predictions to evaluate")
	}

	res := &predict.RunResult{Predictions: preds}
	scores := predict.EvaluateRun(store, res)
	summary := predict.AggregateAccuracy(scores)
	if summary == nil {
		return fmt.Errorf("none of the %d archived predictions have results yet", len(preds))
	}

	logger.Highlight("Scored predictions", summary.TotalPredictions, "of", len(preds))
	return emitJSON(summary)
}

func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// applyEnvOverrides lets the environment adjust any model parameter
// without touching the command line, for example
// PREDICT_FORM_WINDOW_SIZE=8 or PREDICT_ODDS_BLEND_WEIGHT=0.3.
// Validation happens later when the engine is built.
func applyEnvOverrides(cfg *predict.Config) {
	cfg.FormWindowSize = getEnvInt("PREDICT_FORM_WINDOW_SIZE", cfg.FormWindowSize)
	cfg.FormWeight = getEnvFloat("PREDICT_FORM_WEIGHT", cfg.FormWeight)
	cfg.H2HMaxMatches = getEnvInt("PREDICT_H2H_MAX_MATCHES", cfg.H2HMaxMatches)
	cfg.H2HMinSample = getEnvInt("PREDICT_H2H_MIN_SAMPLE", cfg.H2HMinSample)
	cfg.H2HWeight = getEnvFloat("PREDICT_H2H_WEIGHT", cfg.H2HWeight)
	cfg.GoalRateFloor = getEnvFloat("PREDICT_GOAL_RATE_FLOOR", cfg.GoalRateFloor)
	cfg.MaxGoalRate = getEnvFloat("PREDICT_MAX_GOAL_RATE", cfg.MaxGoalRate)
	cfg.LeagueAverageGoals = getEnvFloat("PREDICT_LEAGUE_AVERAGE_GOALS", cfg.LeagueAverageGoals)
	cfg.HomeAdvantage = getEnvFloat("PREDICT_HOME_ADVANTAGE", cfg.HomeAdvantage)
	cfg.ShrinkageWeight = getEnvFloat("PREDICT_SHRINKAGE_WEIGHT", cfg.ShrinkageWeight)
	cfg.PositionWeight = getEnvFloat("PREDICT_POSITION_WEIGHT", cfg.PositionWeight)
	cfg.ScorelineTruncation = getEnvInt("PREDICT_SCORELINE_TRUNCATION", cfg.ScorelineTruncation)
	cfg.DixonColesRho = getEnvFloat("PREDICT_DIXON_COLES_RHO", cfg.DixonColesRho)
	cfg.OddsBlendWeight = getEnvFloat("PREDICT_ODDS_BLEND_WEIGHT", cfg.OddsBlendWeight)
	cfg.Concurrency = getEnvInt("PREDICT_CONCURRENCY", cfg.Concurrency)
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("Ignoring bad integer in", key, v)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn("Ignoring bad number in", key, v)
		return fallback
	}
	return f
}
