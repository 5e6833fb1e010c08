// Package datasource feeds the prediction engine. It reads historical
// results and upcoming fixtures from football-data.co.uk style csv files
// and keeps a sqlite archive of results and generated predictions.
package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JamieWeston/Football-Predictions/internal/logger"
	"github.com/JamieWeston/Football-Predictions/pkg/predict"
)

///////////////////////////////////////////////////
////// CSV loading
///////////////////////////////////////////////////

// footballDataDateFormats covers the two date shapes football-data files
// have used over the years
var footballDataDateFormats = []string{"02/01/2006", "02/01/06"}

// LoadResultsCSV reads one football-data results file.
// Every row becomes a finished MatchResult.
func LoadResultsCSV(path string) ([]predict.MatchResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	results, err := ParseResultsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	logger.Info("Loaded results file", filepath.Base(path), "matches:", len(results))
	return results, nil
}

// LoadResultsDir loads every .csv file in dir into one combined result
// set. Files load in name order, so season files named like E0-2324.csv
// keep the store's insertion order chronological.
func LoadResultsDir(dir string) ([]predict.MatchResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no csv files found in %s", dir)
	}

	var all []predict.MatchResult
	for _, p := range paths {
		results, err := LoadResultsCSV(p)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	logger.Highlight("Loaded historical results", len(all), "matches from", len(paths), "files")
	return all, nil
}

// ParseResultsCSV parses football-data.co.uk result rows from r.
// Rows with no team names are skipped, the files often carry trailing
// junk lines. Rows with broken dates or goals fail the whole parse,
// silently mangling real data would be worse.
func ParseResultsCSV(r io.Reader) ([]predict.MatchResult, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	var results []predict.MatchResult
	for i, row := range rows {
		rowNum := i + 2 // 1-based plus the header line
		home := NormalizeTeamName(row["HomeTeam"])
		away := NormalizeTeamName(row["AwayTeam"])
		if home == "" && away == "" {
			continue
		}
		if home == "" || away == "" {
			return nil, fmt.Errorf("row %d: missing a team name", rowNum)
		}

		kickoff, err := parseKickoff(row["Date"], row["Time"])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		homeGoals, err := parseGoals(row["FTHG"], rowNum, "FTHG")
		if err != nil {
			return nil, err
		}
		awayGoals, err := parseGoals(row["FTAG"], rowNum, "FTAG")
		if err != nil {
			return nil, err
		}

		results = append(results, predict.MatchResult{
			Date:      kickoff,
			League:    row["Div"],
			HomeTeam:  home,
			AwayTeam:  away,
			HomeGoals: homeGoals,
			AwayGoals: awayGoals,
			Status:    predict.StatusFinished,
		})
	}
	return results, nil
}

// LoadFixturesCSV reads upcoming fixtures from path. Date, HomeTeam and
// AwayTeam are required. Time, Div, HomePos/AwayPos and 1X2 odds columns
// enrich the prediction when present.
func LoadFixturesCSV(path string) ([]predict.FixtureInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures file: %w", err)
	}
	defer f.Close()

	fixtures, err := ParseFixturesCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	logger.Info("Loaded fixtures file", filepath.Base(path), "fixtures:", len(fixtures))
	return fixtures, nil
}

// ParseFixturesCSV parses fixture rows from r
func ParseFixturesCSV(r io.Reader) ([]predict.FixtureInput, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	var fixtures []predict.FixtureInput
	for i, row := range rows {
		rowNum := i + 2
		home := NormalizeTeamName(row["HomeTeam"])
		away := NormalizeTeamName(row["AwayTeam"])
		if home == "" && away == "" {
			continue
		}

		kickoff, err := parseKickoff(row["Date"], row["Time"])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		fixture := predict.FixtureInput{
			Date:               kickoff,
			League:             row["Div"],
			HomeTeam:           home,
			AwayTeam:           away,
			LeaguePositionHome: parseOptionalInt(row, "HomePos"),
			LeaguePositionAway: parseOptionalInt(row, "AwayPos"),
			OddsHome:           parseOdds(row, "OddsH", "AvgH", "B365H"),
			OddsDraw:           parseOdds(row, "OddsD", "AvgD", "B365D"),
			OddsAway:           parseOdds(row, "OddsA", "AvgA", "B365A"),
		}
		if err := fixture.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		fixtures = append(fixtures, fixture)
	}
	return fixtures, nil
}

// readCSV pulls a header indexed view of a csv stream, tolerating the
// byte order mark and ragged short rows football-data files ship with
func readCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for j, name := range header {
			if j < len(rec) {
				row[strings.TrimSpace(name)] = strings.TrimSpace(rec[j])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseKickoff turns football-data date and time cells into a UTC
// kickoff. Times in the files are UK local, and a missing time means the
// traditional three o'clock slot.
func parseKickoff(dateCell, timeCell string) (time.Time, error) {
	dateCell = strings.TrimSpace(dateCell)
	if dateCell == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	timeCell = strings.TrimSpace(timeCell)
	if cellBlank(timeCell) {
		timeCell = "15:00"
	}

	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}
	for _, format := range footballDataDateFormats {
		if t, err := time.ParseInLocation(format+" 15:04", dateCell+" "+timeCell, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", dateCell)
}

// parseGoals reads a full time goals cell
func parseGoals(cell string, rowNum int, column string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return 0, fmt.Errorf("row %d: bad %s value %q", rowNum, column, cell)
	}
	if n < 0 {
		return 0, fmt.Errorf("row %d: negative %s value %d", rowNum, column, n)
	}
	return n, nil
}

// parseOdds takes the first usable price among the given columns.
// Prices at or below 1.0 only ever mean bad data and read as absent.
func parseOdds(row map[string]string, columns ...string) *float64 {
	for _, c := range columns {
		cell := row[c]
		if cellBlank(cell) {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || v <= 1.0 {
			continue
		}
		return &v
	}
	return nil
}

// parseOptionalInt reads a non negative integer cell, zero when absent
func parseOptionalInt(row map[string]string, column string) int {
	cell := row[column]
	if cellBlank(cell) {
		return 0
	}
	n, err := strconv.Atoi(cell)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// cellBlank mirrors the ways football-data marks a missing value
func cellBlank(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "-1", "NA", "N/A":
		return true
	}
	return false
}

///////////////////////////////////////////////////
////// Team names
///////////////////////////////////////////////////

// teamAliases maps the long club names people type into fixture files
// onto the short forms the football-data results files use
var teamAliases = map[string]string{
	"Birmingham City":          "Birmingham",
	"Blackburn Rovers":         "Blackburn",
	"Bolton Wanderers":         "Bolton",
	"Brighton & Hove Albion":   "Brighton",
	"Brighton and Hove Albion": "Brighton",
	"Cardiff City":             "Cardiff",
	"Charlton Athletic":        "Charlton",
	"Derby County":             "Derby",
	"Hull City":                "Hull",
	"Ipswich Town":             "Ipswich",
	"Leeds United":             "Leeds",
	"Leicester City":           "Leicester",
	"Luton Town":               "Luton",
	"Manchester City":          "Man City",
	"Manchester United":        "Man United",
	"Newcastle United":         "Newcastle",
	"Norwich City":             "Norwich",
	"Nottingham Forest":        "Nott'm Forest",
	"Preston North End":        "Preston",
	"Queens Park Rangers":      "QPR",
	"Rotherham United":         "Rotherham",
	"Stoke City":               "Stoke",
	"Swansea City":             "Swansea",
	"Tottenham Hotspur":        "Tottenham",
	"West Bromwich Albion":     "West Brom",
	"West Ham United":          "West Ham",
	"Wigan Athletic":           "Wigan",
	"Wolverhampton Wanderers":  "Wolves",
}

// NormalizeTeamName collapses whitespace and maps long club names onto
// the short forms the results files use, so the same club always hits
// the same store index whichever file it came from
func NormalizeTeamName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if short, ok := teamAliases[name]; ok {
		return short
	}
	return name
}
