package predict

import (
	"sort"
	"time"
)

///////////////////////////////////////////////////
////// Match store
///////////////////////////////////////////////////

// MatchStore is an immutable snapshot of historical results.
// Build one with NewMatchStore then share it freely. Every index is
// precomputed up front so concurrent readers never contend.
type MatchStore struct {
	matches []MatchResult             // as loaded, insertion order
	byTeam  map[string][]*MatchResult // finished matches per team, newest first
	byPair  map[string][]*MatchResult // finished meetings per canonical pairing, newest first
	leagues map[string]leagueTally    // finished goal totals per league code
	overall leagueTally               // finished goal totals across the whole store
}

type leagueTally struct {
	matches int
	goals   int
}

// pairKey builds the canonical key for a pairing so that (a,b) and (b,a)
// always land in the same bucket
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// NewMatchStore indexes the given results into a read-only snapshot.
// The slice is copied, so the caller is free to keep mutating its own
// copy afterwards. Only finished matches are indexed for querying.
func NewMatchStore(results []MatchResult) *MatchStore {
	s := &MatchStore{
		matches: make([]MatchResult, len(results)),
		byTeam:  make(map[string][]*MatchResult),
		byPair:  make(map[string][]*MatchResult),
		leagues: make(map[string]leagueTally),
	}
	copy(s.matches, results)

	for i := range s.matches {
		m := &s.matches[i]
		if !m.IsFinished() {
			continue
		}
		s.byTeam[m.HomeTeam] = append(s.byTeam[m.HomeTeam], m)
		s.byTeam[m.AwayTeam] = append(s.byTeam[m.AwayTeam], m)
		key := pairKey(m.HomeTeam, m.AwayTeam)
		s.byPair[key] = append(s.byPair[key], m)

		t := s.leagues[m.League]
		t.matches++
		t.goals += m.TotalGoals()
		s.leagues[m.League] = t
		s.overall.matches++
		s.overall.goals += m.TotalGoals()
	}

	// Newest first, same day matches staying in load order
	for _, list := range s.byTeam {
		sortNewestFirst(list)
	}
	for _, list := range s.byPair {
		sortNewestFirst(list)
	}
	return s
}

func sortNewestFirst(list []*MatchResult) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date)
	})
}

// Len returns the total number of results held, finished or not
func (s *MatchStore) Len() int {
	return len(s.matches)
}

// FinishedCount returns the number of finished results held
func (s *MatchStore) FinishedCount() int {
	return s.overall.matches
}

// All returns a copy of the results in their original load order
func (s *MatchStore) All() []MatchResult {
	out := make([]MatchResult, len(s.matches))
	copy(out, s.matches)
	return out
}

// Teams returns every team appearing in at least one finished match, sorted
func (s *MatchStore) Teams() []string {
	out := make([]string, 0, len(s.byTeam))
	for team := range s.byTeam {
		out = append(out, team)
	}
	sort.Strings(out)
	return out
}

// RecentForTeam returns up to limit finished matches involving the team
// played strictly before the given date, most recent first.
// A limit of zero or less means no limit.
func (s *MatchStore) RecentForTeam(team string, before time.Time, limit int) []*MatchResult {
	var out []*MatchResult
	for _, m := range s.byTeam[team] {
		if !m.Date.Before(before) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Meetings returns up to limit finished meetings between the two teams
// played strictly before the given date, most recent first.
// Venue is irrelevant here, meetings at either ground count the same.
func (s *MatchStore) Meetings(teamA, teamB string, before time.Time, limit int) []*MatchResult {
	var out []*MatchResult
	for _, m := range s.byPair[pairKey(teamA, teamB)] {
		if !m.Date.Before(before) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// ResultFor finds the finished result for the given pairing at the given
// venue orientation on the same calendar day, if the store has it
func (s *MatchStore) ResultFor(home, away string, date time.Time) (*MatchResult, bool) {
	for _, m := range s.byPair[pairKey(home, away)] {
		if m.SameFixture(home, away, date) {
			return m, true
		}
	}
	return nil, false
}

// LeagueAverageGoals returns the average goals scored per team per match
// across the finished matches of the given league. An empty league code
// averages over everything in the store. The bool is false when there is
// nothing to average over.
func (s *MatchStore) LeagueAverageGoals(league string) (float64, bool) {
	t := s.overall
	if league != "" {
		t = s.leagues[league]
	}
	if t.matches == 0 {
		return 0, false
	}
	// Two teams take part in every match
	return float64(t.goals) / float64(2*t.matches), true
}
