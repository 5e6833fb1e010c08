package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecentForTeamOrdering(t *testing.T) {
	a := finished("2025-01-11", "Arsenal", 1, 0, "Chelsea")
	b := finished("2025-01-11", "Arsenal", 2, 0, "Leeds")
	c := finished("2025-01-18", "Arsenal", 0, 0, "Everton")
	store := NewMatchStore([]MatchResult{a, b, c})

	recent := store.RecentForTeam("Arsenal", mustDate("2025-02-01"), 0)

	require.Len(t, recent, 3)
	assert.Equal(t, "Everton", recent[0].AwayTeam, "newest first")
	assert.Equal(t, "Chelsea", recent[1].AwayTeam, "same day ties keep load order")
	assert.Equal(t, "Leeds", recent[2].AwayTeam)
}

func TestStoreRecentForTeamCutoffAndLimit(t *testing.T) {
	store := seasonStore()

	t.Log("Strictly before: a match on the cutoff day itself is excluded")
	recent := store.RecentForTeam("Arsenal", mustDate("2025-01-18"), 0)
	require.Len(t, recent, 2)
	assert.Equal(t, "Everton", recent[0].HomeTeam)

	t.Log("A positive limit caps the window at the newest matches")
	capped := store.RecentForTeam("Arsenal", mustDate("2025-03-01"), 2)
	require.Len(t, capped, 2)
	assert.Equal(t, mustDate("2025-02-08"), capped[0].Date)
	assert.Equal(t, mustDate("2025-02-01"), capped[1].Date)
}

func TestStoreIgnoresUnfinishedMatches(t *testing.T) {
	scheduled := MatchResult{
		Date:     mustDate("2025-03-01"),
		League:   "E0",
		HomeTeam: "Arsenal",
		AwayTeam: "Chelsea",
		Status:   StatusScheduled,
	}
	postponed := scheduled
	postponed.Status = StatusPostponed
	postponed.AwayTeam = "Leeds"

	store := NewMatchStore([]MatchResult{
		scheduled,
		postponed,
		finished("2025-01-04", "Arsenal", 2, 0, "Chelsea"),
	})

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, 1, store.FinishedCount())

	recent := store.RecentForTeam("Arsenal", mustDate("2025-04-01"), 0)
	require.Len(t, recent, 1)
	assert.True(t, recent[0].IsFinished())
}

func TestStoreMeetingsAreVenueBlind(t *testing.T) {
	store := seasonStore()
	before := mustDate("2025-03-01")

	t.Log("Meetings at either ground count, and argument order doesn't matter")
	one := store.Meetings("Arsenal", "Chelsea", before, 0)
	two := store.Meetings("Chelsea", "Arsenal", before, 0)
	require.Len(t, one, 2)
	assert.Equal(t, one, two)
	assert.Equal(t, mustDate("2025-02-01"), one[0].Date, "newest first")

	capped := store.Meetings("Arsenal", "Leeds", before, 1)
	require.Len(t, capped, 1)
	assert.Equal(t, mustDate("2025-01-25"), capped[0].Date)
}

func TestStoreResultFor(t *testing.T) {
	store := seasonStore()

	found, ok := store.ResultFor("Arsenal", "Chelsea", mustDate("2025-01-04"))
	require.True(t, ok)
	assert.Equal(t, 2, found.HomeGoals)
	assert.Equal(t, 0, found.AwayGoals)

	t.Log("Venue orientation matters when looking up a specific fixture")
	_, ok = store.ResultFor("Chelsea", "Arsenal", mustDate("2025-01-04"))
	assert.False(t, ok)

	_, ok = store.ResultFor("Arsenal", "Chelsea", mustDate("2025-01-05"))
	assert.False(t, ok, "wrong day")
}

func TestStoreLeagueAverages(t *testing.T) {
	cup := finished("2025-01-07", "Barcelona", 4, 0, "Getafe")
	cup.League = "SP1"
	store := NewMatchStore([]MatchResult{
		finished("2025-01-04", "Arsenal", 2, 1, "Chelsea"),
		finished("2025-01-05", "Leeds", 1, 1, "Everton"),
		cup,
	})

	avg, ok := store.LeagueAverageGoals("E0")
	require.True(t, ok)
	assert.InDelta(t, 1.25, avg, 1e-9, "five goals over two matches, per team")

	avg, ok = store.LeagueAverageGoals("SP1")
	require.True(t, ok)
	assert.InDelta(t, 2.0, avg, 1e-9)

	avg, ok = store.LeagueAverageGoals("")
	require.True(t, ok)
	assert.InDelta(t, 1.5, avg, 1e-9, "nine goals over three matches across the store")

	_, ok = store.LeagueAverageGoals("D1")
	assert.False(t, ok, "no matches recorded for that league")
}

func TestStoreSnapshotIsIsolated(t *testing.T) {
	results := []MatchResult{finished("2025-01-04", "Arsenal", 2, 0, "Chelsea")}
	store := NewMatchStore(results)

	t.Log("Mutating the input slice after construction must not leak in")
	results[0].HomeGoals = 99

	recent := store.RecentForTeam("Arsenal", mustDate("2025-02-01"), 0)
	require.Len(t, recent, 1)
	assert.Equal(t, 2, recent[0].HomeGoals)

	t.Log("And All hands back a copy, not the internal slice")
	all := store.All()
	all[0].AwayTeam = "Someone Else"
	again := store.All()
	assert.Equal(t, "Chelsea", again[0].AwayTeam)
}

func TestStoreTeams(t *testing.T) {
	store := seasonStore()
	assert.Equal(t, []string{"Arsenal", "Chelsea", "Everton", "Leeds"}, store.Teams())
}
