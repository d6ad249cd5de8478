package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playedMatch(team1, team2 []string, score1, score2 int) *Match {
	return &Match{
		Team1:  team1,
		Team2:  team2,
		Status: MatchPlayed,
		Result: &ScoreLine{Team1: score1, Team2: score2},
	}
}

func TestCalculatePlacements_SinglesSeedsEveryMember(t *testing.T) {
	placements := CalculatePlacementsForGroup(ModeSingles, []string{"a", "b", "c"}, nil)

	require.Len(t, placements, 3)
	for _, p := range placements {
		assert.Equal(t, 1, p.Rank)
		assert.Zero(t, p.MatchesPlayed)
	}
}

func TestCalculatePlacements_WinsDominateRanking(t *testing.T) {
	matches := []*Match{
		playedMatch([]string{"a"}, []string{"b"}, 11, 5),
		playedMatch([]string{"a"}, []string{"c"}, 11, 9),
		playedMatch([]string{"b"}, []string{"c"}, 11, 7),
	}

	placements := CalculatePlacementsForGroup(ModeSingles, []string{"a", "b", "c"}, matches)
	require.Len(t, placements, 3)

	assert.Equal(t, []string{"a"}, placements[0].TeamIDs)
	assert.Equal(t, 2, placements[0].Wins)
	assert.Equal(t, 1, placements[0].Rank)

	assert.Equal(t, []string{"b"}, placements[1].TeamIDs)
	assert.Equal(t, 2, placements[1].Rank)

	assert.Equal(t, []string{"c"}, placements[2].TeamIDs)
	assert.Equal(t, 2, placements[2].Losses)
	assert.Equal(t, 3, placements[2].Rank)
}

func TestCalculatePlacements_PointDifferentialBreaksTies(t *testing.T) {
	// a and b both beat c once; a wins by a wider margin.
	matches := []*Match{
		playedMatch([]string{"a"}, []string{"c"}, 11, 2),
		playedMatch([]string{"b"}, []string{"c"}, 11, 9),
	}

	placements := CalculatePlacementsForGroup(ModeSingles, []string{"a", "b", "c"}, matches)
	require.Len(t, placements, 3)

	assert.Equal(t, []string{"a"}, placements[0].TeamIDs)
	assert.Equal(t, 9, placements[0].PointDifferential)
	assert.Equal(t, []string{"b"}, placements[1].TeamIDs)
	assert.Equal(t, 2, placements[1].Rank)
}

func TestCalculatePlacements_IdenticalRecordsShareRank(t *testing.T) {
	matches := []*Match{
		playedMatch([]string{"a"}, []string{"c"}, 11, 5),
		playedMatch([]string{"b"}, []string{"d"}, 11, 5),
	}

	placements := CalculatePlacementsForGroup(ModeSingles, []string{"a", "b", "c", "d"}, matches)
	require.Len(t, placements, 4)

	assert.Equal(t, 1, placements[0].Rank)
	assert.Equal(t, 1, placements[1].Rank)
	assert.Equal(t, 3, placements[2].Rank)
	assert.Equal(t, 3, placements[3].Rank)
}

func TestCalculatePlacements_UnplayedMatchupsCarryNoStats(t *testing.T) {
	matches := []*Match{
		{Team1: []string{"a"}, Team2: []string{"b"}, Status: MatchScheduled},
	}

	placements := CalculatePlacementsForGroup(ModeSingles, []string{"a", "b"}, matches)
	require.Len(t, placements, 2)
	for _, p := range placements {
		assert.Zero(t, p.MatchesPlayed)
		assert.Zero(t, p.Wins)
	}
}

func TestCalculatePlacements_DoublesTeamsComeFromSchedule(t *testing.T) {
	matches := []*Match{
		playedMatch([]string{"a", "b"}, []string{"c", "d"}, 11, 8),
		{Team1: []string{"a", "c"}, Team2: []string{"b", "d"}, Status: MatchScheduled},
	}

	placements := CalculatePlacementsForGroup(ModeDoubles, []string{"a", "b", "c", "d"}, matches)
	require.Len(t, placements, 4)

	assert.Equal(t, []string{"a", "b"}, placements[0].TeamIDs)
	assert.Equal(t, 1, placements[0].Wins)
	assert.Equal(t, 1, placements[0].Rank)

	// Team keys are sorted, so the same pair in any order maps to one row.
	reordered := CalculatePlacementsForGroup(ModeDoubles, nil, []*Match{
		playedMatch([]string{"b", "a"}, []string{"d", "c"}, 11, 8),
	})
	require.Len(t, reordered, 2)
	assert.Equal(t, []string{"a", "b"}, reordered[0].TeamIDs)
}
