package tournament

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedList(n int) []Seed {
	seeds := make([]Seed, n)
	for i := range seeds {
		seeds[i] = Seed{PlayerID: fmt.Sprintf("p%d", i+1), Rating: float64(2000 - i*50)}
	}
	return seeds
}

func TestDistributeIntoGroups_ContiguousBands(t *testing.T) {
	groups := DistributeIntoGroups(seedList(9), []string{"A", "B"})

	require.Len(t, groups, 2)
	assert.Equal(t, "A", groups[0].Label)
	assert.Len(t, groups[0].Participants, 5)
	assert.Len(t, groups[1].Participants, 4)

	// Strongest players fill the first group, in seeding order.
	assert.Equal(t, "p1", groups[0].Participants[0].PlayerID)
	assert.Equal(t, "p5", groups[0].Participants[4].PlayerID)
	assert.Equal(t, "p6", groups[1].Participants[0].PlayerID)
}

func TestDistributeIntoGroups_RemainderSpreadsFromFront(t *testing.T) {
	groups := DistributeIntoGroups(seedList(10), []string{"A", "B", "C"})

	assert.Len(t, groups[0].Participants, 4)
	assert.Len(t, groups[1].Participants, 3)
	assert.Len(t, groups[2].Participants, 3)
}

func TestGenerateSinglesPairings_FullRoundRobinFits(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	pairs := GenerateSinglesPairings(ids, 6)

	require.Len(t, pairs, 6)
	seen := make(map[string]bool)
	for _, pair := range pairs {
		key := canonicalMatchupKey(pair.Team1, pair.Team2)
		assert.False(t, seen[key], "pair scheduled twice: %s", key)
		seen[key] = true
	}
}

func TestGenerateSinglesPairings_BudgetBalancesLoad(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	pairs := GenerateSinglesPairings(ids, 7)

	require.Len(t, pairs, 7)

	counts := make(map[string]int)
	seen := make(map[string]bool)
	for _, pair := range pairs {
		key := canonicalMatchupKey(pair.Team1, pair.Team2)
		assert.False(t, seen[key])
		seen[key] = true
		counts[pair.Team1[0]]++
		counts[pair.Team2[0]]++
	}
	for id, count := range counts {
		assert.LessOrEqual(t, count, 3, "player %s is over-scheduled", id)
	}
}

func TestGenerateSinglesPairings_DegenerateInputs(t *testing.T) {
	assert.Empty(t, GenerateSinglesPairings([]string{"a"}, 5))
	assert.Empty(t, GenerateSinglesPairings([]string{"a", "b"}, 0))
}

func TestGenerateDoublesPairings_FillsLimitWithDistinctTeams(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	matchups := GenerateDoublesPairings(ids, 2, rng)
	require.Len(t, matchups, 2)

	for _, matchup := range matchups {
		players := append(append([]string{}, matchup.Team1...), matchup.Team2...)
		unique := make(map[string]bool)
		for _, id := range players {
			unique[id] = true
		}
		assert.Len(t, unique, 4)
	}

	// Limit 2 over eight players caps everyone at a single appearance.
	counts := make(map[string]int)
	for _, matchup := range matchups {
		for _, id := range append(matchup.Team1, matchup.Team2...) {
			counts[id]++
		}
	}
	for id, count := range counts {
		assert.Equal(t, 1, count, "player %s", id)
	}
}

func TestGenerateDoublesPairings_RespectsCapAndDedupe(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d", "e", "f"}
	limit := 5

	matchups := GenerateDoublesPairings(ids, limit, rng)
	assert.LessOrEqual(t, len(matchups), limit)

	maxPerPlayer := (limit*4 + len(ids) - 1) / len(ids)
	counts := make(map[string]int)
	seen := make(map[string]bool)
	for _, matchup := range matchups {
		key := canonicalMatchupKey(matchup.Team1, matchup.Team2)
		assert.False(t, seen[key], "matchup repeated: %s", key)
		seen[key] = true
		for _, id := range append(matchup.Team1, matchup.Team2...) {
			counts[id]++
		}
	}
	for id, count := range counts {
		assert.LessOrEqual(t, count, maxPerPlayer, "player %s", id)
	}
}

func TestGenerateDoublesPairings_TooFewPlayers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Empty(t, GenerateDoublesPairings([]string{"a", "b", "c"}, 3, rng))
}

func TestGenerateCompetitiveSinglesSchedule_IterationsSwapSides(t *testing.T) {
	matches := GenerateCompetitiveSinglesSchedule([]string{"a", "b", "c"}, 2)

	// Three pairings per full round robin, twice.
	require.Len(t, matches, 6)

	firstByKey := make(map[string]Matchup)
	for _, m := range matches {
		if m.Iteration == 1 {
			firstByKey[canonicalMatchupKey(m.Team1, m.Team2)] = m
		}
	}
	require.Len(t, firstByKey, 3)

	for _, m := range matches {
		if m.Iteration != 2 {
			continue
		}
		original, ok := firstByKey[canonicalMatchupKey(m.Team1, m.Team2)]
		require.True(t, ok)
		assert.Equal(t, original.Team1, m.Team2)
		assert.Equal(t, original.Team2, m.Team1)
	}
}

func TestGenerateCompetitiveSinglesSchedule_EveryPairEachIteration(t *testing.T) {
	matches := GenerateCompetitiveSinglesSchedule([]string{"a", "b", "c", "d", "e"}, 3)

	assert.Len(t, matches, 30)
	perIteration := make(map[int]int)
	for _, m := range matches {
		perIteration[m.Iteration]++
	}
	for iteration := 1; iteration <= 3; iteration++ {
		assert.Equal(t, 10, perIteration[iteration])
	}
}

func TestGenerateCompetitiveDoublesSchedule_LocksHighLowTeams(t *testing.T) {
	participants := []Seed{
		{PlayerID: "best", Rating: 1900},
		{PlayerID: "strong", Rating: 1700},
		{PlayerID: "mid", Rating: 1500},
		{PlayerID: "weak", Rating: 1300},
	}

	matches, err := GenerateCompetitiveDoublesSchedule(participants, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.ElementsMatch(t, []string{"best", "weak"}, matches[0].Team1)
	assert.ElementsMatch(t, []string{"strong", "mid"}, matches[0].Team2)
}

func TestGenerateCompetitiveDoublesSchedule_SixPlayersThreeTeams(t *testing.T) {
	matches, err := GenerateCompetitiveDoublesSchedule(seedList(6), 2)
	require.NoError(t, err)

	// Three teams round robin is three pairings per iteration.
	assert.Len(t, matches, 6)
}

func TestGenerateCompetitiveDoublesSchedule_OddCountFails(t *testing.T) {
	_, err := GenerateCompetitiveDoublesSchedule(seedList(5), 1)
	assert.Error(t, err)
}

func TestRoundRobinRounds_EveryPairOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6, 9} {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("p%d", i)
			}

			rounds := roundRobinRounds(ids)
			seen := make(map[string]bool)
			total := 0
			for _, round := range rounds {
				inRound := make(map[string]bool)
				for _, pair := range round {
					key := canonicalMatchupKey([]string{pair[0]}, []string{pair[1]})
					assert.False(t, seen[key], "pair repeated: %s", key)
					seen[key] = true
					assert.False(t, inRound[pair[0]] || inRound[pair[1]], "player doubled within a round")
					inRound[pair[0]] = true
					inRound[pair[1]] = true
					total++
				}
			}
			assert.Equal(t, n*(n-1)/2, total)
		})
	}
}
