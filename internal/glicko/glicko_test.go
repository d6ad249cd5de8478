package glicko

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateRating_WinIncreasesRating(t *testing.T) {
	player := RatingState{Rating: 1500, Rd: 200, Volatility: 0.06}
	opponent := Opponent{Rating: 1600, Rd: 150, Score: 1}

	result, err := UpdateRating(player, []Opponent{opponent}, Options{})
	require.NoError(t, err)

	assert.Greater(t, result.Rating, player.Rating)
	assert.Less(t, result.Rd, player.Rd)
	assert.Positive(t, result.DeltaMu)
}

func TestUpdateRating_LossDecreasesRating(t *testing.T) {
	player := RatingState{Rating: 1500, Rd: 200, Volatility: 0.06}
	opponent := Opponent{Rating: 1400, Rd: 150, Score: 0}

	result, err := UpdateRating(player, []Opponent{opponent}, Options{})
	require.NoError(t, err)

	assert.Less(t, result.Rating, player.Rating)
	assert.Negative(t, result.DeltaMu)
}

func TestUpdateRating_NoOpponentsInflatesRdOnly(t *testing.T) {
	player := RatingState{Rating: 1480, Rd: 120, Volatility: 0.06}

	result, err := UpdateRating(player, nil, Options{})
	require.NoError(t, err)

	assert.InDelta(t, player.Rating, result.Rating, 1e-9)
	assert.Greater(t, result.Rd, player.Rd)
	assert.Equal(t, player.Volatility, result.Volatility)
	assert.Zero(t, result.DeltaMu)
	assert.Zero(t, result.DeltaSigma)
}

func TestUpdateRating_RdNeverExceedsMax(t *testing.T) {
	player := RatingState{Rating: 1500, Rd: 349, Volatility: 0.09}

	result, err := UpdateRating(player, nil, Options{MaxRd: 350})
	require.NoError(t, err)
	assert.LessOrEqual(t, result.Rd, 350.0)
}

func TestUpdateRating_ResultsAreFinite(t *testing.T) {
	// Extremes of the realistic input range should still converge.
	cases := []struct {
		name     string
		player   RatingState
		opponent Opponent
	}{
		{"fresh vs fresh", Baseline(), Opponent{Rating: 1500, Rd: 350, Score: 1}},
		{"huge gap win", RatingState{Rating: 1200, Rd: 350, Volatility: 0.06}, Opponent{Rating: 2400, Rd: 50, Score: 1}},
		{"huge gap loss", RatingState{Rating: 2400, Rd: 50, Volatility: 0.06}, Opponent{Rating: 1200, Rd: 350, Score: 0}},
		{"low rd grinder", RatingState{Rating: 1800, Rd: 30, Volatility: 0.01}, Opponent{Rating: 1790, Rd: 35, Score: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := UpdateRating(tc.player, []Opponent{tc.opponent}, Options{})
			require.NoError(t, err)
			assert.False(t, math.IsNaN(result.Rating) || math.IsInf(result.Rating, 0))
			assert.False(t, math.IsNaN(result.Rd) || math.IsInf(result.Rd, 0))
			assert.Positive(t, result.Volatility)
		})
	}
}

func TestCombineTeam_BoundsAndUncertainty(t *testing.T) {
	alice := RatingState{Rating: 1500, Rd: 120, Volatility: 0.06}
	bob := RatingState{Rating: 1600, Rd: 140, Volatility: 0.06}

	team, err := CombineTeam([]RatingState{alice, bob})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, team.Rating, 1500.0)
	assert.LessOrEqual(t, team.Rating, 1600.0)
	assert.Less(t, team.Rd, math.Max(alice.Rd, bob.Rd))
	assert.InDelta(t, 0.06, team.Volatility, 1e-9)
}

func TestCombineTeam_SinglePlayerKeepsState(t *testing.T) {
	solo := RatingState{Rating: 1550, Rd: 90, Volatility: 0.05}

	team, err := CombineTeam([]RatingState{solo})
	require.NoError(t, err)

	assert.InDelta(t, solo.Rating, team.Rating, 1e-9)
	assert.InDelta(t, solo.Rd, team.Rd, 1e-9)
}

func TestCombineTeam_EmptyTeamFails(t *testing.T) {
	_, err := CombineTeam(nil)
	assert.ErrorIs(t, err, ErrEmptyTeam)
}

func TestInflateRd_GrowsWithInactivity(t *testing.T) {
	player := RatingState{Rating: 1500, Rd: 120, Volatility: 0.06}

	inactive := InflateRd(player, 4, 0)
	assert.Greater(t, inactive.Rd, player.Rd)
	assert.Equal(t, player.Rating, inactive.Rating)

	longer := InflateRd(player, 16, 0)
	assert.Greater(t, longer.Rd, inactive.Rd)
}

func TestInflateRd_ClampedToMax(t *testing.T) {
	player := RatingState{Rating: 1500, Rd: 340, Volatility: 0.1}

	inactive := InflateRd(player, 1000, 350)
	assert.Equal(t, 350.0, inactive.Rd)
}
