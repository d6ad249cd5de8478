package rating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beniksen/topspin/internal/database"
	"github.com/beniksen/topspin/internal/glicko"
	"github.com/beniksen/topspin/internal/league"
	"github.com/beniksen/topspin/internal/metrics"
)

func newTestEngine(t *testing.T) (Engine, league.Store, *metrics.Mock) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	store := league.NewStore(db)
	mock := metrics.NewMock()
	return New(store, mock, glicko.Options{}), store, mock
}

func insertConfirmed(t *testing.T, store league.Store, m *league.Match) *league.Match {
	t.Helper()
	m.Status = league.MatchStatusConfirmed
	require.NoError(t, store.InsertMatch(m))
	return m
}

func TestApplyRatingsForMatch_SinglesMovesOverallAndSingles(t *testing.T) {
	engine, store, mock := newTestEngine(t)
	require.NoError(t, store.UpsertPlayer("p1", "Anna"))
	require.NoError(t, store.UpsertPlayer("p2", "Bo"))

	playedAt := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	m := insertConfirmed(t, store, &league.Match{
		Type:  league.MatchTypeSingles,
		Team1: []string{"p1"}, Team2: []string{"p2"},
		Team1Score: 11, Team2Score: 7, PlayedAt: playedAt,
	})

	require.NoError(t, engine.ApplyRatingsForMatch(m.ID))

	winner, err := store.GetPlayer("p1")
	require.NoError(t, err)
	loser, err := store.GetPlayer("p2")
	require.NoError(t, err)

	baseline := glicko.Baseline()
	assert.Greater(t, winner.Overall.Rating, baseline.Rating)
	assert.Greater(t, winner.Singles.Rating, baseline.Rating)
	assert.Equal(t, baseline.Rating, winner.Doubles.Rating)
	assert.Less(t, winner.Overall.Rd, baseline.Rd)

	assert.Less(t, loser.Overall.Rating, baseline.Rating)
	assert.Less(t, loser.Singles.Rating, baseline.Rating)
	assert.Equal(t, baseline.Rating, loser.Doubles.Rating)

	assert.Equal(t, 1, winner.Overall.Wins)
	assert.Equal(t, 1, winner.Singles.Wins)
	assert.Zero(t, winner.Doubles.Wins)
	assert.Equal(t, 1, loser.Singles.Losses)

	for _, playerID := range []string{"p1", "p2"} {
		for _, mode := range []league.Mode{league.ModeOverall, league.ModeSingles} {
			history, err := store.GetRatingHistory(playerID, mode)
			require.NoError(t, err)
			assert.Len(t, history, 1, "history for %s %s", playerID, mode)
		}
		history, err := store.GetRatingHistory(playerID, league.ModeDoubles)
		require.NoError(t, err)
		assert.Empty(t, history)
	}

	assert.Equal(t, 1, mock.MatchesRated())
}

func TestApplyRatingsForMatch_DoublesMovesDoublesOnly(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		require.NoError(t, store.UpsertPlayer(id, "Player "+id))
	}

	m := insertConfirmed(t, store, &league.Match{
		Type:  league.MatchTypeDoubles,
		Team1: []string{"p1", "p2"}, Team2: []string{"p3", "p4"},
		Team1Score: 11, Team2Score: 4,
	})
	require.NoError(t, engine.ApplyRatingsForMatch(m.ID))

	baseline := glicko.Baseline()
	for _, id := range []string{"p1", "p2"} {
		p, err := store.GetPlayer(id)
		require.NoError(t, err)
		assert.Greater(t, p.Overall.Rating, baseline.Rating)
		assert.Greater(t, p.Doubles.Rating, baseline.Rating)
		assert.Equal(t, baseline.Rating, p.Singles.Rating)
	}
	for _, id := range []string{"p3", "p4"} {
		p, err := store.GetPlayer(id)
		require.NoError(t, err)
		assert.Less(t, p.Doubles.Rating, baseline.Rating)
		assert.Equal(t, baseline.Rating, p.Singles.Rating)
	}
}

func TestApplyRatingsForMatch_RejectsUnconfirmed(t *testing.T) {
	engine, store, mock := newTestEngine(t)
	require.NoError(t, store.UpsertPlayer("p1", "Anna"))
	require.NoError(t, store.UpsertPlayer("p2", "Bo"))

	m := &league.Match{
		Type:  league.MatchTypeSingles,
		Team1: []string{"p1"}, Team2: []string{"p2"},
		Team1Score: 11, Team2Score: 7,
	}
	require.NoError(t, store.InsertMatch(m))

	err := engine.ApplyRatingsForMatch(m.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not confirmed")
	assert.Zero(t, mock.MatchesRated())
}

func TestRecompute_IsIdempotent(t *testing.T) {
	engine, store, mock := newTestEngine(t)
	for _, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, store.UpsertPlayer(id, "Player "+id))
	}

	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	m1 := insertConfirmed(t, store, &league.Match{
		Type:  league.MatchTypeSingles,
		Team1: []string{"p1"}, Team2: []string{"p2"},
		Team1Score: 11, Team2Score: 7, PlayedAt: base,
	})
	m2 := insertConfirmed(t, store, &league.Match{
		Type:  league.MatchTypeSingles,
		Team1: []string{"p2"}, Team2: []string{"p3"},
		Team1Score: 13, Team2Score: 11, PlayedAt: base.Add(time.Hour),
	})
	require.NoError(t, engine.ApplyRatingsForMatch(m1.ID))
	require.NoError(t, engine.ApplyRatingsForMatch(m2.ID))

	snapshot := func() map[string]glicko.RatingState {
		states := make(map[string]glicko.RatingState)
		for _, id := range []string{"p1", "p2", "p3"} {
			p, err := store.GetPlayer(id)
			require.NoError(t, err)
			states[id] = p.Overall.RatingState
		}
		return states
	}

	before := snapshot()
	require.NoError(t, engine.Recompute(nil))
	after := snapshot()

	for id, state := range before {
		assert.InDelta(t, state.Rating, after[id].Rating, 1e-9, "rating for %s", id)
		assert.InDelta(t, state.Rd, after[id].Rd, 1e-9, "rd for %s", id)
		assert.InDelta(t, state.Volatility, after[id].Volatility, 1e-9, "volatility for %s", id)
	}

	p2, err := store.GetPlayer("p2")
	require.NoError(t, err)
	assert.Equal(t, 1, p2.Overall.Wins)
	assert.Equal(t, 1, p2.Overall.Losses)

	assert.Equal(t, 1, mock.RecomputeRuns())
}

func TestRecompute_AbsorbsEditedScore(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	require.NoError(t, store.UpsertPlayer("p1", "Anna"))
	require.NoError(t, store.UpsertPlayer("p2", "Bo"))

	m := insertConfirmed(t, store, &league.Match{
		Type:  league.MatchTypeSingles,
		Team1: []string{"p1"}, Team2: []string{"p2"},
		Team1Score: 11, Team2Score: 7,
	})
	require.NoError(t, engine.ApplyRatingsForMatch(m.ID))

	// Flip the result, then replay.
	require.NoError(t, store.UpdateMatchScore(m.ID, 7, 11))
	require.NoError(t, engine.Recompute(nil))

	baseline := glicko.Baseline()
	p1, err := store.GetPlayer("p1")
	require.NoError(t, err)
	p2, err := store.GetPlayer("p2")
	require.NoError(t, err)

	assert.Less(t, p1.Overall.Rating, baseline.Rating)
	assert.Greater(t, p2.Overall.Rating, baseline.Rating)
	assert.Equal(t, 1, p1.Overall.Losses)
	assert.Equal(t, 1, p2.Overall.Wins)

	history, err := store.GetRatingHistory("p1", league.ModeOverall)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRecompute_FromCutoffReplaysOnlyLaterMatches(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	require.NoError(t, store.UpsertPlayer("p1", "Anna"))
	require.NoError(t, store.UpsertPlayer("p2", "Bo"))

	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	early := insertConfirmed(t, store, &league.Match{
		Type:  league.MatchTypeSingles,
		Team1: []string{"p1"}, Team2: []string{"p2"},
		Team1Score: 11, Team2Score: 7, PlayedAt: base,
	})
	late := insertConfirmed(t, store, &league.Match{
		Type:  league.MatchTypeSingles,
		Team1: []string{"p2"}, Team2: []string{"p1"},
		Team1Score: 11, Team2Score: 9, PlayedAt: base.Add(time.Hour),
	})
	require.NoError(t, engine.ApplyRatingsForMatch(early.ID))
	require.NoError(t, engine.ApplyRatingsForMatch(late.ID))

	cutoff := base.Add(30 * time.Minute)
	require.NoError(t, engine.Recompute(&cutoff))

	// Only the later match remains: p2 beat p1 from a fresh baseline.
	baseline := glicko.Baseline()
	p1, err := store.GetPlayer("p1")
	require.NoError(t, err)
	p2, err := store.GetPlayer("p2")
	require.NoError(t, err)

	assert.Less(t, p1.Overall.Rating, baseline.Rating)
	assert.Greater(t, p2.Overall.Rating, baseline.Rating)
	assert.Zero(t, p1.Overall.Wins)
	assert.Equal(t, 1, p1.Overall.Losses)
	assert.Equal(t, 1, p2.Overall.Wins)
	assert.Zero(t, p2.Overall.Losses)

	history, err := store.GetRatingHistory("p1", league.ModeOverall)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, late.ID, history[0].MatchID)
}

func TestRecompute_SkipsCancelledMatches(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	require.NoError(t, store.UpsertPlayer("p1", "Anna"))
	require.NoError(t, store.UpsertPlayer("p2", "Bo"))

	m := insertConfirmed(t, store, &league.Match{
		Type:  league.MatchTypeSingles,
		Team1: []string{"p1"}, Team2: []string{"p2"},
		Team1Score: 11, Team2Score: 7,
	})
	require.NoError(t, engine.ApplyRatingsForMatch(m.ID))

	require.NoError(t, store.UpdateMatchStatus(m.ID, league.MatchStatusCancelled))
	require.NoError(t, engine.Recompute(nil))

	baseline := glicko.Baseline()
	p1, err := store.GetPlayer("p1")
	require.NoError(t, err)
	assert.Equal(t, baseline.Rating, p1.Overall.Rating)
	assert.Zero(t, p1.Overall.Wins)
}
