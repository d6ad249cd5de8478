package rating

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/beniksen/topspin/internal/glicko"
	"github.com/beniksen/topspin/internal/league"
	"github.com/beniksen/topspin/internal/metrics"
)

// New creates a rating engine on top of the given store.
func New(store league.Store, m metrics.Metrics, opts glicko.Options) Engine {
	return &engine{store: store, metrics: m, opts: opts}
}

func (e *engine) ApplyRatingsForMatch(matchID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	m, err := e.store.GetMatch(matchID)
	if err != nil {
		return err
	}
	if m.Status != league.MatchStatusConfirmed {
		return fmt.Errorf("match %s is not confirmed (status %s)", matchID, m.Status)
	}

	if err := e.rateMatch(m); err != nil {
		return err
	}

	e.metrics.ObserveRatingDuration(time.Since(start).Seconds())
	e.metrics.IncMatchesRated()
	log.Info("Rated match", "match_id", m.ID, "type", m.Type, "duration", time.Since(start))
	return nil
}

func (e *engine) Recompute(from *time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	if err := e.store.ResetRatings(); err != nil {
		return fmt.Errorf("failed to reset ratings: %w", err)
	}

	matches, err := e.store.GetConfirmedMatches(from)
	if err != nil {
		return fmt.Errorf("failed to load confirmed matches: %w", err)
	}

	for _, m := range matches {
		if err := e.rateMatch(m); err != nil {
			return fmt.Errorf("failed to replay match %s: %w", m.ID, err)
		}
		e.metrics.IncMatchesRated()
	}

	e.metrics.IncRecomputeRuns()
	log.Info("Recomputed ratings", "matches", len(matches), "from", from, "duration", time.Since(start))
	return nil
}

// rateMatch computes and persists the per-mode updates for one match.
// Callers hold the engine mutex.
func (e *engine) rateMatch(m *league.Match) error {
	players, err := e.store.GetPlayers(m.Participants())
	if err != nil {
		return err
	}
	byID := make(map[string]*league.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	var updates []league.RatingUpdate
	for _, mode := range league.ModesForMatchType(m.Type) {
		modeUpdates, err := e.rateMode(m, mode, byID)
		if err != nil {
			return fmt.Errorf("failed to rate match %s for %s: %w", m.ID, mode, err)
		}
		updates = append(updates, modeUpdates...)
	}

	return e.store.ApplyRatingUpdates(m, updates)
}

// rateMode runs one Glicko-2 period per player against the combined state of
// the opposing team.
func (e *engine) rateMode(m *league.Match, mode league.Mode, players map[string]*league.Player) ([]league.RatingUpdate, error) {
	team1Won := m.Team1Won()

	sides := []struct {
		members   []string
		opponents []string
		won       bool
	}{
		{m.Team1, m.Team2, team1Won},
		{m.Team2, m.Team1, !team1Won},
	}

	updates := make([]league.RatingUpdate, 0, len(m.Team1)+len(m.Team2))
	for _, side := range sides {
		opponentStates := make([]glicko.RatingState, 0, len(side.opponents))
		for _, id := range side.opponents {
			opponentStates = append(opponentStates, players[id].Stats(mode).RatingState)
		}
		opposing, err := glicko.CombineTeam(opponentStates)
		if err != nil {
			return nil, err
		}

		score := 0.0
		if side.won {
			score = 1.0
		}

		for _, id := range side.members {
			before := players[id].Stats(mode).RatingState
			result, err := glicko.UpdateRating(before, []glicko.Opponent{
				{Rating: opposing.Rating, Rd: opposing.Rd, Score: score},
			}, e.opts)
			if err != nil {
				return nil, err
			}
			updates = append(updates, league.RatingUpdate{
				PlayerID:   id,
				Mode:       mode,
				Rating:     result.Rating,
				Rd:         result.Rd,
				Volatility: result.Volatility,
				DeltaMu:    result.DeltaMu,
				DeltaSigma: result.DeltaSigma,
				Won:        side.won,
			})
		}
	}
	return updates, nil
}
