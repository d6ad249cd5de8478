package league

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeScore   = errors.New("scores must be non-negative")
	ErrDraw            = errors.New("matches cannot end in a draw")
	ErrBelowTarget     = errors.New("winning score is below the target points")
	ErrMarginTooSmall  = errors.New("winning margin is too small")
	ErrDuplicatePlayer = errors.New("a player cannot appear twice in a match")
	ErrTeamSize        = errors.New("team size does not fit the match type")
)

// ValidateMatch checks a submitted match against the table tennis scoring
// rules before it is persisted or rated.
func ValidateMatch(m *Match) error {
	if m.Team1Score < 0 || m.Team2Score < 0 {
		return ErrNegativeScore
	}
	if m.Team1Score == m.Team2Score {
		return ErrDraw
	}

	target := m.TargetPoints
	if target == 0 {
		target = DefaultTargetPoints
	}
	margin := m.WinByMargin
	if margin == 0 {
		margin = DefaultWinByMargin
	}

	winner, loser := m.Team1Score, m.Team2Score
	if loser > winner {
		winner, loser = loser, winner
	}
	if winner < target {
		return fmt.Errorf("%w: got %d, need at least %d", ErrBelowTarget, winner, target)
	}
	if winner-loser < margin {
		return fmt.Errorf("%w: %d-%d needs a margin of %d", ErrMarginTooSmall, winner, loser, margin)
	}

	expected := 1
	if m.Type == MatchTypeDoubles {
		expected = 2
	}
	if len(m.Team1) != expected || len(m.Team2) != expected {
		return fmt.Errorf("%w: %s needs %d per side", ErrTeamSize, m.Type, expected)
	}

	seen := make(map[string]bool)
	for _, id := range m.Participants() {
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = true
	}
	return nil
}
