package rating

import "time"

// Engine drives Glicko-2 updates from confirmed matches into the league store.
type Engine interface {
	// ApplyRatingsForMatch rates a single confirmed match and persists the
	// per-mode results atomically.
	ApplyRatingsForMatch(matchID string) error
	// Recompute resets every player to the baseline and replays confirmed
	// matches in chronological order. Ratings are path dependent, so this is
	// the only correct way to absorb an edited or cancelled result. A non-nil
	// from restricts the replay to matches played at or after that time,
	// discarding the contribution of everything earlier.
	Recompute(from *time.Time) error
}
