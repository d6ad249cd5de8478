package league

import "time"

// Store defines the interface for league persistence operations.
type Store interface {
	// Players
	UpsertPlayer(id, name string) error
	SetPlayerActive(id string, active bool) error
	GetPlayer(id string) (*Player, error)
	GetPlayers(ids []string) ([]*Player, error)
	ListPlayers(activeOnly bool) ([]*Player, error)
	Leaderboard(mode Mode) ([]*Player, error)

	// Matches
	InsertMatch(m *Match) error
	GetMatch(id string) (*Match, error)
	UpdateMatchStatus(id string, status MatchStatus) error
	UpdateMatchScore(id string, team1Score, team2Score int) error
	GetConfirmedMatches(from *time.Time) ([]*Match, error)

	// Ratings
	ApplyRatingUpdates(m *Match, updates []RatingUpdate) error
	ResetRatings() error
	GetRatingHistory(playerID string, mode Mode) ([]RatingHistoryEntry, error)
}
