package league

import (
	"database/sql"
	"sync"
	"time"

	"github.com/beniksen/topspin/internal/glicko"
)

// store handles all database operations for the league.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Mode is one of the independently tracked rating tracks of a player.
type Mode string

const (
	ModeOverall Mode = "OVERALL"
	ModeSingles Mode = "SINGLES"
	ModeDoubles Mode = "DOUBLES"
)

// Modes lists every tracked mode.
var Modes = []Mode{ModeOverall, ModeSingles, ModeDoubles}

// ModesForMatchType returns the modes a match of the given type counts
// towards. Overall always moves; the type-specific mode moves alongside it.
func ModesForMatchType(t MatchType) []Mode {
	if t == MatchTypeDoubles {
		return []Mode{ModeOverall, ModeDoubles}
	}
	return []Mode{ModeOverall, ModeSingles}
}

// MatchType distinguishes one-on-one matches from doubles.
type MatchType string

const (
	MatchTypeSingles MatchType = "SINGLES"
	MatchTypeDoubles MatchType = "DOUBLES"
)

// MatchStatus is the lifecycle state of a submitted match.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "PENDING"
	MatchStatusConfirmed MatchStatus = "CONFIRMED"
	MatchStatusDisputed  MatchStatus = "DISPUTED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
)

const (
	DefaultTargetPoints = 11
	DefaultWinByMargin  = 2
)

// ModeStats is a player's rating state plus counters for a single mode.
type ModeStats struct {
	glicko.RatingState
	Wins         int        `json:"wins"`
	Losses       int        `json:"losses"`
	LastPlayedAt *time.Time `json:"last_played_at,omitempty"`
}

// Player is a league member with three parallel rating tracks.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	Overall   ModeStats `json:"overall"`
	Singles   ModeStats `json:"singles"`
	Doubles   ModeStats `json:"doubles"`
}

// Stats returns the stats for the given mode.
func (p *Player) Stats(mode Mode) *ModeStats {
	switch mode {
	case ModeSingles:
		return &p.Singles
	case ModeDoubles:
		return &p.Doubles
	default:
		return &p.Overall
	}
}

// Match is a confirmed or pending contest between two sides.
type Match struct {
	ID                string      `json:"id"`
	Type              MatchType   `json:"match_type"`
	Status            MatchStatus `json:"status"`
	Team1             []string    `json:"team1"`
	Team2             []string    `json:"team2"`
	Team1Score        int         `json:"team1_score"`
	Team2Score        int         `json:"team2_score"`
	TargetPoints      int         `json:"target_points"`
	WinByMargin       int         `json:"win_by_margin"`
	PlayedAt          time.Time   `json:"played_at"`
	CreatedAt         time.Time   `json:"created_at"`
	TournamentMatchID *string     `json:"tournament_match_id,omitempty"`
}

// Participants returns every player id in the match, team1 first.
func (m *Match) Participants() []string {
	ids := make([]string, 0, len(m.Team1)+len(m.Team2))
	ids = append(ids, m.Team1...)
	ids = append(ids, m.Team2...)
	return ids
}

// Team1Won reports whether side one took the match.
func (m *Match) Team1Won() bool {
	return m.Team1Score > m.Team2Score
}

// RatingHistoryEntry is one immutable (player, match, mode) rating snapshot.
type RatingHistoryEntry struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	MatchID    string    `json:"match_id"`
	Mode       Mode      `json:"mode"`
	Rating     float64   `json:"rating"`
	Rd         float64   `json:"rd"`
	Volatility float64   `json:"volatility"`
	DeltaMu    float64   `json:"delta_mu"`
	DeltaSigma float64   `json:"delta_sigma"`
	PlayedAt   time.Time `json:"played_at"`
}

// RatingUpdate is one computed per-player per-mode result of a match, applied
// to the store as part of a single atomic batch.
type RatingUpdate struct {
	PlayerID   string
	Mode       Mode
	Rating     float64
	Rd         float64
	Volatility float64
	DeltaMu    float64
	DeltaSigma float64
	Won        bool
}
