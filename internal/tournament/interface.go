package tournament

import (
	"time"

	"github.com/beniksen/topspin/internal/league"
)

// Store defines the interface for tournament persistence operations.
type Store interface {
	CreateTournament(t *Tournament, groups []*Group, matches []*Match) error
	GetTournament(id string) (*Tournament, error)
	ListTournaments() ([]*Tournament, error)
	UpdateStatus(id string, status Status) error
	ListGroups(tournamentID string) ([]*Group, error)
	ListMatches(tournamentID string) ([]*Match, error)
	GetMatch(id string) (*Match, error)
	MarkMatchPlayed(id, resultMatchID string) error
	CountUnplayed(tournamentID string) (int, error)
}

// CreateParams configures a new tournament. Zero values select the defaults.
type CreateParams struct {
	Name                 string
	Mode                 Mode
	Format               Format
	MatchCountMode       MatchCountMode
	MatchesPerPlayer     int
	GamesPerGroup        int
	RoundRobinIterations int
	GroupLabels          []string
	StartAt              time.Time
	EndAt                time.Time
	ParticipantIDs       []string
}

// ReportParams carries one reported matchup result.
type ReportParams struct {
	TournamentID      string
	TournamentMatchID string
	Team1Score        int
	Team2Score        int
}

// Service defines the tournament orchestration interface: scheduling on
// creation, result intake and lifecycle transitions.
type Service interface {
	Create(params CreateParams) (*Tournament, error)
	Report(params ReportParams) (*league.Match, error)
	Get(id string) (*Detail, error)
	List() ([]*Tournament, error)
	Cancel(id string) error
}
