package tournament

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for tournaments.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Mode selects which rating track seeds the bracket and which match type the
// reported results take.
type Mode string

const (
	ModeSingles Mode = "SINGLES"
	ModeDoubles Mode = "DOUBLES"
)

// Format selects the scheduling strategy.
type Format string

const (
	FormatStandard           Format = "STANDARD"
	FormatCompetitiveMonthly Format = "COMPETITIVE_MONTHLY"
)

// MatchCountMode selects how the match budget of a standard group is derived.
type MatchCountMode string

const (
	CountPerPlayer    MatchCountMode = "PER_PLAYER"
	CountTotalMatches MatchCountMode = "TOTAL_MATCHES"
)

// Status is the lifecycle state of a tournament.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// MatchStatus is the lifecycle state of a scheduled matchup.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "SCHEDULED"
	MatchPlayed    MatchStatus = "PLAYED"
	MatchCancelled MatchStatus = "CANCELLED"
)

const (
	DefaultMatchesPerPlayer = 3
	DefaultGamesPerGroup    = 8
	MaxRoundRobinIterations = 5
)

// Tournament is the stored configuration and state of one event.
type Tournament struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Mode                 Mode           `json:"mode"`
	Format               Format         `json:"format"`
	MatchCountMode       MatchCountMode `json:"match_count_mode"`
	MatchesPerPlayer     *int           `json:"matches_per_player,omitempty"`
	GamesPerGroup        *int           `json:"games_per_group,omitempty"`
	RoundRobinIterations int            `json:"round_robin_iterations"`
	Status               Status         `json:"status"`
	StartAt              time.Time      `json:"start_at"`
	EndAt                time.Time      `json:"end_at"`
	CreatedAt            time.Time      `json:"created_at"`
}

// Participant is a player's registration within a tournament group.
type Participant struct {
	PlayerID string `json:"player_id"`
	GroupID  string `json:"group_id"`
	Seed     int    `json:"seed"`
}

// Group is one table of a tournament.
type Group struct {
	ID           string        `json:"id"`
	TournamentID string        `json:"tournament_id"`
	Name         string        `json:"name"`
	TableLabel   string        `json:"table_label"`
	Participants []Participant `json:"participants"`
}

// ScoreLine is the final score of a played matchup.
type ScoreLine struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// Match is one scheduled matchup within a group. Result is populated once the
// matchup has been reported and links back to the rated league match.
type Match struct {
	ID            string      `json:"id"`
	TournamentID  string      `json:"tournament_id"`
	GroupID       string      `json:"group_id"`
	Iteration     int         `json:"iteration"`
	Team1         []string    `json:"team1"`
	Team2         []string    `json:"team2"`
	Status        MatchStatus `json:"status"`
	ScheduledAt   *time.Time  `json:"scheduled_at,omitempty"`
	ResultMatchID *string     `json:"result_match_id,omitempty"`
	Result        *ScoreLine  `json:"result,omitempty"`
}

// Matchup is a scheduling output: who plays whom in which iteration.
type Matchup struct {
	Team1     []string
	Team2     []string
	Iteration int
}

// Seed is a participant with the rating used for seeding and team locking.
type Seed struct {
	PlayerID string
	Rating   float64
}

// Placement is one row of a group standings table.
type Placement struct {
	TeamIDs           []string `json:"team_ids"`
	Wins              int      `json:"wins"`
	Losses            int      `json:"losses"`
	MatchesPlayed     int      `json:"matches_played"`
	PointsFor         int      `json:"points_for"`
	PointsAgainst     int      `json:"points_against"`
	PointDifferential int      `json:"point_differential"`
	Rank              int      `json:"rank"`
}

// GroupDetail is a group with its schedule and current standings.
type GroupDetail struct {
	Group
	Matches    []*Match    `json:"matches"`
	Placements []Placement `json:"placements"`
}

// Detail is the full read model of one tournament.
type Detail struct {
	Tournament
	Groups []GroupDetail `json:"groups"`
}
