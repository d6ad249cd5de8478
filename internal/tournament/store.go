package tournament

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewStore creates a new tournament store backed by the given database.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

// CreateTournament persists a tournament with its groups, participant
// assignments and full schedule in one transaction.
func (s *store) CreateTournament(t *Tournament, groups []*Group, matches []*Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusScheduled
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO tournaments
		(id, name, mode, format, match_count_mode, matches_per_player, games_per_group,
		 round_robin_iterations, status, start_at, end_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		t.ID, t.Name, t.Mode, t.Format, t.MatchCountMode, t.MatchesPerPlayer, t.GamesPerGroup,
		t.RoundRobinIterations, t.Status, t.StartAt.Unix(), t.EndAt.Unix(), t.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}

	for _, g := range groups {
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		g.TournamentID = t.ID
		_, err := tx.Exec(`INSERT INTO tournament_groups (id, tournament_id, name, table_label)
			VALUES (?, ?, ?, ?);`, g.ID, t.ID, g.Name, g.TableLabel)
		if err != nil {
			return fmt.Errorf("failed to insert group %s: %w", g.Name, err)
		}
		for _, p := range g.Participants {
			_, err := tx.Exec(`INSERT INTO tournament_participants (tournament_id, player_id, group_id, seed)
				VALUES (?, ?, ?, ?);`, t.ID, p.PlayerID, g.ID, p.Seed)
			if err != nil {
				return fmt.Errorf("failed to insert participant %s: %w", p.PlayerID, err)
			}
		}
	}

	for _, m := range matches {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.TournamentID = t.ID
		if m.Status == "" {
			m.Status = MatchScheduled
		}
		team1JSON, err := json.Marshal(m.Team1)
		if err != nil {
			return fmt.Errorf("failed to marshal team1: %w", err)
		}
		team2JSON, err := json.Marshal(m.Team2)
		if err != nil {
			return fmt.Errorf("failed to marshal team2: %w", err)
		}
		var scheduledAt any
		if m.ScheduledAt != nil {
			scheduledAt = m.ScheduledAt.Unix()
		}
		_, err = tx.Exec(`INSERT INTO tournament_matches
			(id, tournament_id, group_id, iteration, team1_ids, team2_ids, status, scheduled_at, result_match_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			m.ID, t.ID, m.GroupID, m.Iteration, string(team1JSON), string(team2JSON), m.Status, scheduledAt, m.ResultMatchID)
		if err != nil {
			return fmt.Errorf("failed to insert tournament match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tournament: %w", err)
	}
	log.Info("Created tournament", "id", t.ID, "name", t.Name, "groups", len(groups), "matches", len(matches))
	return nil
}

const tournamentColumns = `id, name, mode, format, match_count_mode, matches_per_player,
	games_per_group, round_robin_iterations, status, start_at, end_at, created_at`

// GetTournament fetches one tournament by id.
func (s *store) GetTournament(id string) (*Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+tournamentColumns+` FROM tournaments WHERE id = ?;`, id)
	t, err := scanTournament(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tournament %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}

// ListTournaments returns every tournament, newest start first.
func (s *store) ListTournaments() ([]*Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY start_at DESC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

// UpdateStatus moves a tournament through its lifecycle.
func (s *store) UpdateStatus(id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`UPDATE tournaments SET status = ? WHERE id = ?;`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("tournament %s not found", id)
	}
	log.Debug("Updated tournament status", "id", id, "status", status)
	return nil
}

// ListGroups returns the groups of a tournament with their participants
// ordered by seed.
func (s *store) ListGroups(tournamentID string) ([]*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, tournament_id, name, table_label
		FROM tournament_groups WHERE tournament_id = ? ORDER BY name ASC;`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.TournamentID, &g.Name, &g.TableLabel); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, g := range groups {
		pRows, err := s.db.Query(`SELECT player_id, group_id, seed
			FROM tournament_participants WHERE group_id = ? ORDER BY seed ASC;`, g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to query participants: %w", err)
		}
		for pRows.Next() {
			var p Participant
			if err := pRows.Scan(&p.PlayerID, &p.GroupID, &p.Seed); err != nil {
				pRows.Close()
				return nil, fmt.Errorf("failed to scan participant: %w", err)
			}
			g.Participants = append(g.Participants, p)
		}
		if err := pRows.Err(); err != nil {
			pRows.Close()
			return nil, err
		}
		pRows.Close()
	}
	return groups, nil
}

const matchColumns = `tm.id, tm.tournament_id, tm.group_id, tm.iteration, tm.team1_ids, tm.team2_ids,
	tm.status, tm.scheduled_at, tm.result_match_id, m.team1_score, m.team2_score`

const matchJoin = `FROM tournament_matches tm LEFT JOIN matches m ON m.id = tm.result_match_id`

// ListMatches returns the full schedule of a tournament with reported scores
// joined in.
func (s *store) ListMatches(tournamentID string) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT `+matchColumns+` `+matchJoin+`
		WHERE tm.tournament_id = ? ORDER BY tm.iteration ASC, tm.id ASC;`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournament matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanTournamentMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetMatch fetches one scheduled matchup by id.
func (s *store) GetMatch(id string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+matchColumns+` `+matchJoin+` WHERE tm.id = ?;`, id)
	m, err := scanTournamentMatch(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tournament match %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament match %s: %w", id, err)
	}
	return m, nil
}

// MarkMatchPlayed links a matchup to its rated league match.
func (s *store) MarkMatchPlayed(id, resultMatchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`UPDATE tournament_matches SET status = ?, result_match_id = ? WHERE id = ?;`,
		MatchPlayed, resultMatchID, id)
	if err != nil {
		return fmt.Errorf("failed to mark match %s played: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("tournament match %s not found", id)
	}
	return nil
}

// CountUnplayed returns how many matchups are still waiting for a result.
func (s *store) CountUnplayed(tournamentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM tournament_matches
		WHERE tournament_id = ? AND status != ?;`, tournamentID, MatchPlayed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unplayed matches: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTournament(row rowScanner) (*Tournament, error) {
	var t Tournament
	var matchesPerPlayer, gamesPerGroup sql.NullInt64
	var startAt, endAt, createdAt int64

	err := row.Scan(&t.ID, &t.Name, &t.Mode, &t.Format, &t.MatchCountMode,
		&matchesPerPlayer, &gamesPerGroup, &t.RoundRobinIterations, &t.Status,
		&startAt, &endAt, &createdAt)
	if err != nil {
		return nil, err
	}

	if matchesPerPlayer.Valid {
		v := int(matchesPerPlayer.Int64)
		t.MatchesPerPlayer = &v
	}
	if gamesPerGroup.Valid {
		v := int(gamesPerGroup.Int64)
		t.GamesPerGroup = &v
	}
	t.StartAt = time.Unix(startAt, 0)
	t.EndAt = time.Unix(endAt, 0)
	t.CreatedAt = time.Unix(createdAt, 0)
	return &t, nil
}

func scanTournamentMatch(row rowScanner) (*Match, error) {
	var m Match
	var team1JSON, team2JSON string
	var scheduledAt sql.NullInt64
	var resultMatchID sql.NullString
	var team1Score, team2Score sql.NullInt64

	err := row.Scan(&m.ID, &m.TournamentID, &m.GroupID, &m.Iteration, &team1JSON, &team2JSON,
		&m.Status, &scheduledAt, &resultMatchID, &team1Score, &team2Score)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(team1JSON), &m.Team1); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team1: %w", err)
	}
	if err := json.Unmarshal([]byte(team2JSON), &m.Team2); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team2: %w", err)
	}
	if scheduledAt.Valid {
		t := time.Unix(scheduledAt.Int64, 0)
		m.ScheduledAt = &t
	}
	if resultMatchID.Valid {
		m.ResultMatchID = &resultMatchID.String
	}
	if team1Score.Valid && team2Score.Valid {
		m.Result = &ScoreLine{Team1: int(team1Score.Int64), Team2: int(team2Score.Int64)}
	}
	return &m, nil
}
