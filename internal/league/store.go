package league

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/beniksen/topspin/internal/glicko"
)

// NewStore creates a new league store backed by the given database.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

const playerColumns = `id, name, active, created_at,
		overall_rating, overall_rd, overall_volatility, overall_wins, overall_losses, overall_last_played_at,
		singles_rating, singles_rd, singles_volatility, singles_wins, singles_losses, singles_last_played_at,
		doubles_rating, doubles_rd, doubles_volatility, doubles_wins, doubles_losses, doubles_last_played_at`

// UpsertPlayer inserts a player at the baseline rating, or refreshes the name
// of an existing one. Ratings of existing players are never touched here.
func (s *store) UpsertPlayer(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	baseline := glicko.Baseline()
	query := `
	INSERT INTO players (id, name, active, created_at,
		overall_rating, overall_rd, overall_volatility,
		singles_rating, singles_rd, singles_volatility,
		doubles_rating, doubles_rd, doubles_volatility)
	VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name;`

	_, err := s.db.Exec(query, id, name, time.Now().Unix(),
		baseline.Rating, baseline.Rd, baseline.Volatility,
		baseline.Rating, baseline.Rd, baseline.Volatility,
		baseline.Rating, baseline.Rd, baseline.Volatility)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", id, err)
	}
	log.Debug("Upserted player", "id", id, "name", name)
	return nil
}

// SetPlayerActive toggles whether a player appears on leaderboards and in
// tournament rosters.
func (s *store) SetPlayerActive(id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`UPDATE players SET active = ? WHERE id = ?;`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("player %s not found", id)
	}
	return nil
}

// GetPlayer fetches a single player by id.
func (s *store) GetPlayer(id string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+playerColumns+` FROM players WHERE id = ?;`, id)
	player, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return player, nil
}

// GetPlayers fetches the given players, failing if any id is unknown.
func (s *store) GetPlayers(ids []string) ([]*Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(`SELECT `+playerColumns+` FROM players WHERE id IN (`+placeholders+`);`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*Player, len(ids))
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		byID[player.ID] = player
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	players := make([]*Player, 0, len(ids))
	for _, id := range ids {
		player, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("player %s not found", id)
		}
		players = append(players, player)
	}
	return players, nil
}

// ListPlayers returns all players, optionally restricted to active ones.
func (s *store) ListPlayers(activeOnly bool) ([]*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + playerColumns + ` FROM players`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name ASC;`

	return s.queryPlayers(query)
}

// Leaderboard returns active players ordered by rating in the given mode.
func (s *store) Leaderboard(mode Mode) ([]*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix, err := modePrefix(mode)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT `+playerColumns+` FROM players
		WHERE active = 1
		ORDER BY %s_rating DESC, %s_rd ASC, name ASC;`, prefix, prefix)

	return s.queryPlayers(query)
}

func (s *store) queryPlayers(query string, args ...any) ([]*Player, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []*Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

// InsertMatch persists a newly submitted match. Defaults for id, status,
// scoring rules and timestamps are filled in when unset.
func (s *store) InsertMatch(m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = MatchStatusPending
	}
	if m.TargetPoints == 0 {
		m.TargetPoints = DefaultTargetPoints
	}
	if m.WinByMargin == 0 {
		m.WinByMargin = DefaultWinByMargin
	}
	if m.PlayedAt.IsZero() {
		m.PlayedAt = time.Now()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	team1JSON, err := json.Marshal(m.Team1)
	if err != nil {
		return fmt.Errorf("failed to marshal team1: %w", err)
	}
	team2JSON, err := json.Marshal(m.Team2)
	if err != nil {
		return fmt.Errorf("failed to marshal team2: %w", err)
	}

	query := `
	INSERT INTO matches (id, match_type, status, team1_ids, team2_ids,
		team1_score, team2_score, target_points, win_by_margin,
		played_at, created_at, tournament_match_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	_, err = s.db.Exec(query, m.ID, m.Type, m.Status, string(team1JSON), string(team2JSON),
		m.Team1Score, m.Team2Score, m.TargetPoints, m.WinByMargin,
		m.PlayedAt.Unix(), m.CreatedAt.Unix(), m.TournamentMatchID)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	log.Debug("Inserted match", "id", m.ID, "type", m.Type, "status", m.Status)
	return nil
}

// GetMatch fetches a single match by id.
func (s *store) GetMatch(id string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT id, match_type, status, team1_ids, team2_ids,
		team1_score, team2_score, target_points, win_by_margin,
		played_at, created_at, tournament_match_id
	FROM matches WHERE id = ?;`, id)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("match %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

// UpdateMatchStatus moves a match through its lifecycle.
func (s *store) UpdateMatchStatus(id string, status MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`UPDATE matches SET status = ? WHERE id = ?;`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("match %s not found", id)
	}
	log.Debug("Updated match status", "id", id, "status", status)
	return nil
}

// UpdateMatchScore corrects a recorded score. Callers are expected to follow
// up with a full recompute since later ratings depend on the old result.
func (s *store) UpdateMatchScore(id string, team1Score, team2Score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`UPDATE matches SET team1_score = ?, team2_score = ? WHERE id = ?;`,
		team1Score, team2Score, id)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("match %s not found", id)
	}
	return nil
}

// GetConfirmedMatches returns confirmed matches in chronological order,
// optionally limited to those played at or after the given time.
func (s *store) GetConfirmedMatches(from *time.Time) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, match_type, status, team1_ids, team2_ids,
		team1_score, team2_score, target_points, win_by_margin,
		played_at, created_at, tournament_match_id
	FROM matches WHERE status = ?`
	args := []any{MatchStatusConfirmed}
	if from != nil {
		query += ` AND played_at >= ?`
		args = append(args, from.Unix())
	}
	query += ` ORDER BY played_at ASC, created_at ASC;`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ApplyRatingUpdates writes the computed results of one match in a single
// transaction: per-mode player state, win/loss counters, last-played stamps
// and one history row per update.
func (s *store) ApplyRatingUpdates(m *Match, updates []RatingUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		prefix, err := modePrefix(u.Mode)
		if err != nil {
			return err
		}

		winInc, lossInc := 0, 1
		if u.Won {
			winInc, lossInc = 1, 0
		}
		query := fmt.Sprintf(`UPDATE players SET
			%s_rating = ?, %s_rd = ?, %s_volatility = ?,
			%s_wins = %s_wins + ?, %s_losses = %s_losses + ?,
			%s_last_played_at = ?
		WHERE id = ?;`, prefix, prefix, prefix, prefix, prefix, prefix, prefix, prefix)

		result, err := tx.Exec(query, u.Rating, u.Rd, u.Volatility,
			winInc, lossInc, m.PlayedAt.Unix(), u.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to update %s rating for player %s: %w", u.Mode, u.PlayerID, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("player %s not found", u.PlayerID)
		}

		_, err = tx.Exec(`INSERT INTO rating_history
			(id, player_id, match_id, mode, rating, rd, volatility, delta_mu, delta_sigma, played_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			uuid.NewString(), u.PlayerID, m.ID, u.Mode,
			u.Rating, u.Rd, u.Volatility, u.DeltaMu, u.DeltaSigma, m.PlayedAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to insert rating history for player %s: %w", u.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rating updates: %w", err)
	}
	log.Debug("Applied rating updates", "match_id", m.ID, "updates", len(updates))
	return nil
}

// ResetRatings restores every player to the baseline state, zeroes their
// counters and wipes the rating history. Used as the first step of a replay.
func (s *store) ResetRatings() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	baseline := glicko.Baseline()
	for _, mode := range Modes {
		prefix, err := modePrefix(mode)
		if err != nil {
			return err
		}
		query := fmt.Sprintf(`UPDATE players SET
			%s_rating = ?, %s_rd = ?, %s_volatility = ?,
			%s_wins = 0, %s_losses = 0, %s_last_played_at = NULL;`,
			prefix, prefix, prefix, prefix, prefix, prefix)
		if _, err := tx.Exec(query, baseline.Rating, baseline.Rd, baseline.Volatility); err != nil {
			return fmt.Errorf("failed to reset %s ratings: %w", mode, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM rating_history;`); err != nil {
		return fmt.Errorf("failed to clear rating history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rating reset: %w", err)
	}
	log.Info("Reset all ratings to baseline")
	return nil
}

// GetRatingHistory returns a player's history rows for one mode, oldest first.
func (s *store) GetRatingHistory(playerID string, mode Mode) ([]RatingHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, player_id, match_id, mode, rating, rd, volatility, delta_mu, delta_sigma, played_at
		FROM rating_history
		WHERE player_id = ? AND mode = ?
		ORDER BY played_at ASC;`, playerID, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var entries []RatingHistoryEntry
	for rows.Next() {
		var e RatingHistoryEntry
		var playedAt int64
		err := rows.Scan(&e.ID, &e.PlayerID, &e.MatchID, &e.Mode,
			&e.Rating, &e.Rd, &e.Volatility, &e.DeltaMu, &e.DeltaSigma, &playedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.PlayedAt = time.Unix(playedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func modePrefix(mode Mode) (string, error) {
	switch mode {
	case ModeOverall:
		return "overall", nil
	case ModeSingles:
		return "singles", nil
	case ModeDoubles:
		return "doubles", nil
	default:
		return "", fmt.Errorf("unknown rating mode %q", mode)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*Player, error) {
	var p Player
	var createdAt int64
	var lastPlayed [3]sql.NullInt64

	err := row.Scan(&p.ID, &p.Name, &p.Active, &createdAt,
		&p.Overall.Rating, &p.Overall.Rd, &p.Overall.Volatility, &p.Overall.Wins, &p.Overall.Losses, &lastPlayed[0],
		&p.Singles.Rating, &p.Singles.Rd, &p.Singles.Volatility, &p.Singles.Wins, &p.Singles.Losses, &lastPlayed[1],
		&p.Doubles.Rating, &p.Doubles.Rd, &p.Doubles.Volatility, &p.Doubles.Wins, &p.Doubles.Losses, &lastPlayed[2])
	if err != nil {
		return nil, err
	}

	p.CreatedAt = time.Unix(createdAt, 0)
	for i, stats := range []*ModeStats{&p.Overall, &p.Singles, &p.Doubles} {
		if lastPlayed[i].Valid {
			t := time.Unix(lastPlayed[i].Int64, 0)
			stats.LastPlayedAt = &t
		}
	}
	return &p, nil
}

func scanMatch(row rowScanner) (*Match, error) {
	var m Match
	var team1JSON, team2JSON string
	var playedAt, createdAt int64
	var tournamentMatchID sql.NullString

	err := row.Scan(&m.ID, &m.Type, &m.Status, &team1JSON, &team2JSON,
		&m.Team1Score, &m.Team2Score, &m.TargetPoints, &m.WinByMargin,
		&playedAt, &createdAt, &tournamentMatchID)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(team1JSON), &m.Team1); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team1: %w", err)
	}
	if err := json.Unmarshal([]byte(team2JSON), &m.Team2); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team2: %w", err)
	}
	m.PlayedAt = time.Unix(playedAt, 0)
	m.CreatedAt = time.Unix(createdAt, 0)
	if tournamentMatchID.Valid {
		m.TournamentMatchID = &tournamentMatchID.String
	}
	return &m, nil
}
