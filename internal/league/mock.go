package league

import (
	"sync"
	"time"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertPlayerFunc        func(id, name string) error
	SetPlayerActiveFunc     func(id string, active bool) error
	GetPlayerFunc           func(id string) (*Player, error)
	GetPlayersFunc          func(ids []string) ([]*Player, error)
	ListPlayersFunc         func(activeOnly bool) ([]*Player, error)
	LeaderboardFunc         func(mode Mode) ([]*Player, error)
	InsertMatchFunc         func(m *Match) error
	GetMatchFunc            func(id string) (*Match, error)
	UpdateMatchStatusFunc   func(id string, status MatchStatus) error
	UpdateMatchScoreFunc    func(id string, team1Score, team2Score int) error
	GetConfirmedMatchesFunc func(from *time.Time) ([]*Match, error)
	ApplyRatingUpdatesFunc  func(m *Match, updates []RatingUpdate) error
	ResetRatingsFunc        func() error
	GetRatingHistoryFunc    func(playerID string, mode Mode) ([]RatingHistoryEntry, error)

	// Call records
	UpsertPlayerCalls      []string
	InsertMatchCalls       []*Match
	UpdateMatchStatusCalls []struct {
		ID     string
		Status MatchStatus
	}
	ApplyRatingUpdatesCalls []struct {
		Match   *Match
		Updates []RatingUpdate
	}
	ResetRatingsCalls int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) UpsertPlayer(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayerCalls = append(m.UpsertPlayerCalls, id)
	if m.UpsertPlayerFunc != nil {
		return m.UpsertPlayerFunc(id, name)
	}
	return nil
}

func (m *MockStore) SetPlayerActive(id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetPlayerActiveFunc != nil {
		return m.SetPlayerActiveFunc(id, active)
	}
	return nil
}

func (m *MockStore) GetPlayer(id string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(id)
	}
	return nil, nil
}

func (m *MockStore) GetPlayers(ids []string) ([]*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(ids)
	}
	return nil, nil
}

func (m *MockStore) ListPlayers(activeOnly bool) ([]*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc(activeOnly)
	}
	return nil, nil
}

func (m *MockStore) Leaderboard(mode Mode) ([]*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(mode)
	}
	return nil, nil
}

func (m *MockStore) InsertMatch(match *Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertMatchCalls = append(m.InsertMatchCalls, match)
	if m.InsertMatchFunc != nil {
		return m.InsertMatchFunc(match)
	}
	return nil
}

func (m *MockStore) GetMatch(id string) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(id)
	}
	return nil, nil
}

func (m *MockStore) UpdateMatchStatus(id string, status MatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateMatchStatusCalls = append(m.UpdateMatchStatusCalls, struct {
		ID     string
		Status MatchStatus
	}{id, status})
	if m.UpdateMatchStatusFunc != nil {
		return m.UpdateMatchStatusFunc(id, status)
	}
	return nil
}

func (m *MockStore) UpdateMatchScore(id string, team1Score, team2Score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateMatchScoreFunc != nil {
		return m.UpdateMatchScoreFunc(id, team1Score, team2Score)
	}
	return nil
}

func (m *MockStore) GetConfirmedMatches(from *time.Time) ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetConfirmedMatchesFunc != nil {
		return m.GetConfirmedMatchesFunc(from)
	}
	return nil, nil
}

func (m *MockStore) ApplyRatingUpdates(match *Match, updates []RatingUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyRatingUpdatesCalls = append(m.ApplyRatingUpdatesCalls, struct {
		Match   *Match
		Updates []RatingUpdate
	}{match, updates})
	if m.ApplyRatingUpdatesFunc != nil {
		return m.ApplyRatingUpdatesFunc(match, updates)
	}
	return nil
}

func (m *MockStore) ResetRatings() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetRatingsCalls++
	if m.ResetRatingsFunc != nil {
		return m.ResetRatingsFunc()
	}
	return nil
}

func (m *MockStore) GetRatingHistory(playerID string, mode Mode) ([]RatingHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRatingHistoryFunc != nil {
		return m.GetRatingHistoryFunc(playerID, mode)
	}
	return nil, nil
}
