package notifier

import (
	"sync"

	"github.com/beniksen/topspin/internal/league"
	"github.com/beniksen/topspin/internal/tournament"
)

// MockNotifier is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type MockNotifier struct {
	mu sync.Mutex

	// Spies for method calls
	SendResultNotificationFunc func(match *league.Match, names map[string]string, dryRun bool) error
	SendLeaderboardFunc        func(mode league.Mode, players []*league.Player, dryRun bool) error
	SendTournamentCreatedFunc  func(t *tournament.Tournament, groupCount, matchCount int, dryRun bool) error
	SendStandingsFunc          func(detail *tournament.Detail, names map[string]string, dryRun bool) error

	// Call records
	SendResultNotificationCalls []*league.Match
	SendLeaderboardCalls        []league.Mode
	SendTournamentCreatedCalls  []*tournament.Tournament
	SendStandingsCalls          []*tournament.Detail
}

// NewMock creates a new mock instance.
func NewMock() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) SendResultNotification(match *league.Match, names map[string]string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, match)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(match, names, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendLeaderboard(mode league.Mode, players []*league.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, mode)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(mode, players, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendTournamentCreated(t *tournament.Tournament, groupCount, matchCount int, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTournamentCreatedCalls = append(m.SendTournamentCreatedCalls, t)
	if m.SendTournamentCreatedFunc != nil {
		return m.SendTournamentCreatedFunc(t, groupCount, matchCount, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendStandings(detail *tournament.Detail, names map[string]string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, detail)
	if m.SendStandingsFunc != nil {
		return m.SendStandingsFunc(detail, names, dryRun)
	}
	return nil
}
