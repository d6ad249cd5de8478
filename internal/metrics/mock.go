package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	matchesRated       int
	recomputeRuns      int
	ratingDurations    []float64
	tournamentsCreated int
	slackNotifSent     int
	slackNotifFailed   int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		ratingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncMatchesRated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesRated++
}

func (m *Mock) IncRecomputeRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeRuns++
}

func (m *Mock) ObserveRatingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingDurations = append(m.ratingDurations, duration)
}

func (m *Mock) IncTournamentsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tournamentsCreated++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesRated returns the number of times IncMatchesRated was called.
func (m *Mock) MatchesRated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesRated
}

// RecomputeRuns returns the number of times IncRecomputeRuns was called.
func (m *Mock) RecomputeRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recomputeRuns
}

// TournamentsCreated returns the number of times IncTournamentsCreated was called.
func (m *Mock) TournamentsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tournamentsCreated
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
