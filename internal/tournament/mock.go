package tournament

import (
	"sync"

	"github.com/beniksen/topspin/internal/league"
)

// MockService is a mock implementation of the Service interface for testing.
// It is safe for concurrent use.
type MockService struct {
	mu sync.Mutex

	// Spies for method calls
	CreateFunc func(params CreateParams) (*Tournament, error)
	ReportFunc func(params ReportParams) (*league.Match, error)
	GetFunc    func(id string) (*Detail, error)
	ListFunc   func() ([]*Tournament, error)
	CancelFunc func(id string) error

	// Call records
	CreateCalls []CreateParams
	ReportCalls []ReportParams
	CancelCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockService {
	return &MockService{}
}

func (m *MockService) Create(params CreateParams) (*Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, params)
	if m.CreateFunc != nil {
		return m.CreateFunc(params)
	}
	return &Tournament{}, nil
}

func (m *MockService) Report(params ReportParams) (*league.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportCalls = append(m.ReportCalls, params)
	if m.ReportFunc != nil {
		return m.ReportFunc(params)
	}
	return &league.Match{}, nil
}

func (m *MockService) Get(id string) (*Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return nil, nil
}

func (m *MockService) List() ([]*Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return nil, nil
}

func (m *MockService) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelCalls = append(m.CancelCalls, id)
	if m.CancelFunc != nil {
		return m.CancelFunc(id)
	}
	return nil
}
