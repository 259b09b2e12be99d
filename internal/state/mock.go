package state

import (
	"sync"
	"time"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	mu      sync.Mutex
	volume  *VolumeState
	resumes map[string]Resume
	closed  bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{resumes: make(map[string]Resume)}
}

func (m *Mock) GetVolume() (*VolumeState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.volume == nil {
		return nil, nil //nolint:nilnil // mirrors Manager
	}
	v := *m.volume
	return &v, nil
}

func (m *Mock) SaveVolume(volume float64, muted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = &VolumeState{Volume: volume, Muted: muted}
	return nil
}

func (m *Mock) GetResume(path string) (*Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[path]
	if !ok {
		return nil, nil //nolint:nilnil // mirrors Manager
	}
	return &r, nil
}

func (m *Mock) SaveResume(path string, position, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes[path] = Resume{Path: path, Position: position, Duration: duration, UpdatedAt: time.Now()}
}

func (m *Mock) ClearResume(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resumes, path)
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
