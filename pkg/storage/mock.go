package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/arena-engine/pkg/arena"
	"github.com/jwebster45206/arena-engine/pkg/assets"
	"github.com/jwebster45206/arena-engine/pkg/comp"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID][]byte
	comps     map[string]*comp.Comp
	assets    *assets.Assets
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID][]byte),
		comps:    make(map[string]*comp.Comp),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveSession stores a JSON copy so later mutation of s is not visible until saved again.
func (m *MockStorage) SaveSession(ctx context.Context, s *arena.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	s.UpdatedAt = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = data
	return nil
}

// LoadSession mocks loading a session
func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*arena.Session, error) {
	m.mu.RLock()
	data, exists := m.sessions[id]
	m.mu.RUnlock()
	if !exists {
		return nil, ErrNotFound
	}
	var s arena.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// DeleteSession mocks deleting a session
func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// ListComps mocks listing compositions
func (m *MockStorage) ListComps(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string)
	for filename, c := range m.comps {
		result[c.Name] = filename
	}
	return result, nil
}

// GetComp mocks getting a composition by filename
func (m *MockStorage) GetComp(ctx context.Context, filename string) (*comp.Comp, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.comps[filename]
	if !exists {
		return nil, fmt.Errorf("comp %s: %w", filename, ErrNotFound)
	}
	return c, nil
}

// AddComp adds a composition to the mock storage (for testing)
func (m *MockStorage) AddComp(filename string, c *comp.Comp) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.FileName = filename
	m.comps[filename] = c
}

// GetAssets mocks loading static game data
func (m *MockStorage) GetAssets(ctx context.Context) (*assets.Assets, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.assets == nil {
		return nil, fmt.Errorf("assets: %w", ErrNotFound)
	}
	return m.assets, nil
}

// SetAssets sets the static game data (for testing)
func (m *MockStorage) SetAssets(a *assets.Assets) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = a
}
