package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/session"
)

// MockStorage is an in-memory implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	scenes    map[scene.Key]*scene.Scene
	sessions  map[string]*session.Session
	pingError error
	failErr   error

	CreateCalls int
	AppendCalls int
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		scenes:   make(map[scene.Key]*scene.Scene),
		sessions: make(map[string]*session.Session),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetFailure makes every scene and session operation fail with err wrapped
// in ErrPersistenceUnavailable. Pass nil to recover.
func (m *MockStorage) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *MockStorage) failure() error {
	if m.failErr != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, m.failErr)
	}
	return nil
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

// AddScene stores s directly, bypassing failure injection (for testing)
func (m *MockStorage) AddScene(s *scene.Scene) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenes[s.Key()] = s
}

func (m *MockStorage) FindScene(ctx context.Context, sceneID, subsceneID int) (*scene.Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(); err != nil {
		return nil, err
	}
	s, ok := m.scenes[scene.Key{SceneID: sceneID, SubsceneID: subsceneID}]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (m *MockStorage) UpsertScene(ctx context.Context, s *scene.Scene) error {
	if s == nil {
		return errors.New("scene cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}
	m.scenes[s.Key()] = s
	return nil
}

func (m *MockStorage) ListScenes(ctx context.Context, filter *SceneFilter) ([]*scene.Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	result := make([]*scene.Scene, 0, len(m.scenes))
	for _, s := range m.scenes {
		if filter.Matches(s) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key().Less(result[j].Key()) })
	return result, nil
}

func (m *MockStorage) FindSession(ctx context.Context, id string) (*session.Session, error) {
	s, err := m.FindSessionWithLog(ctx, id)
	if s != nil {
		s.Log = nil
	}
	return s, err
}

func (m *MockStorage) CreateSession(ctx context.Context, s *session.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}
	m.CreateCalls++
	if _, exists := m.sessions[s.ID]; exists {
		return nil
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MockStorage) AppendLogEntry(ctx context.Context, sessionID string, entry session.InteractionLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}
	m.AppendCalls++
	s, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.Log = append(s.Log, entry.Clone())
	if entry.Timestamp.After(s.UpdatedAt) {
		s.UpdatedAt = entry.Timestamp
	}
	return nil
}

func (m *MockStorage) FindSessionWithLog(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(); err != nil {
		return nil, err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (m *MockStorage) ClaimSessionOwner(ctx context.Context, id, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return false, err
	}
	s, ok := m.sessions[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if s.OwnerID != "" || ownerID == "" {
		return false, nil
	}
	s.OwnerID = ownerID
	return true, nil
}

func (m *MockStorage) MarkSessionInactive(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.Active = false
	return nil
}

func (m *MockStorage) DeleteInactiveSessionsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return 0, err
	}
	deleted := 0
	for id, s := range m.sessions {
		if !s.Active && s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// SessionCount returns the number of persisted sessions (for testing)
func (m *MockStorage) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SetSessionUpdatedAt backdates a session (for testing retention)
func (m *MockStorage) SetSessionUpdatedAt(id string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.UpdatedAt = at
	}
}
