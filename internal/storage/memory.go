package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

type lock struct {
	owner   string
	expires time.Time
}

// MemoryStore is an in-process Store for tests and the console. Sessions
// are stored as JSON so callers never share memory with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string][]byte
	locks     map[string]lock
	pingError error
	now       func() time.Time
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
		locks:    make(map[string]lock),
		now:      time.Now,
	}
}

// SetPingError configures Ping to fail with err; nil restores success.
func (m *MemoryStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) SaveSession(ctx context.Context, s *Session) error {
	if s == nil || s.Snapshot == nil {
		return errors.New("session and snapshot are required")
	}
	s.UpdatedAt = m.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = data
	return nil
}

func (m *MemoryStore) LoadSession(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) AcquireTurnLock(ctx context.Context, sessionID, owner string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if l, ok := m.locks[sessionID]; ok && now.Before(l.expires) {
		return ErrLocked
	}
	m.locks[sessionID] = lock{owner: owner, expires: now.Add(ttl)}
	return nil
}

func (m *MemoryStore) ReleaseTurnLock(ctx context.Context, sessionID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[sessionID]; ok && l.owner == owner {
		delete(m.locks, sessionID)
	}
	return nil
}
