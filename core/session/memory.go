package session

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore constructs an in-process Store. It backs tests and
// development, and serves as the degradation target when a networked store
// is unavailable. Expired sessions are dropped lazily on lookup.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *memoryStore) GetOrCreate(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || s.Expired(m.ttl, m.now()) {
		if ok {
			m.mu.Lock()
			delete(m.sessions, id)
			m.mu.Unlock()
		}
		return New(), nil
	}
	return s.Clone(), nil
}

func (m *memoryStore) Save(_ context.Context, id string, s Session) error {
	s.UpdatedAt = m.now()
	m.mu.Lock()
	m.sessions[id] = s.Clone()
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Reset(ctx context.Context, id string) error {
	return m.Save(ctx, id, New())
}
