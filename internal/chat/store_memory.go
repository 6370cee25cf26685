package chat

import (
	"context"
	"sync"
)

// MemoryStore keeps the transcript for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(_ context.Context, turn Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn)
	return nil
}

// List returns a copy so callers can render without holding the lock.
func (m *MemoryStore) List(_ context.Context) ([]Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
	return nil
}
