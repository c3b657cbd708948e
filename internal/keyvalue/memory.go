package keyvalue

import (
	"context"
	"sync"
)

// Memory is an in-process Store backed by a map. It backs tests and demo
// runs that have no database file.
type Memory struct {
	mu        sync.RWMutex
	data      map[string][]byte
	available bool
}

// NewMemory creates an empty, available in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data:      make(map[string][]byte),
		available: true,
	}
}

// IsAvailable reports the store's availability flag.
func (m *Memory) IsAvailable(ctx context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available
}

// SetAvailable flips the availability flag. Tests use this to simulate an
// unreachable store.
func (m *Memory) SetAvailable(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = ok
}

// GetData returns a copy of the value stored under key.
func (m *Memory) GetData(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// SetData stores a copy of value under key.
func (m *Memory) SetData(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
