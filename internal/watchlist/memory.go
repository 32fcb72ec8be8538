package watchlist

import (
	"context"
	"sync"
)

// MemoryStore keeps watchlists in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	lists map[string][]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string][]string)}
}

// Load returns a copy of owner's list
func (m *MemoryStore) Load(_ context.Context, owner string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.lists[owner]
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

// Add appends code unless already present
func (m *MemoryStore) Add(_ context.Context, owner, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.lists[owner] {
		if c == code {
			return nil
		}
	}
	m.lists[owner] = append(m.lists[owner], code)
	return nil
}

// Remove deletes code from owner's list
func (m *MemoryStore) Remove(_ context.Context, owner, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.lists[owner]
	for i, c := range list {
		if c == code {
			m.lists[owner] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}
