package session

import (
	"context"
	"sync"
)

// MemoryRepository keeps encoded sessions in a map. Records are stored in
// their wire form so callers never share pointers with the repository.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (m *MemoryRepository) Load(ctx context.Context, userID string) (*Session, error) {
	m.mu.RLock()
	raw, ok := m.data[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return Decode(raw)
}

func (m *MemoryRepository) Save(ctx context.Context, s *Session) error {
	raw, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[s.UserID] = raw
	m.mu.Unlock()
	return nil
}

// Len reports how many sessions are stored.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
