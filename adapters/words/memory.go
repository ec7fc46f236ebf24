package words

import (
	"context"
	"sync"

	"github.com/elum-utils/gatekeeper/models"
)

// MemoryStorage is an in-memory word storage implementation.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]models.RiskTier
}

// NewMemoryStorage creates a memory storage adapter.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]models.RiskTier)}
}

func (m *MemoryStorage) AddWord(_ context.Context, word string, tier models.RiskTier) error {
	m.mu.Lock()
	m.entries[word] = tier
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) RemoveWord(_ context.Context, word string) error {
	m.mu.Lock()
	delete(m.entries, word)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) GetWords(_ context.Context) (map[string]models.RiskTier, error) {
	m.mu.RLock()
	out := make(map[string]models.RiskTier, len(m.entries))
	for word, tier := range m.entries {
		out[word] = tier
	}
	m.mu.RUnlock()
	return out, nil
}

func (m *MemoryStorage) WordExists(_ context.Context, word string) (bool, error) {
	m.mu.RLock()
	_, ok := m.entries[word]
	m.mu.RUnlock()
	return ok, nil
}
