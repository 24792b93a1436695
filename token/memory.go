package token

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process [Store] for tests, CLIs, and single-user
// tooling. Values honor the write TTL.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements [Store].
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set implements [Store].
func (m *MemoryStore) Set(_ context.Context, key, value string, attrs Attributes) error {
	ttl := attrs.TTL
	if ttl <= 0 {
		ttl = DefaultWriteTTL
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Remove implements [Store]. There is no separate domain scope in process
// memory, so a single delete covers both.
func (m *MemoryStore) Remove(_ context.Context, key string, _ Attributes) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
