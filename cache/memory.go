package cache

import (
	"sync"
	"time"
)

type memEntry struct {
	expires time.Time
	bytes   []byte
}

// MemCache is an in-process Provider with no eviction beyond expiry.
type MemCache struct {
	mu      sync.RWMutex
	entries map[string]memEntry
}

// NewMemCache returns an empty in-memory cache.
func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string]memEntry)}
}

// Get implements Provider.
func (m *MemCache) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.bytes, true, nil
}

// Put implements Provider.
func (m *MemCache) Put(key string, expires time.Time, bytes []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{expires: expires, bytes: bytes}
	return nil
}

// Purge implements Provider.
func (m *MemCache) Purge(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
