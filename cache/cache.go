package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a byte-oriented key/value store with per-key expiry. A ttl <= 0 means
// the key never expires. Expired keys behave as absent.
type Cache interface {
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

type memoryEntry struct {
	val       []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type MemoryCache struct {
	mu  sync.RWMutex
	m   map[string]memoryEntry
	now func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	entry := memoryEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.m[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.m[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if entry.expired(m.now()) {
		m.mu.Lock()
		if current, still := m.m[key]; still && current.expired(m.now()) {
			delete(m.m, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.val...), true, nil
}

func (m *MemoryCache) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.m, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := m.Get(ctx, key)
	return ok, err
}

func (m *MemoryCache) Close() error {
	return nil
}
