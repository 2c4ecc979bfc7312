package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache - кеш в памяти процесса с TTL и ограничением числа записей.
// При переполнении вытесняется запись с ближайшим истечением.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	config  *CacheConfig
	metrics CacheMetrics
	now     func() time.Time
}

// NewMemoryCache создаёт кеш в памяти
func NewMemoryCache(config *CacheConfig) *MemoryCache {
	applyDefaults(config)
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		config:  config,
		now:     time.Now,
	}
}

// Get возвращает копию значения
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.TotalRequests++
	e, ok := m.entries[key]
	if ok && !m.now().Before(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	if !ok {
		m.metrics.CacheMisses++
		m.metrics.updateHitRatio()
		return nil, ErrCacheMiss
	}

	m.metrics.CacheHits++
	m.metrics.updateHitRatio()
	return append([]byte(nil), e.value...), nil
}

// Set сохраняет копию значения
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = m.config.DefaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.config.MaxEntries {
		m.evictLocked()
	}
	m.entries[key] = memoryEntry{
		value:   append([]byte(nil), value...),
		expires: m.now().Add(ttl),
	}
	return nil
}

func (m *MemoryCache) evictLocked() {
	var victim string
	var earliest time.Time
	for k, e := range m.entries {
		if victim == "" || e.expires.Before(earliest) {
			victim, earliest = k, e.expires
		}
	}
	delete(m.entries, victim)
}

// Len возвращает число записей
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryCache) Close() error { return nil }

func (m *MemoryCache) GetMetrics() CacheMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}
