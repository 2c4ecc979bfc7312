package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ImageCache хранит готовые ответы сервера (PNG уровней) по ключу.
//
// Использование:
//
//	images, err := cache.New(cfg)
//	data, err := images.Get(ctx, "png:deceit:0:grid")
//	err = images.Set(ctx, "png:deceit:0:grid", data, 0)
type ImageCache interface {
	// Get получает значение по ключу из кеша.
	// Возвращает ErrCacheMiss если ключ не найден.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с указанным TTL.
	// TTL = 0 означает TTL по умолчанию из конфигурации.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close закрывает соединение с кешем.
	Close() error

	// GetMetrics возвращает копию метрик кеша.
	GetMetrics() CacheMetrics
}

// CacheMetrics содержит метрики кеша
type CacheMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	HitRatio      float64 `json:"hit_ratio"`
}

func (m *CacheMetrics) updateHitRatio() {
	if m.TotalRequests > 0 {
		m.HitRatio = float64(m.CacheHits) / float64(m.TotalRequests)
	}
}

// Бэкенды кеша
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// CacheConfig содержит конфигурацию кеша изображений
type CacheConfig struct {
	Backend string `yaml:"backend"`

	// Redis конфигурация
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	DefaultTTL time.Duration `yaml:"default_ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// ErrCacheMiss возвращается при отсутствии ключа
var ErrCacheMiss = errors.New("cache miss")

// ErrUnknownBackend возвращается для неизвестного бэкенда
var ErrUnknownBackend = errors.New("unknown cache backend")

// New создаёт кеш по конфигурации. Для бэкенда none возвращает nil.
func New(cfg CacheConfig) (ImageCache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return NewMemoryCache(&cfg), nil
	case BackendRedis:
		rc, err := NewRedisCache(&cfg)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

func applyDefaults(cfg *CacheConfig) {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = 10 * time.Minute
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = 256
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "localhost:6379"
	}
}
