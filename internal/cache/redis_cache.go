package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/dungeon-atlas/internal/logging"
)

// RedisCache реализует ImageCache поверх Redis.
// Несколько экземпляров сервера могут разделять один кеш.
type RedisCache struct {
	client *redis.Client
	config *CacheConfig

	metrics      CacheMetrics
	metricsMutex sync.Mutex
}

// NewRedisCache создаёт Redis кеш и проверяет соединение.
//
// Параметры:
//
//	config - адрес Redis и TTL по умолчанию
//
// Возвращает:
//
//	*RedisCache - готовый к использованию кеш
//	error - ошибка подключения
func NewRedisCache(config *CacheConfig) (*RedisCache, error) {
	applyDefaults(config)

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.RedisURL,
		Password:     config.RedisPassword,
		DB:           config.RedisDB,
		MaxRetries:   1,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	// Проверяем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("Redis cache initialized: %s", config.RedisURL)
	return &RedisCache{client: rdb, config: config}, nil
}

// Get получает значение по ключу из Redis
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()

	r.metricsMutex.Lock()
	defer r.metricsMutex.Unlock()
	r.metrics.TotalRequests++
	defer r.metrics.updateHitRatio()

	if errors.Is(err, redis.Nil) {
		r.metrics.CacheMisses++
		return nil, ErrCacheMiss
	}
	if err != nil {
		r.metrics.CacheMisses++
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	r.metrics.CacheHits++
	return data, nil
}

// Set сохраняет значение с TTL
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.config.DefaultTTL
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) GetMetrics() CacheMetrics {
	r.metricsMutex.Lock()
	defer r.metricsMutex.Unlock()
	return r.metrics
}
