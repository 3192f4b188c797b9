package cache

import (
	"fmt"

	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RecordCacheFactory creates the external record cache selected by configuration
type RecordCacheFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RecordCacheFactoryOption is a functional option for configuring the factory
type RecordCacheFactoryOption func(*RecordCacheFactory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) RecordCacheFactoryOption {
	return func(f *RecordCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to a
// process-local cache. Default is true.
func WithInMemoryFallback(allow bool) RecordCacheFactoryOption {
	return func(f *RecordCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRecordCacheFactory creates a new factory
func NewRecordCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...RecordCacheFactoryOption) *RecordCacheFactory {
	f := &RecordCacheFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-backed record cache
func (f *RecordCacheFactory) CreateRedisCache() (*RedisRecordCache, error) {
	c, err := NewRedisRecordCache(
		RedisConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		},
		WithKeyPrefix(f.cacheConfig.KeyPrefix),
		WithTTL(f.cacheConfig.TTL),
		WithCacheLogger(f.logger.Named("record_cache")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis record cache: %w", err)
	}
	return c, nil
}

// CreateCache returns the configured record cache. The memory backend never
// fails; the redis backend falls back to memory when allowed.
// WARNING: a process-local cache is not cleared by writes on other instances.
func (f *RecordCacheFactory) CreateCache() (integration.RecordCache, error) {
	if f.cacheConfig.Backend != config.CacheBackendRedis {
		f.logger.Info("Using in-memory external record cache")
		return NewInMemoryRecordCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("Using Redis external record cache")
		return c, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis record cache required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory external record cache. "+
		"Writes on other instances will not clear this cache.",
		zap.Error(err),
	)
	return NewInMemoryRecordCache(), nil
}
