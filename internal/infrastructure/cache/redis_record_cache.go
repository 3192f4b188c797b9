package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	defaultKeyPrefix     = "signage:records:"
	defaultScanBatchSize = 100
)

// RedisRecordCache implements integration.RecordCache on Redis so that every
// instance shares fetched external records. Read failures count as misses.
type RedisRecordCache struct {
	client     *redis.Client
	ownsClient bool
	keyPrefix  string
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisRecordCacheOption is a functional option for configuring the cache
type RedisRecordCacheOption func(*RedisRecordCache)

// WithKeyPrefix sets the prefix of every cache key
func WithKeyPrefix(prefix string) RedisRecordCacheOption {
	return func(c *RedisRecordCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithTTL sets the lifetime of cached records; zero keeps them until Clear
func WithTTL(ttl time.Duration) RedisRecordCacheOption {
	return func(c *RedisRecordCache) {
		c.ttl = ttl
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisRecordCacheOption {
	return func(c *RedisRecordCache) {
		c.logger = logger
	}
}

// NewRedisRecordCache connects to Redis and creates a record cache owning the client
func NewRedisRecordCache(cfg RedisConfig, opts ...RedisRecordCacheOption) (*RedisRecordCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisRecordCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisRecordCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client.
func NewRedisRecordCacheWithClient(client *redis.Client, opts ...RedisRecordCacheOption) *RedisRecordCache {
	c := &RedisRecordCache{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisRecordCache) cacheKey(key integration.RecordKey) string {
	return c.keyPrefix + key.String()
}

// Get retrieves a record from cache
func (c *RedisRecordCache) Get(ctx context.Context, key integration.RecordKey) (*integration.ExternalRecord, bool) {
	cacheKey := c.cacheKey(key)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Failed to read external record from cache", logger.RecordKey(key), zap.Error(err))
		return nil, false
	}

	record, err := decodeRecord(data)
	if err != nil {
		c.logger.Warn("Dropping corrupted cache entry", logger.RecordKey(key), zap.Error(err))
		_ = c.client.Del(ctx, cacheKey)
		return nil, false
	}
	return record, true
}

// Set stores a record under its own key
func (c *RedisRecordCache) Set(ctx context.Context, record *integration.ExternalRecord) error {
	if record == nil {
		return nil
	}
	data, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := c.client.Set(ctx, c.cacheKey(record.Key()), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set record in cache: %w", err)
	}
	return nil
}

// Clear deletes every key under the cache prefix. SCAN is used instead of
// KEYS so Redis is never blocked.
func (c *RedisRecordCache) Clear(ctx context.Context) error {
	var cursor uint64
	var deleted int64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Info("Cleared external record cache", zap.Int64("deleted_count", deleted))
	return nil
}

// Close releases the client when the cache created it
func (c *RedisRecordCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ integration.RecordCache = (*RedisRecordCache)(nil)

// cachedRecord is the JSON representation of a cached record
type cachedRecord struct {
	MappingID   string                 `json:"mapping_id"`
	SourceID    string                 `json:"source_id"`
	EntityType  integration.EntityType `json:"entity_type"`
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Price       decimal.NullDecimal    `json:"price"`
	ImageURL    string                 `json:"image_url,omitempty"`
	Data        map[string]any         `json:"data,omitempty"`
	SyncedAt    time.Time              `json:"synced_at"`
}

func encodeRecord(r *integration.ExternalRecord) ([]byte, error) {
	return json.Marshal(cachedRecord{
		MappingID:   r.MappingID,
		SourceID:    r.SourceID,
		EntityType:  r.EntityType,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Data:        r.Data,
		SyncedAt:    r.SyncedAt,
	})
}

// decodeRecord keeps numbers in data as json.Number so prices survive exactly
func decodeRecord(data []byte) (*integration.ExternalRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var c cachedRecord
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &integration.ExternalRecord{
		MappingID:   c.MappingID,
		SourceID:    c.SourceID,
		EntityType:  c.EntityType,
		Name:        c.Name,
		Description: c.Description,
		Price:       c.Price,
		ImageURL:    c.ImageURL,
		Data:        c.Data,
		SyncedAt:    c.SyncedAt,
	}, nil
}
