package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores successful extractions keyed by message text.
type Cache interface {
	GetExtraction(ctx context.Context, text string) (Extraction, bool, error)
	PutExtraction(ctx context.Context, text string, e Extraction) error
}

// DefaultCacheTTL bounds how long a cached extraction is trusted.
const DefaultCacheTTL = 7 * 24 * time.Hour

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to addr and verifies the server answers.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "extract:" + hex.EncodeToString(sum[:])
}

func (c *RedisCache) GetExtraction(ctx context.Context, text string) (Extraction, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Extraction{}, false, nil
	}
	if err != nil {
		return Extraction{}, false, err
	}
	var e Extraction
	if err := json.Unmarshal(raw, &e); err != nil {
		return Extraction{}, false, err
	}
	return e, e.OK, nil
}

func (c *RedisCache) PutExtraction(ctx context.Context, text string, e Extraction) error {
	if !e.OK {
		return nil
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(text), raw, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
