package redisad

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"review_sentiment/internal/adapters/observability"
	"review_sentiment/internal/domain"
)

const keyPrefix = "sentiment:"

// Cache stores resolved labels in Redis, keyed by a hash of the review text.
// A zero TTL keeps entries until evicted by Redis itself.
type Cache struct {
	c   *redis.Client
	ttl time.Duration
}

func New(addr, pass string, db int, ttl time.Duration) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), ttl)
}

func NewWithClient(c *redis.Client, ttl time.Duration) *Cache {
	return &Cache{c: c, ttl: ttl}
}

func Key(text string) string {
	sum := sha1.Sum([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (r *Cache) Get(ctx context.Context, text string) (domain.Sentiment, bool, error) {
	v, err := r.c.Get(ctx, Key(text)).Result()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return domain.Unclassified, false, nil
	}
	if err != nil {
		observability.ObserveCache("redis", "error")
		return domain.Unclassified, false, err
	}
	s := domain.ParseSentiment(v)
	if !s.Resolved() {
		// unknown payload; let the caller classify again
		observability.ObserveCache("redis", "miss")
		return domain.Unclassified, false, nil
	}
	observability.ObserveCache("redis", "hit")
	return s, true, nil
}

func (r *Cache) Put(ctx context.Context, text string, s domain.Sentiment) error {
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, Key(text), string(s), r.ttl).Err()
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }
