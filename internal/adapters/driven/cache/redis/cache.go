// Package redis provides an answer cache backed by a Redis server.
// Entries expire server-side via the key TTL, so Get never has to
// reason about staleness itself. Keys carry a fixed prefix so Clear
// can remove the cache without flushing a shared database.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// keyPrefix namespaces answer entries within the Redis keyspace.
const keyPrefix = "assist:answer:"

// Ensure Cache implements the interface.
var _ driven.AnswerCache = (*Cache)(nil)

// Cache is a Redis-backed implementation of driven.AnswerCache.
type Cache struct {
	client *redis.Client
}

// NewCache connects to the Redis server at addr and verifies the
// connection with a ping.
func NewCache(ctx context.Context, addr string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &Cache{client: client}, nil
}

// Get returns the cached answer for a key. A missing or expired key is
// reported as ErrNotFound.
func (c *Cache) Get(ctx context.Context, key string) (*domain.Answer, error) {
	payload, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cached answer: %w", err)
	}

	var answer domain.Answer
	if err := json.Unmarshal(payload, &answer); err != nil {
		// A corrupt entry is unusable; treat it as a miss and drop it.
		_ = c.client.Del(ctx, keyPrefix+key).Err()
		return nil, domain.ErrNotFound
	}
	return &answer, nil
}

// Set stores an answer under a key with the given lifetime. A
// non-positive ttl stores nothing.
func (c *Cache) Set(ctx context.Context, key string, answer *domain.Answer, ttl time.Duration) error {
	if ttl <= 0 || answer == nil {
		return nil
	}

	payload, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("encode answer: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store cached answer: %w", err)
	}
	return nil
}

// Clear removes all cached answers, leaving unrelated keys untouched.
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("clear cached answer: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cached answers: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
