// Package memory provides an in-process answer cache with lazy TTL
// expiry. Expired entries are dropped on read; there is no background
// reaper.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.AnswerCache = (*Cache)(nil)

// entry is one cached answer with its expiry deadline.
type entry struct {
	answer    domain.Answer
	expiresAt time.Time
}

// Cache is an in-memory implementation of driven.AnswerCache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	// now is swappable for tests.
	now func() time.Time
}

// NewCache creates an empty answer cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached answer for a key. An expired entry counts as a
// miss and is removed.
func (c *Cache) Get(_ context.Context, key string) (*domain.Answer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, domain.ErrNotFound
	}
	answer := e.answer
	return &answer, nil
}

// Set stores an answer under a key. A non-positive ttl stores nothing,
// so a zero-lifetime entry can never be served.
func (c *Cache) Set(_ context.Context, key string, answer *domain.Answer, ttl time.Duration) error {
	if ttl <= 0 || answer == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		answer:    *answer,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Clear removes all entries.
func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	return nil
}

// Close releases resources.
func (c *Cache) Close() error {
	return nil
}
