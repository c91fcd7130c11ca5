// Package memory holds the process-local sentiment cache.
package memory

import (
	"context"
	"sync"

	"review_sentiment/internal/adapters/observability"
	"review_sentiment/internal/domain"
)

// Cache is a mutex-guarded map from review text to label. Entries live for the
// life of the process.
type Cache struct {
	mu sync.RWMutex
	m  map[string]domain.Sentiment
}

func New() *Cache { return &Cache{m: make(map[string]domain.Sentiment)} }

func (c *Cache) Get(_ context.Context, text string) (domain.Sentiment, bool, error) {
	c.mu.RLock()
	s, ok := c.m[text]
	c.mu.RUnlock()
	if !ok {
		observability.ObserveCache("memory", "miss")
		return domain.Unclassified, false, nil
	}
	observability.ObserveCache("memory", "hit")
	return s, true, nil
}

func (c *Cache) Put(_ context.Context, text string, s domain.Sentiment) error {
	c.mu.Lock()
	c.m[text] = s
	c.mu.Unlock()
	observability.ObserveCache("memory", "set")
	return nil
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
