// Package cache provides the insight cache backends: Redis for shared
// deployments and an in-memory map for development and tests.
package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a process-local cache. TTL semantics match the Redis
// backend; zero TTL means no expiry.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	stop  chan struct{}
}

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// NewMemoryCache creates a memory cache with a background sweeper
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]memoryItem),
		stop:  make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Get retrieves a value. Expired entries count as misses.
func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return "", false, nil
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		return "", false, nil
	}
	return item.value, true, nil
}

// Set stores a value with TTL in seconds
func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl int) error {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(time.Duration(ttl) * time.Second)
	}

	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

// Delete removes a value
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Clear removes all values
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]memoryItem)
	c.mu.Unlock()
	return nil
}

// Close stops the background sweeper
func (c *MemoryCache) Close() {
	close(c.stop)
}

func (c *MemoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, item := range c.items {
				if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
