package catalog

import (
	"context"
	"sync"
)

// Cache loads a catalog once per process and hands the same instance to every caller.
type Cache struct {
	opts []Option

	mu  sync.Mutex
	cat *Catalog
}

// NewCache creates a cache that loads with opts on first use.
func NewCache(opts ...Option) *Cache {
	return &Cache{opts: opts}
}

// Get returns the cached catalog, loading it on first call. A failed load is retried
// on the next call.
func (c *Cache) Get(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cat != nil {
		return c.cat, nil
	}
	cat, err := Load(ctx, c.opts...)
	if err != nil {
		return nil, err
	}
	c.cat = cat
	return cat, nil
}

// Shutdown closes the cached catalog.
func (c *Cache) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cat != nil {
		_ = c.cat.Close()
		c.cat = nil
	}
}
