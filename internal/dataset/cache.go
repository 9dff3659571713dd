// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataset

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader produces a dataset for a cache key.
type Loader func(ctx context.Context) (*Dataset, error)

// Cache keeps loaded datasets for the life of the process. Concurrent loads
// of the same key share one call.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Dataset
	group singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]*Dataset)}
}

// Get returns the cached dataset for key, loading it on first use.
// Failed loads are not cached.
func (c *Cache) Get(ctx context.Context, key string, load Loader) (*Dataset, error) {
	c.mu.RLock()
	if ds, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return ds, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		ds, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items[key] = ds
		c.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
