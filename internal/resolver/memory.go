package resolver

import (
	"context"
	"maps"
	"sync"

	"github.com/starford/thermo/internal/models"
)

// MemoryCache is an in-process Cache for deployments without a database.
type MemoryCache struct {
	mu      sync.RWMutex
	records map[string]models.Record
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{records: make(map[string]models.Record)}
}

func (c *MemoryCache) Get(_ context.Context, id string) (models.Record, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[id]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(rec), true, nil
}

func (c *MemoryCache) Put(_ context.Context, id string, rec models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[id] = maps.Clone(rec)
	return nil
}

// Len returns the number of cached species.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
