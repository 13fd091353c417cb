// Package cache holds generated terrains between the generate and
// export calls, so an export does not redo acquisition.
package cache

import (
	"sync"

	"github.com/terrain3d/backend/internal/geo"
	"github.com/terrain3d/backend/internal/heightmap"
	"github.com/terrain3d/backend/internal/model"
)

// Terrain is one cached generation result.
type Terrain struct {
	ID       string
	Grid     *heightmap.Grid
	Bounds   geo.BBox
	Region   string
	Metadata model.TerrainMetadata
}

// TerrainCache is a mutex-guarded store with FIFO eviction: when full,
// the oldest entry goes first. Latency here matters less than in a
// hot path, but handlers still hit it on every export.
type TerrainCache struct {
	m        sync.Mutex
	capacity int
	entries  map[string]Terrain
	order    []string
}

// NewTerrainCache creates a cache bounded to capacity entries.
func NewTerrainCache(capacity int) *TerrainCache {
	if capacity < 1 {
		capacity = 1
	}
	return &TerrainCache{
		capacity: capacity,
		entries:  make(map[string]Terrain),
	}
}

// Put stores a terrain, evicting the oldest entries beyond capacity.
func (c *TerrainCache) Put(t Terrain) {
	c.m.Lock()
	defer c.m.Unlock()

	if _, exists := c.entries[t.ID]; !exists {
		c.order = append(c.order, t.ID)
	}
	c.entries[t.ID] = t

	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Get returns a cached terrain by id.
func (c *TerrainCache) Get(id string) (Terrain, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	t, ok := c.entries[id]
	return t, ok
}

// Len returns the number of cached terrains.
func (c *TerrainCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.entries)
}

// Reset drops all entries.
func (c *TerrainCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.entries = make(map[string]Terrain)
	c.order = nil
}
