// Package cache keeps classified days in memory.
package cache

import (
	"sync"

	"github.com/icodeforyou/spotprice-go/types"
)

const DefaultRetention = 7

// DayCache is a bounded map of day key to result. Once it holds more than
// retention entries the oldest inserted ones are evicted. Lookups do not
// affect eviction order.
type DayCache struct {
	mu        sync.RWMutex
	retention int
	days      map[string]types.DayResult
	order     []string // keys, oldest insert first
}

func NewDayCache(retention int) *DayCache {
	if retention < 1 {
		retention = DefaultRetention
	}
	return &DayCache{
		retention: retention,
		days:      make(map[string]types.DayResult, retention+1),
		order:     make([]string, 0, retention+1),
	}
}

func (c *DayCache) Get(key string) (types.DayResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	day, ok := c.days[key]
	return day, ok
}

// Put stores day under key. Replacing an existing key keeps its original
// insertion position.
func (c *DayCache) Put(key string, day types.DayResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.days[key]; !exists {
		c.order = append(c.order, key)
	}
	c.days[key] = day
	c.evict()
}

// evict must be called with the write lock held.
func (c *DayCache) evict() {
	for len(c.order) > c.retention {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.days, oldest)
	}
}

func (c *DayCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.days)
}

// Keys returns the cached day keys, oldest insert first.
func (c *DayCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

func (c *DayCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.days = make(map[string]types.DayResult, c.retention+1)
	c.order = c.order[:0]
}
