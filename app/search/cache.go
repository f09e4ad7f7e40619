package search

import (
	"container/list"
	"sync"
	"time"
)

// ResultCache is a bounded LRU for search result pages. Entries expire
// after a TTL and the least recently used entry is evicted when the
// cache is full.
type ResultCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	entries    map[string]*list.Element
	eviction   *list.List

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	key       string
	value     *SearchResponse
	expiresAt time.Time
}

// CacheStats is a point-in-time snapshot of cache effectiveness.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

func NewResultCache(maxEntries int, ttl time.Duration) *ResultCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &ResultCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    make(map[string]*list.Element),
		eviction:   list.New(),
	}
}

// Get returns the cached response for key, or nil. Expired entries are
// dropped on access.
func (c *ResultCache) Get(key string) *SearchResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil
	}
	entry := elem.Value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return nil
	}
	c.eviction.MoveToFront(elem)
	c.hits++
	return entry.value
}

// Put stores a response under key, evicting the oldest entry when the
// cache is at capacity.
func (c *ResultCache) Put(key string, value *SearchResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.expiresAt = time.Now().Add(c.ttl)
		return
	}

	elem := c.eviction.PushFront(&cacheEntry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.entries[key] = elem

	if c.eviction.Len() > c.maxEntries {
		if oldest := c.eviction.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Clear drops every entry. Hit and miss counters survive.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.eviction.Init()
}

// Sweep removes expired entries and returns how many were dropped.
func (c *ResultCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*cacheEntry).expiresAt) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

func (c *ResultCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.entries, entry.key)
	c.eviction.Remove(elem)
}
