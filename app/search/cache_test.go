package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResultCache(t *testing.T) {
	t.Run("get after put", func(t *testing.T) {
		cache := NewResultCache(8, time.Minute)
		resp := &SearchResponse{}
		cache.Put("a", resp)
		assert.Same(t, resp, cache.Get("a"))
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		cache := NewResultCache(8, time.Minute)
		assert.Nil(t, cache.Get("missing"))
		stats := cache.Stats()
		assert.Equal(t, uint64(1), stats.Misses)
		assert.Equal(t, uint64(0), stats.Hits)
	})

	t.Run("lru eviction at capacity", func(t *testing.T) {
		cache := NewResultCache(2, time.Minute)
		cache.Put("a", &SearchResponse{})
		cache.Put("b", &SearchResponse{})

		// Touch "a" so "b" becomes the eviction candidate.
		cache.Get("a")
		cache.Put("c", &SearchResponse{})

		assert.NotNil(t, cache.Get("a"))
		assert.Nil(t, cache.Get("b"))
		assert.NotNil(t, cache.Get("c"))
	})

	t.Run("ttl expiry", func(t *testing.T) {
		cache := NewResultCache(8, 10*time.Millisecond)
		cache.Put("a", &SearchResponse{})
		time.Sleep(25 * time.Millisecond)
		assert.Nil(t, cache.Get("a"))
	})

	t.Run("put on existing key refreshes value", func(t *testing.T) {
		cache := NewResultCache(8, time.Minute)
		first := &SearchResponse{TookMs: 1}
		second := &SearchResponse{TookMs: 2}
		cache.Put("a", first)
		cache.Put("a", second)
		assert.Same(t, second, cache.Get("a"))
		assert.Equal(t, 1, cache.Stats().Entries)
	})

	t.Run("clear drops entries but keeps counters", func(t *testing.T) {
		cache := NewResultCache(8, time.Minute)
		cache.Put("a", &SearchResponse{})
		cache.Get("a")
		cache.Clear()

		assert.Nil(t, cache.Get("a"))
		stats := cache.Stats()
		assert.Equal(t, 0, stats.Entries)
		assert.Equal(t, uint64(1), stats.Hits)
		assert.Equal(t, uint64(1), stats.Misses)
	})

	t.Run("sweep removes only expired entries", func(t *testing.T) {
		cache := NewResultCache(8, 10*time.Millisecond)
		cache.Put("old", &SearchResponse{})
		time.Sleep(25 * time.Millisecond)
		cache.Put("fresh", &SearchResponse{})

		removed := cache.Sweep()
		assert.Equal(t, 1, removed)
		assert.Equal(t, 1, cache.Stats().Entries)
		assert.NotNil(t, cache.Get("fresh"))
	})

	t.Run("zero capacity clamps to one", func(t *testing.T) {
		cache := NewResultCache(0, time.Minute)
		cache.Put("a", &SearchResponse{})
		cache.Put("b", &SearchResponse{})
		assert.Equal(t, 1, cache.Stats().Entries)
	})
}
