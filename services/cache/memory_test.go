package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"freelanceradar/internal/scraper"
)

func sample(title string) []scraper.Listing {
	return []scraper.Listing{{ID: "id-1", Title: title, Source: scraper.SourceWorkana}}
}

func TestMemoryCacheIdempotentRead(t *testing.T) {
	c := NewMemoryCache()
	c.Set("k", sample("trabajo"), time.Minute)

	first, ok := c.Get("k")
	assert.True(t, ok)
	second, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, first, second)
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := NewMemoryCache()
	c.Set("k", sample("trabajo"), 100*time.Millisecond)

	time.Sleep(150 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	// The expired read removed the entry
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCacheNoSlidingExpiration(t *testing.T) {
	c := NewMemoryCache()
	c.Set("k", sample("trabajo"), 150*time.Millisecond)

	// Reads must not extend the TTL
	time.Sleep(100 * time.Millisecond)
	_, ok := c.Get("k")
	assert.True(t, ok)

	time.Sleep(100 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCacheOverwrite(t *testing.T) {
	c := NewMemoryCache()
	c.Set("k", sample("viejo"), time.Minute)
	c.Set("k", sample("nuevo"), time.Minute)

	value, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "nuevo", value[0].Title)
	assert.Equal(t, 1, c.Size())
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := NewMemoryCache()
	c.Set("a", sample("uno"), time.Minute)
	c.Set("b", sample("dos"), time.Minute)

	c.Delete("a")
	// Deleting an absent key is a no-op
	c.Delete("a")
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
	_, ok := c.Get("b")
	assert.False(t, ok)
}
