package cache

import (
	"time"

	"freelanceradar/internal/scraper"
)

// Service is a key-value store for aggregation results with per-entry TTL.
// Instances are constructed once at process start and injected, so tests can
// run against isolated caches.
type Service interface {
	// Get retrieves a value. The second return is false when the key is
	// absent or expired; an expired entry is removed on read.
	Get(key string) ([]scraper.Listing, bool)

	// Set stores a value with an expiration time, replacing any existing
	// entry wholesale.
	Set(key string, value []scraper.Listing, ttl time.Duration)

	// Delete removes a value; absent keys are a no-op.
	Delete(key string)

	// Clear removes all entries.
	Clear()

	// Size returns the number of stored entries.
	Size() int
}
