// Package cache provides the TTL cache in front of flow and signal queries.
// Keys embed the data generation, so entries from before an ingest are never
// read again and simply expire.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values with a TTL.
type Cache interface {
	// Get returns the value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Sweeper is implemented by caches that hold expired entries until asked to
// drop them. Redis expires keys itself.
type Sweeper interface {
	// Sweep removes expired entries and returns how many were dropped.
	Sweep() int
}
