package fitcache

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned when a cache key is empty
var ErrEmptyKey = errors.New("key cannot be empty")

// Cache memoizes pipeline fitness values
type Cache interface {
	// Get returns the cached score; ok is false on a miss
	Get(ctx context.Context, key string) (score float64, ok bool, err error)

	// Set stores a score
	Set(ctx context.Context, key string, score float64) error

	// Close releases any connection held by the cache
	Close() error
}
