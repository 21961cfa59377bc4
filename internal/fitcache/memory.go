package fitcache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/objones25/clusterfit/internal/monitor"
)

const defaultMemorySize = 10000

// MemoryCache is an in-process LRU cache of scores
type MemoryCache struct {
	entries *lru.Cache[string, float64]
}

// NewMemory creates an LRU cache holding at most size scores
func NewMemory(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = defaultMemorySize
	}
	entries, err := lru.New[string, float64](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &MemoryCache{entries: entries}, nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (float64, bool, error) {
	if key == "" {
		return 0, false, ErrEmptyKey
	}
	start := time.Now()
	score, ok := m.entries.Get(key)
	monitor.CacheLatency.WithLabelValues("memory", "get").Observe(time.Since(start).Seconds())
	monitor.CacheOperations.WithLabelValues("memory", "get", hitLabel(ok)).Inc()
	return score, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, score float64) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.entries.Add(key, score)
	monitor.CacheOperations.WithLabelValues("memory", "set", "success").Inc()
	return nil
}

// Len returns the number of cached scores
func (m *MemoryCache) Len() int { return m.entries.Len() }

func (m *MemoryCache) Close() error {
	m.entries.Purge()
	return nil
}

func hitLabel(ok bool) string {
	if ok {
		return "hit"
	}
	return "miss"
}
