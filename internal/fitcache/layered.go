package fitcache

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// LayeredCache reads through a fast front cache to a shared back cache and
// writes to both
type LayeredCache struct {
	front Cache
	back  Cache
}

// NewLayered combines two caches
func NewLayered(front, back Cache) *LayeredCache {
	return &LayeredCache{front: front, back: back}
}

func (l *LayeredCache) Get(ctx context.Context, key string) (float64, bool, error) {
	if score, ok, err := l.front.Get(ctx, key); err != nil || ok {
		return score, ok, err
	}
	score, ok, err := l.back.Get(ctx, key)
	if err != nil || !ok {
		return score, ok, err
	}
	if err := l.front.Set(ctx, key, score); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to promote score to front cache")
	}
	return score, true, nil
}

func (l *LayeredCache) Set(ctx context.Context, key string, score float64) error {
	return errors.Join(l.front.Set(ctx, key, score), l.back.Set(ctx, key, score))
}

func (l *LayeredCache) Close() error {
	return errors.Join(l.front.Close(), l.back.Close())
}
