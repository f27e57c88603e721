package chart

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedRenderer wraps a Renderer with a Redis cache. The chart for a given
// birth date only changes day to day, so entries are keyed by birth date and
// calendar day. Cache failures fall back to a fresh render.
type CachedRenderer struct {
	inner  *Renderer
	rdb    *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

// NewCachedRenderer wraps inner with a Redis cache.
func NewCachedRenderer(inner *Renderer, rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *CachedRenderer {
	return &CachedRenderer{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

// Render returns the cached PNG when present, rendering and caching otherwise.
func (c *CachedRenderer) Render(birthDate, now time.Time) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("vitameter:chart:%s:%s",
		birthDate.Format("2006-01-02"), now.Format("2006-01-02"))

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		return data, nil
	} else if err != redis.Nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("chart cache get failed")
	}

	data, err := c.inner.Render(birthDate, now)
	if err != nil {
		return nil, err
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("chart cache set failed")
	}
	return data, nil
}
