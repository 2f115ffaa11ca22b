package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"StonkBot/internal/model"
)

// CachingFetcher decorates a SeriesFetcher with a Redis cache.
// Keys ignore q.End, so a window query is served from cache until the TTL expires.
type CachingFetcher struct {
	inner     SeriesFetcher
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingFetcher wraps inner with Redis caching.
// If ttl is 0 it defaults to one minute. If namespace is empty it uses "series".
func NewCachingFetcher(rdb *redis.Client, ttl time.Duration, inner SeriesFetcher, namespace string) *CachingFetcher {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "series"
	}
	return &CachingFetcher{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

func (c *CachingFetcher) Name() string { return "cached-" + c.inner.Name() }

// FetchSeries checks the cache first and falls back to the wrapped fetcher.
// Errors, including ErrNoData, are never cached.
func (c *CachingFetcher) FetchSeries(ctx context.Context, q model.SeriesQuery) ([]model.OHLCV, error) {
	if c.rdb == nil {
		return c.inner.FetchSeries(ctx, q)
	}

	key := c.cacheKey(q)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []model.OHLCV
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != nil && !errors.Is(err, redis.Nil) {
		log.Debug().Err(err).Str("component", "cache").Str("key", key).Msg("cache read failed")
	}

	out, err := c.inner.FetchSeries(ctx, q)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

func (c *CachingFetcher) cacheKey(q model.SeriesQuery) string {
	span := q.Period
	switch {
	case q.Buckets > 0:
		span = fmt.Sprintf("n%d", q.Buckets)
	case span == "" && q.Window > 0:
		span = "w" + q.Window.String()
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s:%t",
		c.namespace,
		q.Asset,
		safe(strings.ToUpper(q.Symbol)),
		q.Interval,
		safe(span),
		q.PrePost,
	)
}

func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
