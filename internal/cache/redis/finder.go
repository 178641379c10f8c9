// Package redis caches article lookups in Redis in front of a slower Finder.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/luukumag/article-preview/internal/article"
	"github.com/luukumag/article-preview/internal/metrics"
)

const connectTimeout = 5 * time.Second

// Connect creates a Redis client from url and verifies connectivity.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := goredis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// CachedFinder is a read-through article.Finder. Only found articles are
// cached; misses and lookup errors always reach the underlying Finder.
type CachedFinder struct {
	client goredis.Cmdable
	next   article.Finder
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewCachedFinder wraps next with a Redis cache.
func NewCachedFinder(client goredis.Cmdable, next article.Finder, ttl time.Duration, prefix string, logger *zap.Logger) *CachedFinder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFinder{
		client: client,
		next:   next,
		ttl:    ttl,
		prefix: prefix,
		logger: logger,
	}
}

// Find serves key from Redis when present, otherwise from the wrapped Finder.
func (c *CachedFinder) Find(ctx context.Context, key article.Key) (article.Article, error) {
	cacheKey := c.cacheKey(key)

	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var a article.Article
		jsonErr := json.Unmarshal(raw, &a)
		if jsonErr == nil {
			metrics.ObserveCache("hit")
			return a, nil
		}
		metrics.ObserveCache("error")
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", cacheKey), zap.Error(jsonErr))
	case errors.Is(err, goredis.Nil):
		metrics.ObserveCache("miss")
	default:
		metrics.ObserveCache("error")
		c.logger.Warn("redis get failed", zap.String("key", cacheKey), zap.Error(err))
	}

	a, err := c.next.Find(ctx, key)
	if err != nil {
		return article.Article{}, err //nolint:wrapcheck
	}

	payload, err := json.Marshal(a)
	if err != nil {
		c.logger.Warn("encode cache entry failed", zap.String("key", cacheKey), zap.Error(err))
		return a, nil
	}
	if err := c.client.Set(ctx, cacheKey, payload, c.ttl).Err(); err != nil {
		metrics.ObserveCache("error")
		c.logger.Warn("redis set failed", zap.String("key", cacheKey), zap.Error(err))
	}
	return a, nil
}

// Ping reports the readiness of the wrapped Finder. The cache itself is
// optional and never makes the service unready.
func (c *CachedFinder) Ping(ctx context.Context) error {
	if p, ok := c.next.(article.Pinger); ok {
		return p.Ping(ctx) //nolint:wrapcheck
	}
	return nil
}

func (c *CachedFinder) cacheKey(key article.Key) string {
	if c.prefix == "" {
		return key.String()
	}
	return c.prefix + ":" + key.String()
}
