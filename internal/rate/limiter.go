// Package rate limita intentos por key con ventana fija. El storefront lo usa
// para frenar fuerza bruta en los formularios de acceso.
package rate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
	Hits       int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func result(hits, limit int64, ttl, window time.Duration) Result {
	res := Result{Allowed: hits <= limit, Remaining: max(limit-hits, 0), Hits: hits}
	if !res.Allowed {
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = window
		}
	}
	return res
}

func windowKey(prefix, key string, start time.Time) string {
	return prefix + strings.ReplaceAll(key, " ", "_") + ":" + strconv.FormatInt(start.Unix(), 10)
}

// RedisLimiter: INCR + EXPIRE por ventana; sirve con varias réplicas del storefront.
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	max    int64
	window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := windowKey(l.prefix, key, time.Now().UTC().Truncate(l.window))

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate: redis: %w", err)
	}

	left := ttl.Val()
	// primer hit de la ventana: fijar expiración
	if incr.Val() == 1 {
		_ = l.client.Expire(ctx, k, l.window).Err()
		left = l.window
	}
	return result(incr.Val(), l.max, left, l.window), nil
}

// MemoryLimiter cuenta en proceso (una sola réplica o desarrollo).
type MemoryLimiter struct {
	mu     sync.Mutex
	c      *gocache.Cache
	max    int64
	window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now()
	start := now.Truncate(l.window)
	ttl := start.Add(l.window).Sub(now)
	k := windowKey("", key, start)

	l.mu.Lock()
	defer l.mu.Unlock()
	// Add falla si la key ya existe; en ese caso solo incrementamos.
	_ = l.c.Add(k, int64(0), ttl)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		return Result{}, fmt.Errorf("rate: memory: %w", err)
	}
	return result(hits, l.max, ttl, l.window), nil
}
