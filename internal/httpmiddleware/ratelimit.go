package httpmiddleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request from key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// TokenBucket is an in-memory per-key rate limiter. Each process keeps its
// own buckets; use RedisLimiter to share a budget across replicas.
type TokenBucket struct {
	capacity  int
	rate      int
	now       func() time.Time
	mu        sync.Mutex
	state     map[string]*bucket
	lastSweep time.Time
}

// sweepEvery is how often Allow drops buckets that have refilled completely.
const sweepEvery = time.Minute

type bucket struct {
	tokens int
	last   time.Time
}

// NewTokenBucket creates a limiter with capacity tokens refilled at perMinute.
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &TokenBucket{
		capacity: capacity,
		rate:     perMinute,
		now:      time.Now,
		state:    make(map[string]*bucket),
	}
}

// Allow implements Limiter.
func (l *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)
	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true, nil
	}
	elapsed := now.Sub(b.last).Minutes()
	refill := int(elapsed * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// sweep removes buckets idle long enough to be full again. A full bucket
// behaves exactly like a missing one, so dropping it changes no decision.
func (l *TokenBucket) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	l.lastSweep = now
	if l.rate <= 0 {
		return
	}
	idle := time.Duration(float64(l.capacity) / float64(l.rate) * float64(time.Minute))
	for key, b := range l.state {
		if now.Sub(b.last) >= idle {
			delete(l.state, key)
		}
	}
}

// RedisLimiter is a fixed one-minute window counter shared through Redis.
type RedisLimiter struct {
	client    *redis.Client
	prefix    string
	perMinute int
	now       func() time.Time
}

// NewRedisLimiter creates a limiter keyed under prefix.
func NewRedisLimiter(client *redis.Client, prefix string, perMinute int) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, perMinute: perMinute, now: time.Now}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := l.now().Unix() / 60
	k := l.windowKey(key, window)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.perMinute), nil
}

func (l *RedisLimiter) windowKey(key string, window int64) string {
	return l.prefix + ":" + key + ":" + strconv.FormatInt(window, 10)
}

// NewLimiter selects a limiter for backend: "memory", "redis" or "off".
// It returns nil for "off" or a non-positive budget. client is only used by
// the redis backend.
func NewLimiter(backend string, perMinute int, client *redis.Client, prefix string) (Limiter, error) {
	if perMinute <= 0 || backend == "off" {
		return nil, nil
	}
	switch backend {
	case "memory", "":
		return NewTokenBucket(perMinute, perMinute), nil
	case "redis":
		if client == nil {
			return nil, errors.New("redis rate limiter needs a redis client")
		}
		return NewRedisLimiter(client, prefix, perMinute), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", backend)
	}
}

// RateLimit enforces limiter per client IP. A limiter error lets the request
// through and is logged.
func RateLimit(limiter Limiter, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		ok, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}
