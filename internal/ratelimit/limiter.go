package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Result reports the outcome of a rate-limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is a fixed-window request counter keyed by an arbitrary string
// (typically "scope:clientIP"). Counts live in Redis so multiple instances
// share one window; when Redis is unreachable the limiter falls back to an
// in-process map rather than failing requests open or closed inconsistently.
type Limiter struct {
	client *redis.Client
	logger *zap.Logger

	mu      sync.Mutex
	local   map[string]*localWindow
	swept   time.Time
	nowFunc func() time.Time
}

type localWindow struct {
	count   int
	resetAt time.Time
}

// NewLimiter constructs a limiter. client may be nil for memory-only mode.
func NewLimiter(client *redis.Client, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		client:  client,
		logger:  logger,
		local:   make(map[string]*localWindow),
		nowFunc: time.Now,
	}
}

// Allow consumes one request from the window for key. limit is the number of
// requests permitted per window.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) Result {
	if limit <= 0 {
		return Result{Allowed: true}
	}
	if l.client != nil {
		res, err := l.allowRedis(ctx, key, limit, window)
		if err == nil {
			return res
		}
		l.logger.Warn("rate limiter falling back to memory", zap.Error(err))
	}
	return l.allowLocal(key, limit, window)
}

func (l *Limiter) allowRedis(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	redisKey := "ratelimit:" + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return Result{}, err
		}
	}
	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	resetAt := l.nowFunc().Add(ttl)
	if count > int64(limit) {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Result{Allowed: true, Remaining: limit - int(count), ResetAt: resetAt}, nil
}

func (l *Limiter) allowLocal(key string, limit int, window time.Duration) Result {
	now := l.nowFunc()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now)

	entry, ok := l.local[key]
	if !ok || !entry.resetAt.After(now) {
		entry = &localWindow{resetAt: now.Add(window)}
		l.local[key] = entry
	}
	entry.count++
	if entry.count > limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: entry.resetAt}
	}
	return Result{Allowed: true, Remaining: limit - entry.count, ResetAt: entry.resetAt}
}

// sweepLocked drops expired windows at most once a minute.
func (l *Limiter) sweepLocked(now time.Time) {
	if now.Sub(l.swept) < time.Minute {
		return
	}
	for key, entry := range l.local {
		if !entry.resetAt.After(now) {
			delete(l.local, key)
		}
	}
	l.swept = now
}

// RetryAfterSeconds converts the window reset into a Retry-After value,
// never below one second.
func (r Result) RetryAfterSeconds(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Seconds() + 0.999)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Key builds the conventional "scope:identifier" limiter key.
func Key(scope, identifier string) string {
	return fmt.Sprintf("%s:%s", scope, identifier)
}
