package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedisLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLimiter(client, zap.NewNop()), s
}

func TestLimiterRedis(t *testing.T) {
	ctx := context.Background()

	t.Run("AllowsUpToLimit", func(t *testing.T) {
		limiter, _ := setupRedisLimiter(t)
		key := Key("tarot-ai", "10.0.0.1")

		for i := 0; i < 3; i++ {
			res := limiter.Allow(ctx, key, 3, time.Minute)
			assert.True(t, res.Allowed, "request %d should pass", i+1)
			assert.Equal(t, 2-i, res.Remaining)
		}

		res := limiter.Allow(ctx, key, 3, time.Minute)
		assert.False(t, res.Allowed)
		assert.Zero(t, res.Remaining)
		assert.GreaterOrEqual(t, res.RetryAfterSeconds(time.Now()), 1)
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		limiter, _ := setupRedisLimiter(t)
		for i := 0; i < 2; i++ {
			limiter.Allow(ctx, Key("tarot-ai", "10.0.0.1"), 2, time.Minute)
		}
		assert.False(t, limiter.Allow(ctx, Key("tarot-ai", "10.0.0.1"), 2, time.Minute).Allowed)
		assert.True(t, limiter.Allow(ctx, Key("tarot-ai", "10.0.0.2"), 2, time.Minute).Allowed)
		assert.True(t, limiter.Allow(ctx, Key("booking", "10.0.0.1"), 2, time.Minute).Allowed)
	})

	t.Run("WindowExpiryResets", func(t *testing.T) {
		limiter, s := setupRedisLimiter(t)
		key := Key("booking", "10.0.0.9")

		assert.True(t, limiter.Allow(ctx, key, 1, time.Minute).Allowed)
		assert.False(t, limiter.Allow(ctx, key, 1, time.Minute).Allowed)

		s.FastForward(61 * time.Second)

		assert.True(t, limiter.Allow(ctx, key, 1, time.Minute).Allowed)
	})

	t.Run("ZeroLimitDisables", func(t *testing.T) {
		limiter, _ := setupRedisLimiter(t)
		for i := 0; i < 100; i++ {
			assert.True(t, limiter.Allow(ctx, "any", 0, time.Minute).Allowed)
		}
	})
}

func TestLimiterLocalFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("MemoryOnlyMode", func(t *testing.T) {
		limiter := NewLimiter(nil, zap.NewNop())
		key := Key("tarot-ai", "10.0.0.1")

		assert.True(t, limiter.Allow(ctx, key, 2, time.Minute).Allowed)
		assert.True(t, limiter.Allow(ctx, key, 2, time.Minute).Allowed)
		assert.False(t, limiter.Allow(ctx, key, 2, time.Minute).Allowed)
	})

	t.Run("WindowResets", func(t *testing.T) {
		limiter := NewLimiter(nil, zap.NewNop())
		now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		limiter.nowFunc = func() time.Time { return now }
		key := Key("booking", "10.0.0.1")

		assert.True(t, limiter.Allow(ctx, key, 1, time.Minute).Allowed)
		assert.False(t, limiter.Allow(ctx, key, 1, time.Minute).Allowed)

		now = now.Add(61 * time.Second)
		assert.True(t, limiter.Allow(ctx, key, 1, time.Minute).Allowed)
	})

	t.Run("FallsBackWhenRedisDown", func(t *testing.T) {
		s, err := miniredis.Run()
		require.NoError(t, err)
		client := redis.NewClient(&redis.Options{Addr: s.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		limiter := NewLimiter(client, zap.NewNop())
		s.Close()

		key := Key("tarot-ai", "10.0.0.1")
		assert.True(t, limiter.Allow(ctx, key, 1, time.Minute).Allowed)
		assert.False(t, limiter.Allow(ctx, key, 1, time.Minute).Allowed)
	})
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("RoundsUp", func(t *testing.T) {
		res := Result{ResetAt: now.Add(30500 * time.Millisecond)}
		assert.Equal(t, 31, res.RetryAfterSeconds(now))
	})

	t.Run("NeverBelowOne", func(t *testing.T) {
		res := Result{ResetAt: now.Add(-time.Second)}
		assert.Equal(t, 1, res.RetryAfterSeconds(now))
	})
}

func TestKey(t *testing.T) {
	assert.Equal(t, "tarot-ai:192.168.1.5", Key("tarot-ai", "192.168.1.5"))
}
