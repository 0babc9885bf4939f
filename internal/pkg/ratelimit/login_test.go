package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLoginLimiter(client, 3, 15*time.Minute), mr
}

func TestLoginLimiter_BlocksAfterMax(t *testing.T) {
	limiter, _ := newLimiter(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		allowed, remaining, err := limiter.CheckLoginAttempt(ctx, "10.0.0.1", "a@b.io")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 3-i, remaining)
	}

	allowed, remaining, err := limiter.CheckLoginAttempt(ctx, "10.0.0.1", "a@b.io")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	allowed, _, err = limiter.CheckLoginAttempt(ctx, "10.0.0.2", "a@b.io")
	require.NoError(t, err)
	assert.True(t, allowed, "other ip has its own window")
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	limiter, mr := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _, err := limiter.CheckLoginAttempt(ctx, "ip", "e")
		require.NoError(t, err)
	}
	assert.Equal(t, 15*time.Minute, mr.TTL(loginKey("ip", "e")))

	mr.FastForward(16 * time.Minute)
	allowed, _, err := limiter.CheckLoginAttempt(ctx, "ip", "e")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLoginLimiter_Reset(t *testing.T) {
	limiter, mr := newLimiter(t)
	ctx := context.Background()

	_, _, err := limiter.CheckLoginAttempt(ctx, "ip", "e")
	require.NoError(t, err)
	require.NoError(t, limiter.ResetLoginAttempts(ctx, "ip", "e"))
	assert.False(t, mr.Exists(loginKey("ip", "e")))
}
