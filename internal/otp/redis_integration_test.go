//go:build integration

package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/redisx/redistest"
)

func TestRedisStoreLifecycle(t *testing.T) {
	rdb := redistest.New(t)
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	s := NewRedisStore(rdb, 10*time.Minute, WithClock(clk.Now), WithGenerator(fixed("123456")))

	key := AdminResetKey("admin1", "ops@x.test")
	_, err := s.Issue(ctx, key)
	require.NoError(t, err)

	ttl, err := rdb.TTL(ctx, s.key(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 10*time.Minute)

	assert.ErrorIs(t, s.Consume(ctx, key, "654321"), apperr.ErrMismatch)
	require.NoError(t, s.Consume(ctx, key, "123456"))
	assert.ErrorIs(t, s.Consume(ctx, key, "123456"), apperr.ErrNotFound)
}

func TestRedisStoreExpiryUsesClock(t *testing.T) {
	rdb := redistest.New(t)
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	s := NewRedisStore(rdb, time.Minute, WithClock(clk.Now), WithGenerator(fixed("123456")))
	key := SignupKey("late@x.test")
	_, err := s.Issue(ctx, key)
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	assert.ErrorIs(t, s.Consume(ctx, key, "123456"), apperr.ErrExpired)
	assert.ErrorIs(t, s.Consume(ctx, key, "123456"), apperr.ErrNotFound)
}
