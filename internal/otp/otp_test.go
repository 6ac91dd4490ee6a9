package otp

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func fixed(codes ...string) Generator {
	i := 0
	return func() (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

func TestGenerateRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestKeysNormalizeEmail(t *testing.T) {
	assert.Equal(t, SignupKey("a@x.test"), SignupKey("  A@X.test "))
	assert.NotEqual(t, SignupKey("a@x.test").String(), UserResetKey("a@x.test").String())
	assert.NotEqual(t,
		AdminResetKey("admin1", "a@x.test").String(),
		AdminResetKey("admin2", "a@x.test").String())
}

func TestMemoryStoreConsumeOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, WithGenerator(fixed("123456")))
	key := SignupKey("a@x.test")

	code, err := s.Issue(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	require.NoError(t, s.Consume(ctx, key, "123456"))
	assert.ErrorIs(t, s.Consume(ctx, key, "123456"), apperr.ErrNotFound)
}

func TestMemoryStoreMismatchKeepsCode(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, WithGenerator(fixed("123456")))
	key := UserResetKey("a@x.test")
	_, err := s.Issue(ctx, key)
	require.NoError(t, err)

	err = s.Consume(ctx, key, "654321")
	assert.ErrorIs(t, err, apperr.ErrMismatch)
	assert.Equal(t, "Invalid OTP", err.Error())

	assert.NoError(t, s.Consume(ctx, key, "123456"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(10*time.Minute, WithClock(clk.Now), WithGenerator(fixed("123456")))
	key := SignupKey("a@x.test")
	_, err := s.Issue(ctx, key)
	require.NoError(t, err)

	clk.Advance(10*time.Minute + time.Second)
	assert.ErrorIs(t, s.Consume(ctx, key, "123456"), apperr.ErrExpired)
	// the expired entry is gone
	assert.ErrorIs(t, s.Consume(ctx, key, "123456"), apperr.ErrNotFound)
}

func TestMemoryStoreReissueOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, WithGenerator(fixed("111111", "222222")))
	key := SignupKey("a@x.test")
	_, _ = s.Issue(ctx, key)
	_, _ = s.Issue(ctx, key)

	assert.ErrorIs(t, s.Consume(ctx, key, "111111"), apperr.ErrMismatch)
	assert.NoError(t, s.Consume(ctx, key, "222222"))
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, WithGenerator(fixed("111111", "222222")))
	_, _ = s.Issue(ctx, AdminResetKey("admin1", "a@x.test"))
	_, _ = s.Issue(ctx, AdminResetKey("admin2", "a@x.test"))

	assert.ErrorIs(t, s.Consume(ctx, AdminResetKey("admin2", "a@x.test"), "111111"), apperr.ErrMismatch)
	assert.NoError(t, s.Consume(ctx, AdminResetKey("admin1", "a@x.test"), "111111"))
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(time.Minute, WithClock(clk.Now))
	_, _ = s.Issue(ctx, SignupKey("a@x.test"))
	clk.Advance(30 * time.Second)
	_, _ = s.Issue(ctx, SignupKey("b@x.test"))
	clk.Advance(45 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 0, s.Sweep())
}

func TestMemoryStoreGeneratorError(t *testing.T) {
	boom := errors.New("entropy exhausted")
	s := NewMemoryStore(time.Minute, WithGenerator(func() (string, error) { return "", boom }))
	_, err := s.Issue(context.Background(), SignupKey("a@x.test"))
	assert.ErrorIs(t, err, boom)
}
