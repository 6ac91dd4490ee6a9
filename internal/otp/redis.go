package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/redisx"
)

type redisEntry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RedisStore shares codes between API replicas. Expiry is decided by the
// injected clock; the redis TTL (twice the code lifetime) only reclaims memory.
type RedisStore struct {
	rdb  *redis.Client
	ttl  time.Duration
	opts options
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, opts ...Option) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, opts: buildOptions(opts)}
}

func (s *RedisStore) key(k Key) string { return redisx.OTPKey(string(k.Purpose), k.identity()) }

func (s *RedisStore) Issue(ctx context.Context, key Key) (string, error) {
	code, err := s.opts.generate()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(redisEntry{Code: code, ExpiresAt: s.opts.now().Add(s.ttl)})
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, s.key(key), b, 2*s.ttl).Err(); err != nil {
		return "", apperr.Persistence("store otp", err)
	}
	return code, nil
}

func (s *RedisStore) Consume(ctx context.Context, key Key, code string) error {
	rk := s.key(key)
	raw, err := s.rdb.Get(ctx, rk).Bytes()
	if errors.Is(err, redis.Nil) {
		return errNotFound()
	}
	if err != nil {
		return apperr.Persistence("load otp", err)
	}
	var e redisEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return apperr.Persistence("decode otp", fmt.Errorf("%s: %w", rk, err))
	}

	if s.opts.now().After(e.ExpiresAt) {
		if err := s.rdb.Del(ctx, rk).Err(); err != nil {
			return apperr.Persistence("delete otp", err)
		}
		return errExpired()
	}
	if !sameCode(e.Code, code) {
		return errMismatch()
	}
	n, err := s.rdb.Del(ctx, rk).Result()
	if err != nil {
		return apperr.Persistence("delete otp", err)
	}
	if n == 0 {
		// consumed concurrently by another request
		return errNotFound()
	}
	return nil
}
