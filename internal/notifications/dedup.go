package notifications

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/redisx"
)

// RedisDedup keeps one key per handled event for redisx.TTLDedup.
type RedisDedup struct {
	RDB     *redis.Client
	Service string
}

func (d *RedisDedup) Claim(ctx context.Context, eventID string) (bool, error) {
	return redisx.MarkOnce(ctx, d.RDB, redisx.DedupKey(d.Service, eventID), redisx.TTLDedup)
}

func (d *RedisDedup) Forget(ctx context.Context, eventID string) error {
	return d.RDB.Del(ctx, redisx.DedupKey(d.Service, eventID)).Err()
}
