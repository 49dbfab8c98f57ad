package helpers

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// PingRedis is the readiness probe used with Retry at startup.
func PingRedis(ctx context.Context, rdb *redis.Client) error {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return oops.Code("REDIS_UNAVAILABLE").With("addr", rdb.Options().Addr).Wrap(err)
	}
	return nil
}
