package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisRateCounter 是固定窗口计数所需的 Redis 命令子集。
type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// incrWithTTL 自增计数并保证键一定带过期时间：
// 首次写入设置 ttl；若之前的 Expire 失败导致键永不过期（TTL 为 -1），这里补上。
func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
		return count, nil
	}
	if left, err := client.TTL(ctx, key).Result(); err == nil && left == -1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}
