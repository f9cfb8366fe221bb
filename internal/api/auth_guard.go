package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

var (
	errLoginRateLimited = errors.New("rate limit exceeded")
	errAccountLocked    = errors.New("account temporarily locked")
)

// loginGuard 在 Redis 中维护登录节流：每 IP+邮箱 每小时计数，连续失败达到阈值后锁定邮箱。
type loginGuard struct {
	redis     redis.UniversalClient
	perHour   int
	threshold int
	lockTTL   time.Duration
	now       func() time.Time
}

func newLoginGuard(rdb redis.UniversalClient, opts AuthOptions) *loginGuard {
	return &loginGuard{
		redis:     rdb,
		perHour:   opts.LoginRateLimitPerHour,
		threshold: opts.LoginLockThreshold,
		lockTTL:   opts.LoginLockTTL,
		now:       time.Now,
	}
}

func (g *loginGuard) failKey(email string) string { return "lock:login:fail:" + email }
func (g *loginGuard) lockKey(email string) string { return "lock:login:" + email }

// admit 记一次尝试；Redis 不可用时放行。
func (g *loginGuard) admit(ctx context.Context, ip, email string) error {
	rateKey := fmt.Sprintf("rate:login:%s:%s:%s", ip, email, g.now().UTC().Format("2006010215"))
	if count, err := incrWithTTL(ctx, g.redis, rateKey, time.Hour); err == nil && count > int64(g.perHour) {
		return errLoginRateLimited
	}
	if ttl, _ := g.redis.TTL(ctx, g.lockKey(email)).Result(); ttl > 0 {
		return errAccountLocked
	}
	return nil
}

func (g *loginGuard) failed(ctx context.Context, email string) error {
	count, err := incrWithTTL(ctx, g.redis, g.failKey(email), g.lockTTL)
	if err != nil {
		return err
	}
	if count >= int64(g.threshold) {
		return g.redis.Set(ctx, g.lockKey(email), "1", g.lockTTL).Err()
	}
	return nil
}

func (g *loginGuard) succeeded(ctx context.Context, email string) {
	_ = g.redis.Del(ctx, g.failKey(email)).Err()
}

// refreshRevocations 记录已吊销的刷新令牌 jti，保留到令牌自然过期。
type refreshRevocations struct {
	redis      redis.UniversalClient
	defaultTTL time.Duration
}

const refreshRevokedPrefix = "auth:refresh:blacklist:"

func (r refreshRevocations) revoked(ctx context.Context, jti string) (bool, error) {
	err := r.redis.Get(ctx, refreshRevokedPrefix+jti).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("lookup revoked refresh token: %w", err)
	}
}

func (r refreshRevocations) revoke(ctx context.Context, jti string, expiresAt *jwt.NumericDate) error {
	ttl := r.defaultTTL
	if expiresAt != nil {
		ttl = time.Until(expiresAt.Time)
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.redis.Set(ctx, refreshRevokedPrefix+jti, "revoked", ttl).Err()
}
