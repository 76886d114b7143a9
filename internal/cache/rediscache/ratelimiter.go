package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	c *redis.Client
}

func NewRateLimiter(addr string) *RateLimiter {
	return NewRateLimiterWithClient(redis.NewClient(&redis.Options{Addr: addr}))
}

func NewRateLimiterWithClient(c *redis.Client) *RateLimiter {
	return &RateLimiter{c: c}
}

// Allow делает INCR по ключу. TTL ставится только на первый запрос окна,
// поэтому повторы не продлевают окно. Возвращает (allowed, currentCount).
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	n, err := incrWindow(ctx, rl.c, key, window)
	if err != nil {
		return false, 0, errors.Wrap(err, "redis ratelimit")
	}
	return n <= limit, n, nil
}

// incrWindow увеличивает счётчик фиксированного окна. Ключ без TTL
// (первый INCR или сбой между командами) получает window.
func incrWindow(ctx context.Context, c *redis.Client, key string, window time.Duration) (int64, error) {
	pipe := c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	if ttl.Val() < 0 {
		if err := c.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return incr.Val(), nil
}

// LoginThrottle считает неудачные входы по ключу (email) и после maxAttempts
// выставляет блокировку на lockout.
type LoginThrottle struct {
	c           *redis.Client
	maxAttempts int64
	window      time.Duration
	lockout     time.Duration
}

func NewLoginThrottle(c *redis.Client, maxAttempts int64, window, lockout time.Duration) *LoginThrottle {
	return &LoginThrottle{c: c, maxAttempts: maxAttempts, window: window, lockout: lockout}
}

func failKey(key string) string { return "login:fail:" + key }
func lockKey(key string) string { return "login:lock:" + key }

// Locked возвращает оставшееся время блокировки (0, если блокировки нет).
func (l *LoginThrottle) Locked(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := l.c.PTTL(ctx, lockKey(key)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis pttl")
	}
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

// Fail фиксирует неудачную попытку. true, если ключ только что заблокирован.
func (l *LoginThrottle) Fail(ctx context.Context, key string) (bool, error) {
	n, err := incrWindow(ctx, l.c, failKey(key), l.window)
	if err != nil {
		return false, errors.Wrap(err, "redis login fail")
	}
	if n < l.maxAttempts {
		return false, nil
	}

	pipe := l.c.TxPipeline()
	pipe.Set(ctx, lockKey(key), 1, l.lockout)
	pipe.Del(ctx, failKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, errors.Wrap(err, "redis login lock")
	}
	return true, nil
}

func (l *LoginThrottle) Reset(ctx context.Context, key string) error {
	if err := l.c.Del(ctx, failKey(key), lockKey(key)).Err(); err != nil {
		return errors.Wrap(err, "redis login reset")
	}
	return nil
}
