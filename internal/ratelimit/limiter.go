// Package ratelimit paces outbound sends against the provider quota.
//
// Counters live in Redis so every instance of the service shares one
// budget. The check-and-increment runs as a Lua script; a GET then INCR
// sequence would race under concurrent senders.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/everfaz/ses-compliance/internal/pkg/logger"
)

const allowScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", key) or "0")
if current + 1 > limit then
    return 0
end

local newVal = redis.call("INCR", key)
if newVal == 1 then
    redis.call("EXPIRE", key, ttl)
end
return 1
`

// Limiter enforces a per-second outbound send budget shared through Redis.
type Limiter struct {
	redis          *redis.Client
	script         *redis.Script
	sendsPerSecond int
	now            func() time.Time
	sleep          func(ctx context.Context, d time.Duration) error
}

func NewLimiter(client *redis.Client, sendsPerSecond int) *Limiter {
	return &Limiter{
		redis:          client,
		script:         redis.NewScript(allowScript),
		sendsPerSecond: sendsPerSecond,
		now:            time.Now,
		sleep:          sleepCtx,
	}
}

// NewLimiterFromAddr connects to Redis and verifies the connection.
func NewLimiterFromAddr(addr string, sendsPerSecond int) (*Limiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("rate limiter connected", "addr", addr, "sends_per_second", sendsPerSecond)
	return NewLimiter(client, sendsPerSecond), nil
}

// Allow reports whether one send fits in the current one-second bucket and
// claims the slot when it does.
func (l *Limiter) Allow(ctx context.Context) (bool, error) {
	key := fmt.Sprintf("ratelimit:ses:sec:%d", l.now().Unix())

	result, err := l.script.Run(ctx, l.redis, []string{key}, l.sendsPerSecond, 2).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	return result == 1, nil
}

// Wait blocks until a send slot is available or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		allowed, err := l.Allow(ctx)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		// The bucket rolls over at the next whole second.
		pause := time.Second - time.Duration(l.now().Nanosecond())
		if err := l.sleep(ctx, pause); err != nil {
			return err
		}
	}
}

// Close releases the Redis connection.
func (l *Limiter) Close() error {
	return l.redis.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Unlimited is a no-op pacer for deployments without Redis.
type Unlimited struct{}

func (Unlimited) Wait(context.Context) error { return nil }
