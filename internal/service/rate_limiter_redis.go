package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

const redisRefundScript = `
local current = redis.call("DECR", KEYS[1])
if current <= 0 then
  redis.call("DEL", KEYS[1])
end
return current
`

type redisRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisRateLimiter comparte el conteo entre instancias usando una ventana fija.
func NewRedisRateLimiter(client *redis.Client, limit RateLimit) RateLimiter {
	if client == nil {
		return nil
	}
	window := limit.Window
	if window <= 0 {
		window = time.Minute
	}
	max := limit.Max
	if max <= 0 {
		max = 1
	}
	return &redisRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "rl:" + limit.Name + ":",
	}
}

// NewRateLimiter usa Redis cuando hay cliente y memoria en caso contrario.
func NewRateLimiter(client *redis.Client, limit RateLimit) RateLimiter {
	if client != nil {
		return NewRedisRateLimiter(client, limit)
	}
	return NewMemoryRateLimiter(limit.Window, limit.Max)
}

func (l *redisRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	redisKey := l.prefix + normalizedKey
	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}

func (l *redisRateLimiter) Refund(key string) {
	if l == nil || l.client == nil {
		return
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = l.client.Eval(ctx, redisRefundScript, []string{l.prefix + normalizedKey}).Err()
}
