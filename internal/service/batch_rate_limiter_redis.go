package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// BatchRateLimiter limita cuántos lotes puede pedir un usuario por ventana.
type BatchRateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

const redisBatchAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisBatchRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisBatchRateLimiter devuelve nil sin cliente: el handler lo trata como "sin límite".
func NewRedisBatchRateLimiter(client *redis.Client, window time.Duration, max int) BatchRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisBatchRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "mating:batch:rl:",
	}
}

// Allow es fail-open: si Redis falla, el lote se permite.
func (l *redisBatchRateLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	redisKey := l.prefix + normalizedKey
	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisBatchAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
