package middleware

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedisLimiter is a fixed-window counter shared by every replica through
// Redis. Each key gets one counter per window, incremented with INCRBY and
// expired one second after the window closes.
//
// Redis failures allow the request (fail-open): losing the limiter must
// never take heartbeats down with it.
type RedisLimiter struct {
	rdb    redis.Cmdable
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter allows up to limit requests per key per window. A window
// below one second is raised to one second.
func NewRedisLimiter(rdb redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	if window < time.Second {
		window = time.Second
	}
	if limit <= 0 {
		limit = 1
	}
	return &RedisLimiter{rdb: rdb, limit: int64(limit), window: window, now: time.Now}
}

func (l *RedisLimiter) bucketKey(key string) string {
	return fmt.Sprintf("ratelimit:%s:%d", key, l.now().UnixNano()/int64(l.window))
}

// Backend implements Limiter.
func (l *RedisLimiter) Backend() string { return "redis" }

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	bk := l.bucketKey(key)

	pipe := l.rdb.Pipeline()
	incr := pipe.IncrBy(ctx, bk, 1)
	pipe.Expire(ctx, bk, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		lg := zerolog.Ctx(ctx)
		if lg.GetLevel() == zerolog.Disabled {
			lg = &log.Logger
		}
		lg.Warn().Err(err).Str("key", key).Msg("rate limit check failed, allowing request")
		return true
	}
	return incr.Val() <= l.limit
}
