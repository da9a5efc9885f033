package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "storekeeper:ratelimit:"

// RedisLimiter is a fixed-window counter shared by every server instance:
// at most limit requests per key in each window.
type RedisLimiter struct {
	client    redis.Cmdable
	keyPrefix string
	limit     int
	window    time.Duration
	now       func() time.Time
}

// NewRedisLimiter derives the window from the token-bucket settings so both
// limiters admit the same sustained rate: burst requests every burst/rps.
func NewRedisLimiter(client redis.Cmdable, rps float64, burst int) *RedisLimiter {
	if burst < 1 {
		burst = 1
	}
	window := time.Second
	if rps > 0 {
		window = max(time.Duration(float64(burst)/rps*float64(time.Second)), time.Millisecond)
	}
	return &RedisLimiter{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
		limit:     burst,
		window:    window,
		now:       time.Now,
	}
}

// windowKey names the counter for the current window. The suffix is the
// window index since the epoch, so sub-second windows get distinct keys.
func (l *RedisLimiter) windowKey(key string) string {
	return fmt.Sprintf("%s%s:%d", l.keyPrefix, key, l.now().UnixNano()/int64(l.window))
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.windowKey(key)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit: %w", err)
	}

	return incr.Val() <= int64(l.limit), nil
}

// Close is a no-op; the redis client is owned by the caller.
func (l *RedisLimiter) Close() error {
	return nil
}
