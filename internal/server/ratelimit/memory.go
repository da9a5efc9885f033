package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 5 * time.Minute
	visitorTTL      = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per key. Buckets idle for longer than
// visitorTTL are dropped by a background sweep that stops on Close or when
// the context passed to NewMemoryLimiter is done.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	now      func() time.Time

	stop chan struct{}
	once sync.Once
}

func NewMemoryLimiter(ctx context.Context, rps float64, burst int) *MemoryLimiter {
	l := &MemoryLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanup(ctx, cleanupInterval)
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1), nil
}

func (l *MemoryLimiter) Close() error {
	l.once.Do(func() { close(l.stop) })
	return nil
}

func (l *MemoryLimiter) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *MemoryLimiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
