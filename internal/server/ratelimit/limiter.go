// Package ratelimit throttles anonymous endpoints per client key, in process
// or shared through Redis.
package ratelimit

import "context"

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}
