// Package ratelimit implements a fixed-window request quota over Redis,
// applied to the public authentication endpoints.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"voxadmin/internal/cache"
)

// Limiter counts requests per (scope, client) within a fixed window. When
// Redis is unreachable it fails open: blocking logins on a cache outage
// would be a worse failure mode than briefly losing throttling.
type Limiter struct {
	cache  *cache.Client
	limit  int64
	window time.Duration
}

// New creates a limiter allowing limit requests per window.
func New(cache *cache.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{cache: cache, limit: int64(limit), window: window}
}

// Allow reports whether one more request from the client is within quota.
func (l *Limiter) Allow(ctx context.Context, scope, clientID string) bool {
	key := fmt.Sprintf("ratelimit:%s:%s", scope, clientID)
	count, ok := l.cache.IncrWithTTL(ctx, key, l.window)
	if !ok {
		return true
	}
	return count <= l.limit
}
