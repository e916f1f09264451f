// Package cache provides short-lived counters and values shared by the
// rate limiter and the admin login lockout.
package cache

import (
	"context"
	"time"
)

// Store is the counter and value API the rate limiter and login lockout need.
type Store interface {
	// IncrementWithTTL returns the count after this hit and the time left in
	// the fixed window opened by the first hit.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Sweeper purges expired entries; the maintenance job calls it on a schedule.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

var (
	_ Store   = (*DatabaseStore)(nil)
	_ Sweeper = (*DatabaseStore)(nil)
)
