// Package cache provides the TTL-bound byte cache used to keep season
// game logs and roster snapshots warm between dashboard refreshes.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is the cache capability the fetch layer consumes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
