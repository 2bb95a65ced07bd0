// Package cache defines the expiring key-value contract used by the
// discovery services. The cache is an optimization, never a dependency for
// correctness: callers treat every fault as a miss and recompute.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss signals an absent or expired entry. Callers cannot
// distinguish the two, and do not need to.
var ErrCacheMiss = errors.New("cache: miss")

// Cache is an expiring key-value store with atomic replace semantics.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Noop is a disabled cache: every read misses, every write is dropped.
// Used when no cache backend is configured.
type Noop struct{}

// Get always reports a miss.
func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }

// SetWithTTL drops the value.
func (Noop) SetWithTTL(context.Context, string, []byte, time.Duration) error { return nil }
