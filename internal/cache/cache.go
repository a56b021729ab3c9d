// Package cache provides the optional response cache. It is an accelerator,
// not a source of truth: when Redis is disabled or unreachable the no-op
// implementation takes its place and response content never changes, only
// latency.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports that a key is not cached.
var ErrMiss = errors.New("cache: miss")

// Cache is an injected key-value capability with expiring entries.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Noop is the degraded cache: every read misses, every write is dropped.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, error) { return "", ErrMiss }

func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }
