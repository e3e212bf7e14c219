//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=../../../mocks/mock_cache.go -package=mocks
package port

import (
	"context"
	"errors"
	"time"
)

// Cache is a string key-value cache. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns ErrMiss when key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value with ttl; ttl <= 0 keeps the key until evicted.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	Ping(ctx context.Context) error
	Close() error
}

// ErrMiss distinguishes a cache miss from a transport error.
var ErrMiss = errors.New("cache: miss")
