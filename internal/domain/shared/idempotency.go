package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed request keys to prevent duplicate processing
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL
	// Returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// ResultStore extends idempotency marking with result caching so a duplicate
// submission can be answered with the original outcome instead of being
// re-evaluated. Marking happens only after the outcome is durable; a crash
// before Put leaves the key unmarked and a retry is evaluated normally.
type ResultStore interface {
	IdempotencyStore

	// Put stores the serialized result for a processed key with a TTL
	Put(ctx context.Context, key string, result []byte, ttl time.Duration) error

	// Get returns the cached result for a key, or ok=false when the key is
	// unknown or its window has elapsed
	Get(ctx context.Context, key string) (result []byte, ok bool, err error)
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// Window is the time-to-live for processed keys; a resubmission inside the
	// window is treated as a retry of the original request
	Window time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		Window:  60 * time.Second,
		Enabled: true,
	}
}
