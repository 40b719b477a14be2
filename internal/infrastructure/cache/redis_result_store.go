package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/auctionhouse/backend/internal/domain/shared"
)

// RedisResultStore implements shared.ResultStore using Redis. It backs the
// idempotency guard in distributed deployments where multiple instances must
// share which submissions have already been evaluated, and with what outcome.
type RedisResultStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisResultStore creates a store using an existing Redis client
func NewRedisResultStore(client *redis.Client, keyPrefix string) *RedisResultStore {
	if keyPrefix == "" {
		keyPrefix = "bid:idempotency:"
	}
	return &RedisResultStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks a key as processed with a TTL using SETNX
// Returns true if the key was newly marked, false if it was already processed
func (s *RedisResultStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark submission as processed: %w", err)
	}
	return result, nil
}

// IsProcessed checks if a key has already been processed
func (s *RedisResultStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check submission: %w", err)
	}
	return exists > 0, nil
}

// Put stores the serialized result for a processed key. SET overwrites the
// marker value so Get can return the original outcome to retries.
func (s *RedisResultStore) Put(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, result, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache submission result: %w", err)
	}
	return nil
}

// Get returns the cached result for a key within its window
func (s *RedisResultStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached submission result: %w", err)
	}
	return val, true, nil
}

// Close closes the Redis client
func (s *RedisResultStore) Close() error {
	return s.client.Close()
}

// Ensure RedisResultStore implements ResultStore
var _ shared.ResultStore = (*RedisResultStore)(nil)
