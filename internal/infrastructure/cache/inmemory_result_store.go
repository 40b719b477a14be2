package cache

import (
	"context"
	"sync"
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
)

// resultEntry is a cached submission outcome with expiration
type resultEntry struct {
	result    []byte
	expiresAt time.Time
}

// InMemoryResultStore implements shared.ResultStore with an in-memory map.
// Suitable for single-instance deployments and tests. A background goroutine
// evicts expired entries.
type InMemoryResultStore struct {
	mu        sync.RWMutex
	entries   map[string]resultEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryResultStore creates a new in-memory result store
func NewInMemoryResultStore() *InMemoryResultStore {
	store := &InMemoryResultStore{
		entries:  make(map[string]resultEntry),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// MarkProcessed marks a key as processed with a TTL
// Returns true if the key was newly marked, false if it was already processed
func (s *InMemoryResultStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[key]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}

	s.entries[key] = resultEntry{
		expiresAt: time.Now().Add(ttl),
	}
	return true, nil
}

// IsProcessed checks if a key has already been processed
func (s *InMemoryResultStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Put stores the serialized result for a processed key
func (s *InMemoryResultStore) Put(_ context.Context, key string, result []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = resultEntry{
		result:    result,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get returns the cached result for a key within its window
func (s *InMemoryResultStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists || time.Now().After(e.expiresAt) || e.result == nil {
		return nil, false, nil
	}
	return e.result, true, nil
}

// Close stops the cleanup goroutine; safe to call multiple times
func (s *InMemoryResultStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryResultStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryResultStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Ensure InMemoryResultStore implements ResultStore
var _ shared.ResultStore = (*InMemoryResultStore)(nil)
