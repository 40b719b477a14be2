package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryAuctionLocker implements AuctionLocker in-process. It mirrors the
// Redis locker's lease semantics (expiry, token fencing) and is suitable for
// tests and single-instance development.
type MemoryAuctionLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]memoryLease
}

type memoryLease struct {
	token     string
	expiresAt time.Time
}

// NewMemoryAuctionLocker creates an in-memory locker
func NewMemoryAuctionLocker() *MemoryAuctionLocker {
	return &MemoryAuctionLocker{
		locks: make(map[uuid.UUID]memoryLease),
	}
}

// TryAcquire attempts to take the lock once
func (l *MemoryAuctionLocker) TryAcquire(ctx context.Context, auctionID uuid.UUID, ttl time.Duration) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if lease, held := l.locks[auctionID]; held && time.Now().Before(lease.expiresAt) {
		return nil, ErrNotAcquired
	}

	token := uuid.NewString()
	l.locks[auctionID] = memoryLease{
		token:     token,
		expiresAt: time.Now().Add(ttl),
	}

	return &memoryHandle{
		locker:    l,
		auctionID: auctionID,
		token:     token,
	}, nil
}

// Acquire polls TryAcquire until success, timeout or cancellation
func (l *MemoryAuctionLocker) Acquire(ctx context.Context, auctionID uuid.UUID, ttl, wait, retryInterval time.Duration) (Handle, error) {
	return acquireLoop(ctx, auctionID, ttl, wait, retryInterval, l.TryAcquire)
}

// owns reports whether the token still holds a live lease
func (l *MemoryAuctionLocker) owns(auctionID uuid.UUID, token string) bool {
	lease, held := l.locks[auctionID]
	return held && lease.token == token && time.Now().Before(lease.expiresAt)
}

type memoryHandle struct {
	locker    *MemoryAuctionLocker
	auctionID uuid.UUID
	token     string
}

// AuctionID returns the auction this handle guards
func (h *memoryHandle) AuctionID() uuid.UUID {
	return h.auctionID
}

// Extend pushes the lease expiry out while the token still matches
func (h *memoryHandle) Extend(_ context.Context, ttl time.Duration) error {
	h.locker.mu.Lock()
	defer h.locker.mu.Unlock()

	if !h.locker.owns(h.auctionID, h.token) {
		return ErrLockLost
	}
	h.locker.locks[h.auctionID] = memoryLease{
		token:     h.token,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Release frees the lock while the token still matches
func (h *memoryHandle) Release(_ context.Context) error {
	h.locker.mu.Lock()
	defer h.locker.mu.Unlock()

	if !h.locker.owns(h.auctionID, h.token) {
		return ErrLockLost
	}
	delete(h.locker.locks, h.auctionID)
	return nil
}

// Ensure MemoryAuctionLocker implements AuctionLocker
var _ AuctionLocker = (*MemoryAuctionLocker)(nil)
