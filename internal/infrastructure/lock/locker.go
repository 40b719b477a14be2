// Package lock provides per-auction mutual exclusion across service
// instances. The lock is a lease: it carries an expiry so a crashed holder
// cannot wedge an auction forever, and a fencing token so only the holder can
// release or extend it.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotAcquired means the lock is currently held by another process
	ErrNotAcquired = errors.New("auction lock held by another process")
	// ErrLockTimeout means the wait time elapsed before the lock became
	// available; the caller may retry with backoff
	ErrLockTimeout = errors.New("timed out waiting for auction lock")
	// ErrLockLost means the handle no longer owns the lock (the lease
	// expired, or another process took over). Seeing this mid-evaluation is
	// a bug signal: the work took longer than the TTL.
	ErrLockLost = errors.New("auction lock no longer held")
)

// Handle represents possession of an auction lock. Only the holder of a live
// handle may mutate that auction's bidding state.
type Handle interface {
	// AuctionID returns the auction this handle guards
	AuctionID() uuid.UUID
	// Extend pushes the lease expiry out, e.g. before a long auto-bid
	// cascade. Returns ErrLockLost if the lease has already lapsed.
	Extend(ctx context.Context, ttl time.Duration) error
	// Release gives the lock up. Releasing a lapsed lease returns
	// ErrLockLost so the caller can surface the overrun.
	Release(ctx context.Context) error
}

// AuctionLocker acquires per-auction leases
type AuctionLocker interface {
	// TryAcquire attempts to take the lock once; ErrNotAcquired when held
	// elsewhere
	TryAcquire(ctx context.Context, auctionID uuid.UUID, ttl time.Duration) (Handle, error)
	// Acquire polls at retryInterval until the lock is taken, the wait
	// budget is spent (ErrLockTimeout) or ctx is cancelled
	Acquire(ctx context.Context, auctionID uuid.UUID, ttl, wait, retryInterval time.Duration) (Handle, error)
}

// acquireLoop implements the shared poll-wait behaviour on top of a
// TryAcquire function.
func acquireLoop(
	ctx context.Context,
	auctionID uuid.UUID,
	ttl, wait, retryInterval time.Duration,
	try func(context.Context, uuid.UUID, time.Duration) (Handle, error),
) (Handle, error) {
	deadline := time.Now().Add(wait)

	for {
		handle, err := try(ctx, auctionID, ttl)
		if err == nil {
			return handle, nil
		}
		if !errors.Is(err, ErrNotAcquired) {
			return nil, err
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, ErrLockTimeout
		}

		timer := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
