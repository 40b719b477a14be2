package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAuctionLocker_TryAcquire(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryAuctionLocker()
	auctionID := uuid.New()

	t.Run("second acquire fails while held", func(t *testing.T) {
		handle, err := locker.TryAcquire(ctx, auctionID, time.Minute)
		require.NoError(t, err)

		_, err = locker.TryAcquire(ctx, auctionID, time.Minute)
		assert.ErrorIs(t, err, ErrNotAcquired)

		require.NoError(t, handle.Release(ctx))

		_, err = locker.TryAcquire(ctx, auctionID, time.Minute)
		assert.NoError(t, err)
	})

	t.Run("different auctions do not contend", func(t *testing.T) {
		a, err := locker.TryAcquire(ctx, uuid.New(), time.Minute)
		require.NoError(t, err)
		b, err := locker.TryAcquire(ctx, uuid.New(), time.Minute)
		require.NoError(t, err)

		require.NoError(t, a.Release(ctx))
		require.NoError(t, b.Release(ctx))
	})
}

func TestMemoryAuctionLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryAuctionLocker()
	auctionID := uuid.New()

	handle, err := locker.TryAcquire(ctx, auctionID, 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	// The lease lapsed, so another caller may take the lock and the stale
	// handle must not be able to release or extend it.
	_, err = locker.TryAcquire(ctx, auctionID, time.Minute)
	assert.NoError(t, err)
	assert.ErrorIs(t, handle.Release(ctx), ErrLockLost)
	assert.ErrorIs(t, handle.Extend(ctx, time.Minute), ErrLockLost)
}

func TestMemoryAuctionLocker_Extend(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryAuctionLocker()
	auctionID := uuid.New()

	handle, err := locker.TryAcquire(ctx, auctionID, 30*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, handle.Extend(ctx, time.Minute))

	time.Sleep(50 * time.Millisecond)

	// Still held thanks to the extension
	_, err = locker.TryAcquire(ctx, auctionID, time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.NoError(t, handle.Release(ctx))
}

func TestMemoryAuctionLocker_AcquireWaits(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryAuctionLocker()
	auctionID := uuid.New()

	handle, err := locker.TryAcquire(ctx, auctionID, time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = handle.Release(context.Background())
	}()

	acquired, err := locker.Acquire(ctx, auctionID, time.Minute, time.Second, 5*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, acquired.Release(ctx))
}

func TestMemoryAuctionLocker_AcquireTimesOut(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryAuctionLocker()
	auctionID := uuid.New()

	handle, err := locker.TryAcquire(ctx, auctionID, time.Minute)
	require.NoError(t, err)
	defer func() { _ = handle.Release(ctx) }()

	start := time.Now()
	_, err = locker.Acquire(ctx, auctionID, time.Minute, 50*time.Millisecond, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestMemoryAuctionLocker_AcquireHonoursCancellation(t *testing.T) {
	locker := NewMemoryAuctionLocker()
	auctionID := uuid.New()

	handle, err := locker.TryAcquire(context.Background(), auctionID, time.Minute)
	require.NoError(t, err)
	defer func() { _ = handle.Release(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = locker.Acquire(ctx, auctionID, time.Minute, 10*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryAuctionLocker_MutualExclusionUnderContention(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryAuctionLocker()
	auctionID := uuid.New()

	var (
		holders int
		maxSeen int
		mu      sync.Mutex
		wg      sync.WaitGroup
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			handle, err := locker.Acquire(ctx, auctionID, time.Minute, 5*time.Second, time.Millisecond)
			if err != nil {
				return
			}

			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()

			_ = handle.Release(ctx)
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxSeen, "more than one goroutine held the lock at once")
}
