package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryResultStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore()
	defer func() { _ = store.Close() }()

	newlyMarked, err := store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, newlyMarked)

	newlyMarked, err = store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, newlyMarked)

	processed, err := store.IsProcessed(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryResultStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore()
	defer func() { _ = store.Close() }()

	payload := []byte(`{"status":"ACCEPTED"}`)
	require.NoError(t, store.Put(ctx, "key-1", payload, time.Minute))

	got, ok, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload, got)

	// Putting a result also marks the key processed
	processed, err := store.IsProcessed(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryResultStore_GetUnknownKey(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore()
	defer func() { _ = store.Close() }()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryResultStore_WindowExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore()
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Put(ctx, "key-1", []byte("x"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, ok, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)

	processed, err := store.IsProcessed(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, processed)

	// Expired key can be marked again (a legitimate new submission)
	newlyMarked, err := store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, newlyMarked)
}

func TestInMemoryResultStore_MarkWithoutResult(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore()
	defer func() { _ = store.Close() }()

	_, err := store.MarkProcessed(ctx, "key-1", time.Minute)
	require.NoError(t, err)

	// Marked but no cached payload: Get reports a miss
	_, ok, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
