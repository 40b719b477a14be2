package bidding

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/auctionhouse/backend/internal/domain/shared"
)

func TestAutoBid_NewAutoBid(t *testing.T) {
	t.Run("creates an active proxy", func(t *testing.T) {
		ab, err := NewAutoBid(uuid.New(), uuid.New(), decimal.NewFromInt(1000))

		assert.NoError(t, err)
		assert.True(t, ab.IsActive)
		assert.Nil(t, ab.CurrentBidAmount)
		assert.Nil(t, ab.LastBidAt)
	})

	t.Run("rejects non-positive ceiling", func(t *testing.T) {
		_, err := NewAutoBid(uuid.New(), uuid.New(), decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestAutoBid_CanBid(t *testing.T) {
	ab, _ := NewAutoBid(uuid.New(), uuid.New(), decimal.NewFromInt(1000))

	assert.True(t, ab.CanBid(decimal.NewFromInt(1000)))
	assert.True(t, ab.CanBid(decimal.NewFromInt(500)))
	assert.False(t, ab.CanBid(decimal.NewFromInt(1001)))

	ab.Deactivate()
	assert.False(t, ab.CanBid(decimal.NewFromInt(500)))
}

func TestAutoBid_Raise(t *testing.T) {
	t.Run("records the amount and time", func(t *testing.T) {
		ab, _ := NewAutoBid(uuid.New(), uuid.New(), decimal.NewFromInt(1000))
		at := time.Now()

		assert.NoError(t, ab.Raise(decimal.NewFromInt(550), at))
		assert.True(t, decimal.NewFromInt(550).Equal(*ab.CurrentBidAmount))
		assert.Equal(t, at, *ab.LastBidAt)
	})

	t.Run("refuses to exceed the ceiling", func(t *testing.T) {
		ab, _ := NewAutoBid(uuid.New(), uuid.New(), decimal.NewFromInt(1000))

		err := ab.Raise(decimal.NewFromInt(1001), time.Now())
		assert.ErrorIs(t, err, ErrAutoBidCapExceeded)
		assert.Nil(t, ab.CurrentBidAmount)
	})

	t.Run("refuses when deactivated", func(t *testing.T) {
		ab, _ := NewAutoBid(uuid.New(), uuid.New(), decimal.NewFromInt(1000))
		ab.Deactivate()

		assert.ErrorIs(t, ab.Raise(decimal.NewFromInt(100), time.Now()), shared.ErrInvalidState)
	})
}

func TestAutoBid_UpdateMaxAmount(t *testing.T) {
	ab, _ := NewAutoBid(uuid.New(), uuid.New(), decimal.NewFromInt(1000))
	assert.NoError(t, ab.Raise(decimal.NewFromInt(800), time.Now()))

	assert.NoError(t, ab.UpdateMaxAmount(decimal.NewFromInt(2000)))
	assert.True(t, decimal.NewFromInt(2000).Equal(ab.MaxAmount))

	// Cannot drop the ceiling under what has already been bid
	assert.ErrorIs(t, ab.UpdateMaxAmount(decimal.NewFromInt(700)), shared.ErrInvalidInput)
	assert.ErrorIs(t, ab.UpdateMaxAmount(decimal.Zero), shared.ErrInvalidInput)
}
