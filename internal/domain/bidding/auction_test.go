package bidding

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAuction_IsLive(t *testing.T) {
	now := time.Now()

	t.Run("live and before closing", func(t *testing.T) {
		a := NewAuction(decimal.NewFromInt(500), now.Add(time.Hour))
		assert.True(t, a.IsLive(now))
	})

	t.Run("live but past closing", func(t *testing.T) {
		a := NewAuction(decimal.NewFromInt(500), now.Add(-time.Minute))
		assert.False(t, a.IsLive(now))
	})

	t.Run("wrong status", func(t *testing.T) {
		for _, status := range []AuctionStatus{
			AuctionStatusDraft, AuctionStatusScheduled, AuctionStatusFinished,
			AuctionStatusReserveNotMet, AuctionStatusCancelled,
		} {
			a := NewAuction(decimal.NewFromInt(500), now.Add(time.Hour))
			a.Status = status
			assert.False(t, a.IsLive(now), "status %s", status)
		}
	})
}

func TestAuction_ApplyHighBid(t *testing.T) {
	t.Run("moves the pointer", func(t *testing.T) {
		a := NewAuction(decimal.NewFromInt(500), time.Now().Add(time.Hour))
		bid := NewBid(a.ID, uuid.New(), decimal.NewFromInt(100), time.Now())

		a.ApplyHighBid(bid)

		assert.True(t, decimal.NewFromInt(100).Equal(*a.CurrentHighBid))
		assert.Equal(t, bid.BidderID, *a.CurrentHighBidderID)
		assert.Empty(t, a.GetDomainEvents())
	})

	t.Run("raises Outbid for a displaced bidder", func(t *testing.T) {
		a := NewAuction(decimal.NewFromInt(500), time.Now().Add(time.Hour))
		first := NewBid(a.ID, uuid.New(), decimal.NewFromInt(100), time.Now())
		second := NewBid(a.ID, uuid.New(), decimal.NewFromInt(150), time.Now())

		a.ApplyHighBid(first)
		a.ApplyHighBid(second)

		events := a.GetDomainEvents()
		assert.Len(t, events, 1)
		outbid, ok := events[0].(*OutbidEvent)
		assert.True(t, ok)
		assert.Equal(t, first.BidderID, outbid.PreviousHighBidderID)
		assert.True(t, decimal.NewFromInt(150).Equal(outbid.NewAmount))
	})

	t.Run("no Outbid when the same bidder raises", func(t *testing.T) {
		a := NewAuction(decimal.NewFromInt(500), time.Now().Add(time.Hour))
		bidderID := uuid.New()

		a.ApplyHighBid(NewBid(a.ID, bidderID, decimal.NewFromInt(100), time.Now()))
		a.ApplyHighBid(NewBid(a.ID, bidderID, decimal.NewFromInt(150), time.Now()))

		assert.Empty(t, a.GetDomainEvents())
	})
}

func TestAuction_ExtendClosing(t *testing.T) {
	closing := time.Now().Add(90 * time.Second)
	a := NewAuction(decimal.NewFromInt(500), closing)

	a.ExtendClosing(2 * time.Minute)
	a.ExtendClosing(2 * time.Minute)

	assert.Equal(t, closing.Add(4*time.Minute), a.ClosingTime)
	assert.Equal(t, 2, a.ExtensionCount)

	events := a.GetDomainEvents()
	assert.Len(t, events, 2)
	extended, ok := events[1].(*AuctionExtendedEvent)
	assert.True(t, ok)
	assert.Equal(t, 2, extended.ExtensionCount)
	assert.Equal(t, a.ClosingTime, extended.NewClosingTime)
}

func TestAuction_MeetsReserve(t *testing.T) {
	a := NewAuction(decimal.NewFromInt(500), time.Now().Add(time.Hour))

	assert.True(t, a.MeetsReserve(decimal.NewFromInt(500)))
	assert.True(t, a.MeetsReserve(decimal.NewFromInt(501)))
	assert.False(t, a.MeetsReserve(decimal.NewFromInt(499)))
}
