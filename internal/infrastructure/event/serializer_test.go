package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auctionhouse/backend/internal/domain/bidding"
)

func TestBiddingEventSerializer_RegistersAllTypes(t *testing.T) {
	s := NewBiddingEventSerializer()

	for _, eventType := range []string{
		bidding.EventTypeBidPlaced,
		bidding.EventTypeOutbid,
		bidding.EventTypeAuctionExtended,
		bidding.EventTypeAutoBidCreated,
		bidding.EventTypeAuctionFinished,
	} {
		assert.True(t, s.IsRegistered(eventType), eventType)
	}
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewBiddingEventSerializer()

	bid := bidding.NewBid(uuid.New(), uuid.New(), decimal.NewFromInt(150), time.Now())
	require.NoError(t, bid.Accept())

	original := bidding.NewBidPlacedEvent(bid)

	data, err := s.Serialize(original)
	require.NoError(t, err)

	deserialized, err := s.Deserialize(bidding.EventTypeBidPlaced, data)
	require.NoError(t, err)

	placed, ok := deserialized.(*bidding.BidPlacedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), placed.EventID())
	assert.Equal(t, original.BidID, placed.BidID)
	assert.Equal(t, bidding.BidStatusAccepted, placed.Status)
	assert.True(t, original.Amount.Equal(placed.Amount))
}

func TestEventSerializer_UnknownType(t *testing.T) {
	s := NewEventSerializer()

	_, err := s.Deserialize("Unknown", []byte(`{}`))
	assert.Error(t, err)
}
