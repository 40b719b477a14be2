package bidding

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhouse/backend/internal/domain/shared"
)

// AutoBid is a standing proxy bid: an authorization for the system to bid on
// the bidder's behalf up to MaxAmount. At most one active AutoBid exists per
// (auction, bidder) pair.
type AutoBid struct {
	shared.BaseEntity
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	// MaxAmount is the ceiling the bidder authorized
	MaxAmount decimal.Decimal
	// CurrentBidAmount is the amount most recently placed on the bidder's behalf
	CurrentBidAmount *decimal.Decimal
	IsActive         bool
	LastBidAt        *time.Time
}

// NewAutoBid creates an active standing proxy bid
func NewAutoBid(auctionID, bidderID uuid.UUID, maxAmount decimal.Decimal) (*AutoBid, error) {
	if !maxAmount.IsPositive() {
		return nil, shared.ErrInvalidInput
	}
	return &AutoBid{
		BaseEntity: shared.NewBaseEntity(),
		AuctionID:  auctionID,
		BidderID:   bidderID,
		MaxAmount:  maxAmount,
		IsActive:   true,
	}, nil
}

// CanBid reports whether the proxy may place a bid of the given amount
func (ab *AutoBid) CanBid(amount decimal.Decimal) bool {
	return ab.IsActive && amount.LessThanOrEqual(ab.MaxAmount)
}

// Raise records a bid placed on the bidder's behalf. The amount must not
// exceed the authorized ceiling; the resolver deactivates the proxy instead
// of bidding past it.
func (ab *AutoBid) Raise(amount decimal.Decimal, at time.Time) error {
	if !ab.IsActive {
		return shared.ErrInvalidState
	}
	if amount.GreaterThan(ab.MaxAmount) {
		return ErrAutoBidCapExceeded
	}
	ab.CurrentBidAmount = &amount
	ab.LastBidAt = &at
	ab.Touch()
	return nil
}

// Deactivate turns the proxy off; it places no further bids
func (ab *AutoBid) Deactivate() {
	ab.IsActive = false
	ab.Touch()
}

// UpdateMaxAmount raises or lowers the authorized ceiling
func (ab *AutoBid) UpdateMaxAmount(maxAmount decimal.Decimal) error {
	if !maxAmount.IsPositive() {
		return shared.ErrInvalidInput
	}
	if ab.CurrentBidAmount != nil && maxAmount.LessThan(*ab.CurrentBidAmount) {
		return shared.ErrInvalidInput
	}
	ab.MaxAmount = maxAmount
	ab.Touch()
	return nil
}

// Activate turns a previously deactivated proxy back on
func (ab *AutoBid) Activate() {
	ab.IsActive = true
	ab.Touch()
}
