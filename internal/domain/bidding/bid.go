package bidding

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhouse/backend/internal/domain/shared"
)

// BidStatus represents the evaluation outcome of a bid
type BidStatus string

const (
	// BidStatusPending is the initial state before evaluation
	BidStatusPending BidStatus = "PENDING"
	// BidStatusAccepted means the bid became the new high bid at or above reserve
	BidStatusAccepted BidStatus = "ACCEPTED"
	// BidStatusAcceptedBelowReserve means the bid leads but the reserve is not met
	BidStatusAcceptedBelowReserve BidStatus = "ACCEPTED_BELOW_RESERVE"
	// BidStatusTooLow means the bid did not meet the minimum next bid
	BidStatusTooLow BidStatus = "TOO_LOW"
	// BidStatusRejected means the bid failed validation before increment checking
	// (e.g. the auction was not live)
	BidStatusRejected BidStatus = "REJECTED"
)

// Bid is an immutable fact in the auction's append-only ledger. Once a bid
// reaches a terminal status it is never mutated again, only superseded by
// later bids.
type Bid struct {
	shared.BaseEntity
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
	BidTime   time.Time
	Status    BidStatus
	// AutoBidID is set when the bid was placed by the auto-bid resolver on
	// the bidder's behalf
	AutoBidID *uuid.UUID
}

// NewBid creates a pending bid awaiting evaluation
func NewBid(auctionID, bidderID uuid.UUID, amount decimal.Decimal, bidTime time.Time) *Bid {
	return &Bid{
		BaseEntity: shared.NewBaseEntity(),
		AuctionID:  auctionID,
		BidderID:   bidderID,
		Amount:     amount,
		BidTime:    bidTime,
		Status:     BidStatusPending,
	}
}

// NewProxyBid creates a pending bid placed by the resolver for a standing proxy bid
func NewProxyBid(auctionID, bidderID, autoBidID uuid.UUID, amount decimal.Decimal, bidTime time.Time) *Bid {
	b := NewBid(auctionID, bidderID, amount, bidTime)
	b.AutoBidID = &autoBidID
	return b
}

// IsTerminal returns true once the bid has been evaluated
func (b *Bid) IsTerminal() bool {
	return b.Status != BidStatusPending
}

// IsAccepted returns true for both accepted outcomes
func (b *Bid) IsAccepted() bool {
	return b.Status == BidStatusAccepted || b.Status == BidStatusAcceptedBelowReserve
}

// IsAutoBid returns true when the bid was placed by the resolver
func (b *Bid) IsAutoBid() bool {
	return b.AutoBidID != nil
}

// Accept marks the bid as the new high bid at or above reserve
func (b *Bid) Accept() error {
	return b.transition(BidStatusAccepted)
}

// AcceptBelowReserve marks the bid as leading while the reserve is unmet
func (b *Bid) AcceptBelowReserve() error {
	return b.transition(BidStatusAcceptedBelowReserve)
}

// MarkTooLow records that the bid did not meet the minimum next bid
func (b *Bid) MarkTooLow() error {
	return b.transition(BidStatusTooLow)
}

// Reject records a validation failure detected before increment checking
func (b *Bid) Reject() error {
	return b.transition(BidStatusRejected)
}

func (b *Bid) transition(to BidStatus) error {
	if b.IsTerminal() {
		return shared.ErrInvalidState
	}
	b.Status = to
	b.Touch()
	return nil
}
