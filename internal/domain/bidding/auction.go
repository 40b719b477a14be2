package bidding

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhouse/backend/internal/domain/shared"
)

// AuctionStatus represents the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionStatusDraft         AuctionStatus = "DRAFT"
	AuctionStatusScheduled     AuctionStatus = "SCHEDULED"
	AuctionStatusLive          AuctionStatus = "LIVE"
	AuctionStatusFinished      AuctionStatus = "FINISHED"
	AuctionStatusReserveNotMet AuctionStatus = "RESERVE_NOT_MET"
	AuctionStatusCancelled     AuctionStatus = "CANCELLED"
)

// Auction is the bidding-relevant projection of an auction. The full lifecycle
// (catalog data, scheduling, settlement) is owned by the auction-lifecycle
// collaborator; this engine reads and writes only the fields that bidding
// touches: the current-high-bid pointer, the closing time and the extension
// counter.
type Auction struct {
	shared.BaseAggregateRoot
	CurrentHighBid      *decimal.Decimal
	CurrentHighBidderID *uuid.UUID
	ReservePrice        decimal.Decimal
	ClosingTime         time.Time
	ExtensionCount      int
	Status              AuctionStatus
}

// NewAuction creates a live auction projection. Intended for tests and
// fixtures; production rows are created by the lifecycle collaborator.
func NewAuction(reservePrice decimal.Decimal, closingTime time.Time) *Auction {
	return &Auction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReservePrice:      reservePrice,
		ClosingTime:       closingTime,
		Status:            AuctionStatusLive,
	}
}

// IsLive reports whether the auction accepts bids at the given instant
func (a *Auction) IsLive(now time.Time) bool {
	return a.Status == AuctionStatusLive && now.Before(a.ClosingTime)
}

// MeetsReserve reports whether the amount satisfies the reserve price
func (a *Auction) MeetsReserve(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(a.ReservePrice)
}

// ApplyHighBid moves the current-high-bid pointer to the accepted bid and
// raises an Outbid event for the displaced bidder, if any. The bid row itself
// is an immutable fact; only this derived pointer changes.
func (a *Auction) ApplyHighBid(bid *Bid) {
	if a.CurrentHighBidderID != nil && *a.CurrentHighBidderID != bid.BidderID {
		a.AddDomainEvent(NewOutbidEvent(a, *a.CurrentHighBidderID, bid))
	}
	amount := bid.Amount
	bidderID := bid.BidderID
	a.CurrentHighBid = &amount
	a.CurrentHighBidderID = &bidderID
	a.Touch()
}

// ExtendClosing pushes the closing time out by the given extension and raises
// an AuctionExtended event. Repeated late bids may extend repeatedly; the
// extension count is carried on the event so downstream policy can observe it.
func (a *Auction) ExtendClosing(extension time.Duration) {
	a.ClosingTime = a.ClosingTime.Add(extension)
	a.ExtensionCount++
	a.Touch()
	a.AddDomainEvent(NewAuctionExtendedEvent(a))
}
