package bidding

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhouse/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeAuction = "Auction"

// Event type constants
const (
	EventTypeBidPlaced       = "BidPlaced"
	EventTypeOutbid          = "Outbid"
	EventTypeAuctionExtended = "AuctionExtended"
	EventTypeAutoBidCreated  = "AutoBidCreated"
	// EventTypeAuctionFinished is consumed from the auction-lifecycle
	// collaborator; this engine never emits it
	EventTypeAuctionFinished = "AuctionFinished"
)

// BidPlacedEvent is raised for every bid submission written to the ledger,
// including TooLow and Rejected outcomes, so downstream consumers see the
// full audit trail.
type BidPlacedEvent struct {
	shared.BaseDomainEvent
	AuctionID uuid.UUID       `json:"auction_id"`
	BidID     uuid.UUID       `json:"bid_id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    BidStatus       `json:"status"`
	BidTime   time.Time       `json:"bid_time"`
	AutoBid   bool            `json:"auto_bid"`
}

// NewBidPlacedEvent creates a new BidPlacedEvent
func NewBidPlacedEvent(bid *Bid) *BidPlacedEvent {
	return &BidPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBidPlaced, AggregateTypeAuction, bid.AuctionID),
		AuctionID:       bid.AuctionID,
		BidID:           bid.ID,
		BidderID:        bid.BidderID,
		Amount:          bid.Amount,
		Status:          bid.Status,
		BidTime:         bid.BidTime,
		AutoBid:         bid.IsAutoBid(),
	}
}

// EventType returns the event type name
func (e *BidPlacedEvent) EventType() string {
	return EventTypeBidPlaced
}

// OutbidEvent is raised when an accepted bid displaces a previous high bidder
type OutbidEvent struct {
	shared.BaseDomainEvent
	AuctionID            uuid.UUID       `json:"auction_id"`
	PreviousHighBidderID uuid.UUID       `json:"previous_high_bidder_id"`
	NewAmount            decimal.Decimal `json:"new_amount"`
}

// NewOutbidEvent creates a new OutbidEvent
func NewOutbidEvent(auction *Auction, previousBidderID uuid.UUID, newBid *Bid) *OutbidEvent {
	return &OutbidEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypeOutbid, AggregateTypeAuction, auction.ID),
		AuctionID:            auction.ID,
		PreviousHighBidderID: previousBidderID,
		NewAmount:            newBid.Amount,
	}
}

// EventType returns the event type name
func (e *OutbidEvent) EventType() string {
	return EventTypeOutbid
}

// AuctionExtendedEvent is raised when a late bid pushes the closing time out
type AuctionExtendedEvent struct {
	shared.BaseDomainEvent
	AuctionID      uuid.UUID `json:"auction_id"`
	NewClosingTime time.Time `json:"new_closing_time"`
	ExtensionCount int       `json:"extension_count"`
}

// NewAuctionExtendedEvent creates a new AuctionExtendedEvent
func NewAuctionExtendedEvent(auction *Auction) *AuctionExtendedEvent {
	return &AuctionExtendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAuctionExtended, AggregateTypeAuction, auction.ID),
		AuctionID:       auction.ID,
		NewClosingTime:  auction.ClosingTime,
		ExtensionCount:  auction.ExtensionCount,
	}
}

// EventType returns the event type name
func (e *AuctionExtendedEvent) EventType() string {
	return EventTypeAuctionExtended
}

// AutoBidCreatedEvent is raised when a bidder registers a standing proxy bid
type AutoBidCreatedEvent struct {
	shared.BaseDomainEvent
	AuctionID uuid.UUID       `json:"auction_id"`
	AutoBidID uuid.UUID       `json:"auto_bid_id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	MaxAmount decimal.Decimal `json:"max_amount"`
}

// NewAutoBidCreatedEvent creates a new AutoBidCreatedEvent
func NewAutoBidCreatedEvent(ab *AutoBid) *AutoBidCreatedEvent {
	return &AutoBidCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAutoBidCreated, AggregateTypeAuction, ab.AuctionID),
		AuctionID:       ab.AuctionID,
		AutoBidID:       ab.ID,
		BidderID:        ab.BidderID,
		MaxAmount:       ab.MaxAmount,
	}
}

// EventType returns the event type name
func (e *AutoBidCreatedEvent) EventType() string {
	return EventTypeAutoBidCreated
}

// AuctionFinishedEvent is the inbound event from the auction-lifecycle
// collaborator. On receipt all standing proxy bids for the auction are
// deactivated and no further bids are evaluated.
type AuctionFinishedEvent struct {
	shared.BaseDomainEvent
	AuctionID  uuid.UUID        `json:"auction_id"`
	ItemSold   bool             `json:"item_sold"`
	WinnerID   *uuid.UUID       `json:"winner_id,omitempty"`
	SoldAmount *decimal.Decimal `json:"sold_amount,omitempty"`
}

// NewAuctionFinishedEvent creates a new AuctionFinishedEvent
func NewAuctionFinishedEvent(auctionID uuid.UUID, itemSold bool, winnerID *uuid.UUID, soldAmount *decimal.Decimal) *AuctionFinishedEvent {
	return &AuctionFinishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAuctionFinished, AggregateTypeAuction, auctionID),
		AuctionID:       auctionID,
		ItemSold:        itemSold,
		WinnerID:        winnerID,
		SoldAmount:      soldAmount,
	}
}

// EventType returns the event type name
func (e *AuctionFinishedEvent) EventType() string {
	return EventTypeAuctionFinished
}
