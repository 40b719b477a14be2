package bidding

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/domain/shared"
)

// PlaceBidCommand is a request to place a bid on an auction
type PlaceBidCommand struct {
	AuctionID uuid.UUID       `json:"auction_id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	// IdempotencyKey is an optional client-supplied token. When absent a key
	// is derived from the submission contents, so an identical retry inside
	// the window is answered with the original outcome.
	IdempotencyKey string `json:"-"`
}

// Validate checks the command fields
func (c PlaceBidCommand) Validate() error {
	if c.AuctionID == uuid.Nil || c.BidderID == uuid.Nil {
		return shared.ErrInvalidInput
	}
	if !c.Amount.IsPositive() {
		return shared.ErrInvalidInput
	}
	return nil
}

// DedupeKey returns the idempotency key for this submission: the client token
// when provided, otherwise a hash of (auction, bidder, amount).
func (c PlaceBidCommand) DedupeKey() string {
	if c.IdempotencyKey != "" {
		return c.IdempotencyKey
	}
	sum := sha256.Sum256([]byte(c.AuctionID.String() + "|" + c.BidderID.String() + "|" + c.Amount.String()))
	return hex.EncodeToString(sum[:])
}

// BidResult is the outcome of a bid submission. TooLow and Rejected are
// results, not errors: the submission was evaluated and the ledger records it.
type BidResult struct {
	BidID     uuid.UUID         `json:"bid_id"`
	AuctionID uuid.UUID         `json:"auction_id"`
	BidderID  uuid.UUID         `json:"bidder_id"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    bidding.BidStatus `json:"status"`
	// Reason explains a non-accepted status in human-readable form
	Reason string `json:"reason,omitempty"`
	// CurrentHighBid is the standing high bid after this submission and any
	// auto-bid cascade it triggered
	CurrentHighBid *decimal.Decimal `json:"current_high_bid,omitempty"`
	// MinimumNextBid is the smallest amount that would currently be accepted
	MinimumNextBid decimal.Decimal `json:"minimum_next_bid"`
	// ClosingTime reflects any anti-snipe extensions applied
	ClosingTime time.Time `json:"closing_time"`
	// Extended is true when this submission pushed the closing time out
	Extended bool `json:"extended"`
	// AutoBidsTriggered counts proxy bids the cascade placed
	AutoBidsTriggered int `json:"auto_bids_triggered,omitempty"`
	// Duplicate is true when the result was replayed from the idempotency
	// window instead of being re-evaluated
	Duplicate bool `json:"duplicate,omitempty"`
}

// CreateAutoBidCommand registers a standing proxy bid
type CreateAutoBidCommand struct {
	AuctionID uuid.UUID       `json:"auction_id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	MaxAmount decimal.Decimal `json:"max_amount"`
}

// UpdateAutoBidCommand modifies an existing proxy bid. Nil fields are left
// unchanged.
type UpdateAutoBidCommand struct {
	AutoBidID uuid.UUID        `json:"-"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`
	IsActive  *bool            `json:"is_active,omitempty"`
}

// AutoBidResponse is the external view of a standing proxy bid
type AutoBidResponse struct {
	ID               uuid.UUID        `json:"id"`
	AuctionID        uuid.UUID        `json:"auction_id"`
	BidderID         uuid.UUID        `json:"bidder_id"`
	MaxAmount        decimal.Decimal  `json:"max_amount"`
	CurrentBidAmount *decimal.Decimal `json:"current_bid_amount,omitempty"`
	IsActive         bool             `json:"is_active"`
	LastBidAt        *time.Time       `json:"last_bid_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ToAutoBidResponse converts a domain auto-bid to its response DTO
func ToAutoBidResponse(ab *bidding.AutoBid) AutoBidResponse {
	return AutoBidResponse{
		ID:               ab.ID,
		AuctionID:        ab.AuctionID,
		BidderID:         ab.BidderID,
		MaxAmount:        ab.MaxAmount,
		CurrentBidAmount: ab.CurrentBidAmount,
		IsActive:         ab.IsActive,
		LastBidAt:        ab.LastBidAt,
		CreatedAt:        ab.CreatedAt,
	}
}

// AuctionStateResponse is the bidding-relevant snapshot of an auction
type AuctionStateResponse struct {
	AuctionID           uuid.UUID             `json:"auction_id"`
	Status              bidding.AuctionStatus `json:"status"`
	CurrentHighBid      *decimal.Decimal      `json:"current_high_bid,omitempty"`
	CurrentHighBidderID *uuid.UUID            `json:"current_high_bidder_id,omitempty"`
	ReservePrice        decimal.Decimal       `json:"reserve_price"`
	ReserveMet          bool                  `json:"reserve_met"`
	MinimumNextBid      decimal.Decimal       `json:"minimum_next_bid"`
	ClosingTime         time.Time             `json:"closing_time"`
	ExtensionCount      int                   `json:"extension_count"`
	BidCount            int64                 `json:"bid_count"`
}

// BidResponse is the external view of a ledger row
type BidResponse struct {
	ID        uuid.UUID         `json:"id"`
	AuctionID uuid.UUID         `json:"auction_id"`
	BidderID  uuid.UUID         `json:"bidder_id"`
	Amount    decimal.Decimal   `json:"amount"`
	BidTime   time.Time         `json:"bid_time"`
	Status    bidding.BidStatus `json:"status"`
	AutoBid   bool              `json:"auto_bid"`
}

// ToBidResponse converts a domain bid to its response DTO
func ToBidResponse(b *bidding.Bid) BidResponse {
	return BidResponse{
		ID:        b.ID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		BidTime:   b.BidTime,
		Status:    b.Status,
		AutoBid:   b.IsAutoBid(),
	}
}
