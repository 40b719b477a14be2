package bidding

import (
	"context"

	"github.com/google/uuid"
)

// AuctionRepository persists the bidding-relevant projection of auctions
type AuctionRepository interface {
	// FindByID finds an auction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	// Save persists the auction's bidding fields (high-bid pointer, closing
	// time, extension count) with optimistic version checking
	Save(ctx context.Context, auction *Auction) error
}

// BidRepository is the append-only bid ledger. Bids are created, never
// updated or deleted.
type BidRepository interface {
	// Create appends an evaluated bid to the ledger
	Create(ctx context.Context, bid *Bid) error
	// FindByAuction returns the auction's full bid history, newest first
	FindByAuction(ctx context.Context, auctionID uuid.UUID) ([]Bid, error)
	// CountByAuction returns the number of ledger rows for the auction
	CountByAuction(ctx context.Context, auctionID uuid.UUID) (int64, error)
}

// AutoBidRepository persists standing proxy bids
type AutoBidRepository interface {
	// FindByID finds an auto-bid by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*AutoBid, error)
	// FindActiveByAuction returns active auto-bids for the auction excluding
	// the given bidder, ordered by max amount descending, ties broken by
	// earliest creation
	FindActiveByAuction(ctx context.Context, auctionID, excludeBidderID uuid.UUID) ([]AutoBid, error)
	// FindActiveByAuctionAndBidder returns the bidder's active auto-bid for
	// the auction, or shared.ErrNotFound
	FindActiveByAuctionAndBidder(ctx context.Context, auctionID, bidderID uuid.UUID) (*AutoBid, error)
	// Save creates or updates an auto-bid
	Save(ctx context.Context, autoBid *AutoBid) error
	// DeactivateAllForAuction deactivates every active auto-bid for the
	// auction and returns the number affected
	DeactivateAllForAuction(ctx context.Context, auctionID uuid.UUID) (int64, error)
}
