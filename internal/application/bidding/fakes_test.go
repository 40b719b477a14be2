package bidding

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/domain/shared"
)

// memAuctionRepo is an in-memory AuctionRepository for engine tests
type memAuctionRepo struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*bidding.Auction
}

func newMemAuctionRepo() *memAuctionRepo {
	return &memAuctionRepo{auctions: make(map[uuid.UUID]*bidding.Auction)}
}

func (r *memAuctionRepo) FindByID(_ context.Context, id uuid.UUID) (*bidding.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction, ok := r.auctions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return auction, nil
}

func (r *memAuctionRepo) Save(_ context.Context, auction *bidding.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction.IncrementVersion()
	r.auctions[auction.ID] = auction
	return nil
}

func (r *memAuctionRepo) put(auction *bidding.Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[auction.ID] = auction
}

// memBidRepo is an in-memory append-only BidRepository
type memBidRepo struct {
	mu   sync.Mutex
	bids []*bidding.Bid
}

func newMemBidRepo() *memBidRepo {
	return &memBidRepo{}
}

func (r *memBidRepo) Create(_ context.Context, bid *bidding.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bids = append(r.bids, bid)
	return nil
}

func (r *memBidRepo) FindByAuction(_ context.Context, auctionID uuid.UUID) ([]bidding.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bidding.Bid
	for i := len(r.bids) - 1; i >= 0; i-- {
		if r.bids[i].AuctionID == auctionID {
			out = append(out, *r.bids[i])
		}
	}
	return out, nil
}

func (r *memBidRepo) CountByAuction(_ context.Context, auctionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bids {
		if b.AuctionID == auctionID {
			n++
		}
	}
	return n, nil
}

// all returns a snapshot of every ledger row, oldest first
func (r *memBidRepo) all() []bidding.Bid {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bidding.Bid, len(r.bids))
	for i, b := range r.bids {
		out[i] = *b
	}
	return out
}

// memAutoBidRepo is an in-memory AutoBidRepository
type memAutoBidRepo struct {
	mu       sync.Mutex
	autoBids map[uuid.UUID]*bidding.AutoBid
}

func newMemAutoBidRepo() *memAutoBidRepo {
	return &memAutoBidRepo{autoBids: make(map[uuid.UUID]*bidding.AutoBid)}
}

func (r *memAutoBidRepo) FindByID(_ context.Context, id uuid.UUID) (*bidding.AutoBid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ab, ok := r.autoBids[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return ab, nil
}

func (r *memAutoBidRepo) FindActiveByAuction(_ context.Context, auctionID, excludeBidderID uuid.UUID) ([]bidding.AutoBid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bidding.AutoBid
	for _, ab := range r.autoBids {
		if ab.AuctionID == auctionID && ab.IsActive && ab.BidderID != excludeBidderID {
			out = append(out, *ab)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MaxAmount.Equal(out[j].MaxAmount) {
			return out[i].MaxAmount.GreaterThan(out[j].MaxAmount)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memAutoBidRepo) FindActiveByAuctionAndBidder(_ context.Context, auctionID, bidderID uuid.UUID) (*bidding.AutoBid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ab := range r.autoBids {
		if ab.AuctionID == auctionID && ab.BidderID == bidderID && ab.IsActive {
			return ab, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAutoBidRepo) Save(_ context.Context, autoBid *bidding.AutoBid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *autoBid
	r.autoBids[autoBid.ID] = &copied
	return nil
}

func (r *memAutoBidRepo) DeactivateAllForAuction(_ context.Context, auctionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, ab := range r.autoBids {
		if ab.AuctionID == auctionID && ab.IsActive {
			ab.Deactivate()
			n++
		}
	}
	return n, nil
}

var (
	_ bidding.AuctionRepository = (*memAuctionRepo)(nil)
	_ bidding.BidRepository     = (*memBidRepo)(nil)
	_ bidding.AutoBidRepository = (*memAutoBidRepo)(nil)
)
