package bidding

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhouse/backend/internal/domain/bidding"
)

// BidQueryService serves read-only views of the bid ledger. Queries run
// outside the auction lock; the ledger is append-only so readers never see a
// row change under them.
type BidQueryService struct {
	bidRepo     bidding.BidRepository
	auctionRepo bidding.AuctionRepository
}

// NewBidQueryService creates a bid query service
func NewBidQueryService(bidRepo bidding.BidRepository, auctionRepo bidding.AuctionRepository) *BidQueryService {
	return &BidQueryService{bidRepo: bidRepo, auctionRepo: auctionRepo}
}

// GetBidsForAuction returns the auction's full bid history, newest first
func (s *BidQueryService) GetBidsForAuction(ctx context.Context, auctionID uuid.UUID) ([]BidResponse, error) {
	if _, err := s.auctionRepo.FindByID(ctx, auctionID); err != nil {
		return nil, err
	}

	bids, err := s.bidRepo.FindByAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	responses := make([]BidResponse, len(bids))
	for i := range bids {
		responses[i] = ToBidResponse(&bids[i])
	}
	return responses, nil
}

// GetAuctionState returns the bidding-relevant snapshot of an auction
func (s *BidQueryService) GetAuctionState(ctx context.Context, auctionID uuid.UUID) (*AuctionStateResponse, error) {
	auction, err := s.auctionRepo.FindByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	count, err := s.bidRepo.CountByAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	policy := bidding.NewIncrementPolicy()
	minNext := policy.MinimumNextBid(decimalOrZero(auction))

	return &AuctionStateResponse{
		AuctionID:           auction.ID,
		Status:              auction.Status,
		CurrentHighBid:      auction.CurrentHighBid,
		CurrentHighBidderID: auction.CurrentHighBidderID,
		ReservePrice:        auction.ReservePrice,
		ReserveMet:          auction.CurrentHighBid != nil && auction.MeetsReserve(*auction.CurrentHighBid),
		MinimumNextBid:      minNext,
		ClosingTime:         auction.ClosingTime,
		ExtensionCount:      auction.ExtensionCount,
		BidCount:            count,
	}, nil
}

func decimalOrZero(auction *bidding.Auction) decimal.Decimal {
	if auction.CurrentHighBid == nil {
		return decimal.Zero
	}
	return *auction.CurrentHighBid
}
