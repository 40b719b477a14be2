package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence/models"
)

// GormBidRepository implements the append-only bid ledger using GORM
type GormBidRepository struct {
	db *gorm.DB
}

// NewGormBidRepository creates a new GormBidRepository
func NewGormBidRepository(db *gorm.DB) *GormBidRepository {
	return &GormBidRepository{db: db}
}

// Create appends an evaluated bid to the ledger
func (r *GormBidRepository) Create(ctx context.Context, bid *bidding.Bid) error {
	return r.db.WithContext(ctx).Create(models.BidModelFromDomain(bid)).Error
}

// FindByAuction returns the auction's full bid history, newest first
func (r *GormBidRepository) FindByAuction(ctx context.Context, auctionID uuid.UUID) ([]bidding.Bid, error) {
	var bidModels []models.BidModel
	if err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("bid_time DESC, created_at DESC").
		Find(&bidModels).Error; err != nil {
		return nil, err
	}

	bids := make([]bidding.Bid, len(bidModels))
	for i := range bidModels {
		bids[i] = *bidModels[i].ToDomain()
	}
	return bids, nil
}

// CountByAuction returns the number of ledger rows for the auction
func (r *GormBidRepository) CountByAuction(ctx context.Context, auctionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BidModel{}).
		Where("auction_id = ?", auctionID).
		Count(&count).Error
	return count, err
}

// Ensure GormBidRepository implements BidRepository
var _ bidding.BidRepository = (*GormBidRepository)(nil)
