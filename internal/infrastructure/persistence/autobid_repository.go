package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence/models"
)

// GormAutoBidRepository implements AutoBidRepository using GORM
type GormAutoBidRepository struct {
	db *gorm.DB
}

// NewGormAutoBidRepository creates a new GormAutoBidRepository
func NewGormAutoBidRepository(db *gorm.DB) *GormAutoBidRepository {
	return &GormAutoBidRepository{db: db}
}

// FindByID finds an auto-bid by its ID
func (r *GormAutoBidRepository) FindByID(ctx context.Context, id uuid.UUID) (*bidding.AutoBid, error) {
	var model models.AutoBidModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByAuction returns active auto-bids for the auction excluding the
// given bidder, strongest ceiling first, ties broken by earliest registration
func (r *GormAutoBidRepository) FindActiveByAuction(ctx context.Context, auctionID, excludeBidderID uuid.UUID) ([]bidding.AutoBid, error) {
	var autoBidModels []models.AutoBidModel
	if err := r.db.WithContext(ctx).
		Where("auction_id = ? AND bidder_id <> ? AND is_active = ?", auctionID, excludeBidderID, true).
		Order("max_amount DESC, created_at ASC").
		Find(&autoBidModels).Error; err != nil {
		return nil, err
	}

	autoBids := make([]bidding.AutoBid, len(autoBidModels))
	for i := range autoBidModels {
		autoBids[i] = *autoBidModels[i].ToDomain()
	}
	return autoBids, nil
}

// FindActiveByAuctionAndBidder returns the bidder's active auto-bid for the auction
func (r *GormAutoBidRepository) FindActiveByAuctionAndBidder(ctx context.Context, auctionID, bidderID uuid.UUID) (*bidding.AutoBid, error) {
	var model models.AutoBidModel
	if err := r.db.WithContext(ctx).
		Where("auction_id = ? AND bidder_id = ? AND is_active = ?", auctionID, bidderID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an auto-bid
func (r *GormAutoBidRepository) Save(ctx context.Context, autoBid *bidding.AutoBid) error {
	return r.db.WithContext(ctx).Save(models.AutoBidModelFromDomain(autoBid)).Error
}

// DeactivateAllForAuction deactivates every active auto-bid for the auction
func (r *GormAutoBidRepository) DeactivateAllForAuction(ctx context.Context, auctionID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AutoBidModel{}).
		Where("auction_id = ? AND is_active = ?", auctionID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Ensure GormAutoBidRepository implements AutoBidRepository
var _ bidding.AutoBidRepository = (*GormAutoBidRepository)(nil)
