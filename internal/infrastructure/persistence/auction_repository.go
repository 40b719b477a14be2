package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence/models"
)

// GormAuctionRepository implements AuctionRepository using GORM
type GormAuctionRepository struct {
	db *gorm.DB
}

// NewGormAuctionRepository creates a new GormAuctionRepository
func NewGormAuctionRepository(db *gorm.DB) *GormAuctionRepository {
	return &GormAuctionRepository{db: db}
}

// FindByID finds an auction by its ID
func (r *GormAuctionRepository) FindByID(ctx context.Context, id uuid.UUID) (*bidding.Auction, error) {
	var model models.AuctionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists the auction's bidding fields with optimistic version checking.
// The version guard is belt and braces on top of the auction lock: even if a
// second writer slipped past the lock, only one of the two commits.
func (r *GormAuctionRepository) Save(ctx context.Context, auction *bidding.Auction) error {
	previousVersion := auction.GetVersion()
	auction.IncrementVersion()
	model := models.AuctionModelFromDomain(auction)

	result := r.db.WithContext(ctx).
		Model(&models.AuctionModel{}).
		Where("id = ? AND version = ?", auction.ID, previousVersion).
		Updates(map[string]interface{}{
			"current_high_bid":       model.CurrentHighBid,
			"current_high_bidder_id": model.CurrentHighBidderID,
			"closing_time":           model.ClosingTime,
			"extension_count":        model.ExtensionCount,
			"status":                 model.Status,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})
	if result.Error != nil {
		auction.Version = previousVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		auction.Version = previousVersion
		return r.createIfAbsent(ctx, model)
	}
	return nil
}

// createIfAbsent inserts a new auction row, or reports a version conflict when
// the row exists with a different version
func (r *GormAuctionRepository) createIfAbsent(ctx context.Context, model *models.AuctionModel) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AuctionModel{}).
		Where("id = ?", model.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}
	model.Version--
	return r.db.WithContext(ctx).Create(model).Error
}

// Ensure GormAuctionRepository implements AuctionRepository
var _ bidding.AuctionRepository = (*GormAuctionRepository)(nil)
