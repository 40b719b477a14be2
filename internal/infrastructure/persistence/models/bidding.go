package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhouse/backend/internal/domain/bidding"
)

// AuctionModel is the persistence model for the Auction aggregate root.
type AuctionModel struct {
	AggregateModel
	CurrentHighBid      *decimal.Decimal      `gorm:"type:decimal(18,2)"`
	CurrentHighBidderID *uuid.UUID            `gorm:"type:uuid"`
	ReservePrice        decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	ClosingTime         time.Time             `gorm:"not null;index"`
	ExtensionCount      int                   `gorm:"not null;default:0"`
	Status              bidding.AuctionStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (AuctionModel) TableName() string {
	return "auctions"
}

// ToDomain converts the persistence model to a domain Auction aggregate.
func (m *AuctionModel) ToDomain() *bidding.Auction {
	auction := &bidding.Auction{
		CurrentHighBid:      m.CurrentHighBid,
		CurrentHighBidderID: m.CurrentHighBidderID,
		ReservePrice:        m.ReservePrice,
		ClosingTime:         m.ClosingTime,
		ExtensionCount:      m.ExtensionCount,
		Status:              m.Status,
	}
	m.PopulateAggregateRoot(&auction.BaseAggregateRoot)
	return auction
}

// FromDomain populates the persistence model from a domain Auction aggregate.
func (m *AuctionModel) FromDomain(a *bidding.Auction) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.CurrentHighBid = a.CurrentHighBid
	m.CurrentHighBidderID = a.CurrentHighBidderID
	m.ReservePrice = a.ReservePrice
	m.ClosingTime = a.ClosingTime
	m.ExtensionCount = a.ExtensionCount
	m.Status = a.Status
}

// AuctionModelFromDomain creates a new persistence model from a domain Auction.
func AuctionModelFromDomain(a *bidding.Auction) *AuctionModel {
	m := &AuctionModel{}
	m.FromDomain(a)
	return m
}

// BidModel is the persistence model for the Bid entity. Bid rows form an
// append-only ledger; rows are inserted once and never updated after the
// status reaches a terminal value.
type BidModel struct {
	BaseModel
	AuctionID uuid.UUID         `gorm:"type:uuid;not null;index:idx_bids_auction_time,priority:1"`
	BidderID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	BidTime   time.Time         `gorm:"not null;index:idx_bids_auction_time,priority:2"`
	Status    bidding.BidStatus `gorm:"type:varchar(30);not null"`
	AutoBidID *uuid.UUID        `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (BidModel) TableName() string {
	return "bids"
}

// ToDomain converts the persistence model to a domain Bid entity.
func (m *BidModel) ToDomain() *bidding.Bid {
	return &bidding.Bid{
		BaseEntity: m.BaseModel.ToDomain(),
		AuctionID:  m.AuctionID,
		BidderID:   m.BidderID,
		Amount:     m.Amount,
		BidTime:    m.BidTime,
		Status:     m.Status,
		AutoBidID:  m.AutoBidID,
	}
}

// FromDomain populates the persistence model from a domain Bid entity.
func (m *BidModel) FromDomain(b *bidding.Bid) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.AuctionID = b.AuctionID
	m.BidderID = b.BidderID
	m.Amount = b.Amount
	m.BidTime = b.BidTime
	m.Status = b.Status
	m.AutoBidID = b.AutoBidID
}

// BidModelFromDomain creates a new persistence model from a domain Bid.
func BidModelFromDomain(b *bidding.Bid) *BidModel {
	m := &BidModel{}
	m.FromDomain(b)
	return m
}

// AutoBidModel is the persistence model for the AutoBid entity. A partial
// unique index enforces at most one active proxy per (auction, bidder) pair;
// see the migration for the index definition.
type AutoBidModel struct {
	BaseModel
	AuctionID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_auto_bids_auction_bidder,priority:1"`
	BidderID         uuid.UUID        `gorm:"type:uuid;not null;index:idx_auto_bids_auction_bidder,priority:2"`
	MaxAmount        decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	CurrentBidAmount *decimal.Decimal `gorm:"type:decimal(18,2)"`
	IsActive         bool             `gorm:"not null;default:true;index"`
	LastBidAt        *time.Time
}

// TableName returns the table name for GORM
func (AutoBidModel) TableName() string {
	return "auto_bids"
}

// ToDomain converts the persistence model to a domain AutoBid entity.
func (m *AutoBidModel) ToDomain() *bidding.AutoBid {
	return &bidding.AutoBid{
		BaseEntity:       m.BaseModel.ToDomain(),
		AuctionID:        m.AuctionID,
		BidderID:         m.BidderID,
		MaxAmount:        m.MaxAmount,
		CurrentBidAmount: m.CurrentBidAmount,
		IsActive:         m.IsActive,
		LastBidAt:        m.LastBidAt,
	}
}

// FromDomain populates the persistence model from a domain AutoBid entity.
func (m *AutoBidModel) FromDomain(ab *bidding.AutoBid) {
	m.FromDomainBaseEntity(ab.BaseEntity)
	m.AuctionID = ab.AuctionID
	m.BidderID = ab.BidderID
	m.MaxAmount = ab.MaxAmount
	m.CurrentBidAmount = ab.CurrentBidAmount
	m.IsActive = ab.IsActive
	m.LastBidAt = ab.LastBidAt
}

// AutoBidModelFromDomain creates a new persistence model from a domain AutoBid.
func AutoBidModelFromDomain(ab *bidding.AutoBid) *AutoBidModel {
	m := &AutoBidModel{}
	m.FromDomain(ab)
	return m
}
