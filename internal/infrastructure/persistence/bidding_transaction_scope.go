package persistence

import (
	"context"

	"gorm.io/gorm"

	appbidding "github.com/auctionhouse/backend/internal/application/bidding"
	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/domain/shared"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations, with domain
// events staged in the transactional outbox as part of the same transaction.
type GormTransactionScope struct {
	db         *gorm.DB
	eventSaver shared.OutboxEventSaver
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, eventSaver shared.OutboxEventSaver) *GormTransactionScope {
	return &GormTransactionScope{db: db, eventSaver: eventSaver}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbidding.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx, eventSaver: s.eventSaver}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx         *gorm.DB
	eventSaver shared.OutboxEventSaver
}

// AuctionRepo returns the auction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AuctionRepo() bidding.AuctionRepository {
	return NewGormAuctionRepository(r.tx)
}

// BidRepo returns the bid ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) BidRepo() bidding.BidRepository {
	return NewGormBidRepository(r.tx)
}

// AutoBidRepo returns the auto-bid repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AutoBidRepo() bidding.AutoBidRepository {
	return NewGormAutoBidRepository(r.tx)
}

// SaveEvents stages domain events in the outbox within the current transaction.
func (r *gormTransactionalRepositories) SaveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.eventSaver.SaveEvents(ctx, r.tx, events...)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appbidding.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appbidding.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
