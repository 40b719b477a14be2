package bidding

import (
	"context"
	"sync"

	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to bidding repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all bidding repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// DDD Aggregate Boundary Notes:
//   - AuctionRepo: Repository for the bidding projection of the Auction aggregate
//     (high-bid pointer, closing time, extension count). Saved with optimistic
//     version checking.
//   - BidRepo: Append-only ledger of evaluated bids. Bid rows are immutable facts.
//   - AutoBidRepo: Standing proxy bids; mutated only while the auction lock is held.
//
// SaveEvents writes domain events to the transactional outbox so that a bid and
// its events commit or roll back together.
type TransactionalRepositories interface {
	// AuctionRepo returns the auction repository scoped to the current transaction
	AuctionRepo() bidding.AuctionRepository
	// BidRepo returns the bid ledger repository scoped to the current transaction
	BidRepo() bidding.BidRepository
	// AutoBidRepo returns the auto-bid repository scoped to the current transaction
	AutoBidRepo() bidding.AutoBidRepository
	// SaveEvents stages domain events in the outbox within the current transaction
	SaveEvents(ctx context.Context, events ...shared.DomainEvent) error
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is not
// required. Events passed to SaveEvents are collected in memory.
type NoOpTransactionScope struct {
	auctionRepo bidding.AuctionRepository
	bidRepo     bidding.BidRepository
	autoBidRepo bidding.AutoBidRepository

	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	auctionRepo bidding.AuctionRepository,
	bidRepo bidding.BidRepository,
	autoBidRepo bidding.AutoBidRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		autoBidRepo: autoBidRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// AuctionRepo returns the auction repository.
func (s *NoOpTransactionScope) AuctionRepo() bidding.AuctionRepository {
	return s.auctionRepo
}

// BidRepo returns the bid ledger repository.
func (s *NoOpTransactionScope) BidRepo() bidding.BidRepository {
	return s.bidRepo
}

// AutoBidRepo returns the auto-bid repository.
func (s *NoOpTransactionScope) AutoBidRepo() bidding.AutoBidRepository {
	return s.autoBidRepo
}

// SaveEvents collects the events in memory.
func (s *NoOpTransactionScope) SaveEvents(_ context.Context, events ...shared.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

// Events returns the events collected so far.
func (s *NoOpTransactionScope) Events() []shared.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shared.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
