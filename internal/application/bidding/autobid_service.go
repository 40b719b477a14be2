package bidding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/lock"
)

// AutoBidService manages standing proxy bids. Registering or changing a proxy
// never places a bid by itself; the resolver only acts when a competing bid
// arrives. Writes take the auction lock: proxy rows are also written by the
// cascade, and a ceiling change racing a cascade round must serialize behind
// it or the cascade's full-row save would silently undo it.
type AutoBidService struct {
	scope  TransactionScope
	locker lock.AuctionLocker
	config EngineConfig
	logger *zap.Logger

	// now is injectable for tests
	now func() time.Time
}

// NewAutoBidService creates an auto-bid service
func NewAutoBidService(scope TransactionScope, locker lock.AuctionLocker, config EngineConfig, logger *zap.Logger) *AutoBidService {
	return &AutoBidService{
		scope:  scope,
		locker: locker,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Create registers a standing proxy bid for the (auction, bidder) pair.
// Returns bidding.ErrActiveAutoBidExists when the pair already has an active
// one; callers should update the existing proxy instead.
func (s *AutoBidService) Create(ctx context.Context, cmd CreateAutoBidCommand) (*AutoBidResponse, error) {
	if cmd.AuctionID == uuid.Nil || cmd.BidderID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if !cmd.MaxAmount.IsPositive() {
		return nil, shared.ErrInvalidInput
	}

	handle, err := s.locker.Acquire(ctx, cmd.AuctionID, s.config.LockTTL, s.config.LockWait, s.config.LockRetryInterval)
	if err != nil {
		return nil, err
	}
	defer s.release(handle)

	var response *AutoBidResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		auction, err := repos.AuctionRepo().FindByID(ctx, cmd.AuctionID)
		if err != nil {
			return err
		}
		if !auction.IsLive(s.now()) {
			return bidding.ErrAuctionNotLive
		}

		existing, err := repos.AutoBidRepo().FindActiveByAuctionAndBidder(ctx, cmd.AuctionID, cmd.BidderID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return bidding.ErrActiveAutoBidExists
		}

		autoBid, err := bidding.NewAutoBid(cmd.AuctionID, cmd.BidderID, cmd.MaxAmount)
		if err != nil {
			return err
		}
		if err := repos.AutoBidRepo().Save(ctx, autoBid); err != nil {
			return err
		}
		if err := repos.SaveEvents(ctx, bidding.NewAutoBidCreatedEvent(autoBid)); err != nil {
			return err
		}

		r := ToAutoBidResponse(autoBid)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("auto-bid registered",
		zap.String("auction_id", cmd.AuctionID.String()),
		zap.String("bidder_id", cmd.BidderID.String()),
		zap.String("max_amount", cmd.MaxAmount.String()),
	)
	return response, nil
}

// Update changes the ceiling or active flag of an existing proxy bid
func (s *AutoBidService) Update(ctx context.Context, cmd UpdateAutoBidCommand) (*AutoBidResponse, error) {
	if cmd.AutoBidID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if cmd.MaxAmount == nil && cmd.IsActive == nil {
		return nil, shared.ErrInvalidInput
	}

	// The lock key is the auction, which the command does not carry. Resolve
	// it first, then re-read under the lock before mutating.
	var auctionID uuid.UUID
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		autoBid, err := repos.AutoBidRepo().FindByID(ctx, cmd.AutoBidID)
		if err != nil {
			return err
		}
		auctionID = autoBid.AuctionID
		return nil
	})
	if err != nil {
		return nil, err
	}

	handle, err := s.locker.Acquire(ctx, auctionID, s.config.LockTTL, s.config.LockWait, s.config.LockRetryInterval)
	if err != nil {
		return nil, err
	}
	defer s.release(handle)

	var response *AutoBidResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		autoBid, err := repos.AutoBidRepo().FindByID(ctx, cmd.AutoBidID)
		if err != nil {
			return err
		}

		if cmd.MaxAmount != nil {
			if err := autoBid.UpdateMaxAmount(*cmd.MaxAmount); err != nil {
				return err
			}
		}
		if cmd.IsActive != nil {
			if *cmd.IsActive {
				if !autoBid.IsActive {
					// The pair may have registered a fresh proxy since this
					// one was turned off; reactivating would then break the
					// one-active-per-pair rule.
					existing, err := repos.AutoBidRepo().FindActiveByAuctionAndBidder(ctx, autoBid.AuctionID, autoBid.BidderID)
					if err != nil && !errors.Is(err, shared.ErrNotFound) {
						return err
					}
					if existing != nil && existing.ID != autoBid.ID {
						return bidding.ErrActiveAutoBidExists
					}
				}
				autoBid.Activate()
			} else {
				autoBid.Deactivate()
			}
		}

		if err := repos.AutoBidRepo().Save(ctx, autoBid); err != nil {
			return err
		}

		r := ToAutoBidResponse(autoBid)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Get returns the bidder's active proxy bid for the auction
func (s *AutoBidService) Get(ctx context.Context, auctionID, bidderID uuid.UUID) (*AutoBidResponse, error) {
	var response *AutoBidResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		autoBid, err := repos.AutoBidRepo().FindActiveByAuctionAndBidder(ctx, auctionID, bidderID)
		if err != nil {
			return err
		}
		r := ToAutoBidResponse(autoBid)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// DeactivateAllForAuction turns every active proxy bid for the auction off.
// Invoked when the auction finishes.
func (s *AutoBidService) DeactivateAllForAuction(ctx context.Context, auctionID uuid.UUID) (int64, error) {
	handle, err := s.locker.Acquire(ctx, auctionID, s.config.LockTTL, s.config.LockWait, s.config.LockRetryInterval)
	if err != nil {
		return 0, err
	}
	defer s.release(handle)

	var count int64
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		n, err := repos.AutoBidRepo().DeactivateAllForAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("auto-bids deactivated",
			zap.String("auction_id", auctionID.String()),
			zap.Int64("count", count),
		)
	}
	return count, nil
}

// release gives the auction lock back with a fresh context so a cancelled
// request still releases promptly
func (s *AutoBidService) release(handle lock.Handle) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := handle.Release(ctx); err != nil {
		s.logger.Warn("auction lock release failed",
			zap.String("auction_id", handle.AuctionID().String()),
			zap.Error(err),
		)
	}
}
