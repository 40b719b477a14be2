package bidding

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/lock"
)

// EngineConfig holds the tunables of the bid evaluation pipeline
type EngineConfig struct {
	// LockTTL is the lease taken for a single bid evaluation
	LockTTL time.Duration
	// CascadeLockTTL is the lease extension applied before an auto-bid cascade
	CascadeLockTTL time.Duration
	// LockWait bounds how long a submission waits for a contended auction lock
	LockWait time.Duration
	// LockRetryInterval is the polling interval while waiting for the lock
	LockRetryInterval time.Duration
	// IdempotencyWindow is how long a submission's outcome is replayable
	IdempotencyWindow time.Duration
	// SnipeThreshold and SnipeExtension configure anti-snipe extensions
	SnipeThreshold time.Duration
	SnipeExtension time.Duration
	// MaxCascadeDepth caps auto-bid cascade rounds per submission
	MaxCascadeDepth int
}

// DefaultEngineConfig returns the standard production tuning
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		LockTTL:           10 * time.Second,
		CascadeLockTTL:    30 * time.Second,
		LockWait:          5 * time.Second,
		LockRetryInterval: 50 * time.Millisecond,
		IdempotencyWindow: 60 * time.Second,
		SnipeThreshold:    2 * time.Minute,
		SnipeExtension:    2 * time.Minute,
		MaxCascadeDepth:   10,
	}
}

// BidEngine evaluates bid submissions. Per auction, evaluations are fully
// serialized by a distributed lock; everything a submission changes (ledger
// row, high-bid pointer, auto-bid state, outbox events) commits in one
// database transaction.
type BidEngine struct {
	scope     TransactionScope
	locker    lock.AuctionLocker
	results   shared.ResultStore
	policy    *bidding.IncrementPolicy
	resolver  *AutoBidResolver
	antiSnipe *AntiSnipeExtender
	config    EngineConfig
	logger    *zap.Logger

	// now is injectable for tests
	now func() time.Time
}

// NewBidEngine creates a bid engine
func NewBidEngine(
	scope TransactionScope,
	locker lock.AuctionLocker,
	results shared.ResultStore,
	config EngineConfig,
	logger *zap.Logger,
) *BidEngine {
	policy := bidding.NewIncrementPolicy()
	antiSnipe := NewAntiSnipeExtender(config.SnipeThreshold, config.SnipeExtension)
	return &BidEngine{
		scope:     scope,
		locker:    locker,
		results:   results,
		policy:    policy,
		resolver:  NewAutoBidResolver(policy, antiSnipe, config.MaxCascadeDepth, logger),
		antiSnipe: antiSnipe,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// PlaceBid evaluates a bid submission and returns its outcome.
//
// Duplicate submissions inside the idempotency window are answered with the
// original outcome and Duplicate=true. Contention on the auction lock beyond
// the wait budget returns lock.ErrLockTimeout, which callers should treat as
// retryable. Any unexpected fault rolls the transaction back, leaves the
// idempotency key unmarked and surfaces shared.ErrProcessingFailed.
func (e *BidEngine) PlaceBid(ctx context.Context, cmd PlaceBidCommand) (*BidResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	key := cmd.DedupeKey()
	if cached, ok, err := e.results.Get(ctx, key); err != nil {
		e.logger.Warn("idempotency lookup failed, evaluating normally",
			zap.String("auction_id", cmd.AuctionID.String()),
			zap.Error(err),
		)
	} else if ok {
		var replay BidResult
		if uerr := json.Unmarshal(cached, &replay); uerr != nil {
			e.logger.Warn("cached bid result is unreadable, evaluating normally",
				zap.String("auction_id", cmd.AuctionID.String()),
				zap.Error(uerr),
			)
		} else {
			replay.Duplicate = true
			return &replay, nil
		}
	}

	handle, err := e.locker.Acquire(ctx, cmd.AuctionID, e.config.LockTTL, e.config.LockWait, e.config.LockRetryInterval)
	if err != nil {
		return nil, err
	}
	defer e.release(handle)

	var result *BidResult
	txErr := e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := e.evaluate(ctx, repos, handle, cmd)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, shared.ErrNotFound) {
			return nil, txErr
		}
		e.logger.Error("bid evaluation failed",
			zap.String("auction_id", cmd.AuctionID.String()),
			zap.String("bidder_id", cmd.BidderID.String()),
			zap.String("amount", cmd.Amount.String()),
			zap.Error(txErr),
		)
		return nil, shared.ErrProcessingFailed
	}

	// The outcome is durable; mark the key and cache the result. Failures
	// here only cost dedup coverage, never correctness.
	if payload, err := json.Marshal(result); err == nil {
		if err := e.results.Put(ctx, key, payload, e.config.IdempotencyWindow); err != nil {
			e.logger.Warn("failed to cache bid result",
				zap.String("auction_id", cmd.AuctionID.String()),
				zap.Error(err),
			)
		}
	}

	return result, nil
}

// evaluate runs the in-transaction portion of a submission
func (e *BidEngine) evaluate(ctx context.Context, repos TransactionalRepositories, handle lock.Handle, cmd PlaceBidCommand) (*BidResult, error) {
	auction, err := repos.AuctionRepo().FindByID(ctx, cmd.AuctionID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	bid := bidding.NewBid(cmd.AuctionID, cmd.BidderID, cmd.Amount, now)

	if !auction.IsLive(now) {
		// Persisted for audit even though it never entered increment checking
		if err := bid.Reject(); err != nil {
			return nil, err
		}
		if err := repos.BidRepo().Create(ctx, bid); err != nil {
			return nil, err
		}
		if err := repos.SaveEvents(ctx, bidding.NewBidPlacedEvent(bid)); err != nil {
			return nil, err
		}
		return e.declinedResult(bid, auction, "auction is not accepting bids"), nil
	}

	if !e.policy.IsValidAmount(cmd.Amount, auction.CurrentHighBid) {
		if err := bid.MarkTooLow(); err != nil {
			return nil, err
		}
		if err := repos.BidRepo().Create(ctx, bid); err != nil {
			return nil, err
		}
		if err := repos.SaveEvents(ctx, bidding.NewBidPlacedEvent(bid)); err != nil {
			return nil, err
		}
		return e.declinedResult(bid, auction, "amount is below the minimum next bid"), nil
	}

	if auction.MeetsReserve(cmd.Amount) {
		err = bid.Accept()
	} else {
		err = bid.AcceptBelowReserve()
	}
	if err != nil {
		return nil, err
	}
	if err := repos.BidRepo().Create(ctx, bid); err != nil {
		return nil, err
	}

	extensionsBefore := auction.ExtensionCount
	auction.ApplyHighBid(bid)
	e.antiSnipe.MaybeExtend(auction, now)

	// The cascade can take several rounds of queries and writes; push the
	// lease out so it cannot lapse mid-transaction.
	if err := handle.Extend(ctx, e.config.CascadeLockTTL); err != nil {
		return nil, err
	}
	proxies, err := e.resolver.Resolve(ctx, repos, auction, now)
	if err != nil {
		return nil, err
	}

	events := make([]shared.DomainEvent, 0, 2+2*len(proxies))
	events = append(events, bidding.NewBidPlacedEvent(bid))
	for _, proxy := range proxies {
		events = append(events, bidding.NewBidPlacedEvent(proxy))
	}
	events = append(events, auction.GetDomainEvents()...)
	auction.ClearDomainEvents()

	if err := repos.AuctionRepo().Save(ctx, auction); err != nil {
		return nil, err
	}
	if err := repos.SaveEvents(ctx, events...); err != nil {
		return nil, err
	}

	return &BidResult{
		BidID:             bid.ID,
		AuctionID:         auction.ID,
		BidderID:          bid.BidderID,
		Amount:            bid.Amount,
		Status:            bid.Status,
		CurrentHighBid:    auction.CurrentHighBid,
		MinimumNextBid:    e.minimumNextBid(auction),
		ClosingTime:       auction.ClosingTime,
		Extended:          auction.ExtensionCount > extensionsBefore,
		AutoBidsTriggered: len(proxies),
	}, nil
}

// declinedResult builds the result for a bid that did not become the high bid
func (e *BidEngine) declinedResult(bid *bidding.Bid, auction *bidding.Auction, reason string) *BidResult {
	return &BidResult{
		BidID:          bid.ID,
		AuctionID:      auction.ID,
		BidderID:       bid.BidderID,
		Amount:         bid.Amount,
		Status:         bid.Status,
		Reason:         reason,
		CurrentHighBid: auction.CurrentHighBid,
		MinimumNextBid: e.minimumNextBid(auction),
		ClosingTime:    auction.ClosingTime,
	}
}

func (e *BidEngine) minimumNextBid(auction *bidding.Auction) decimal.Decimal {
	// With no standing high bid any positive amount is accepted, so the hint
	// is the opening floor rather than a band increment over zero
	if auction.CurrentHighBid == nil {
		return e.policy.MinimumOpeningBid()
	}
	return e.policy.MinimumNextBid(*auction.CurrentHighBid)
}

// release gives the auction lock back with a fresh context so a cancelled
// request still releases promptly. ErrLockLost here means the evaluation
// overran its lease, which is worth surfacing loudly.
func (e *BidEngine) release(handle lock.Handle) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := handle.Release(ctx); err != nil {
		e.logger.Warn("auction lock release failed",
			zap.String("auction_id", handle.AuctionID().String()),
			zap.Error(err),
		)
	}
}
