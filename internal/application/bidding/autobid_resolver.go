package bidding

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/auctionhouse/backend/internal/domain/bidding"
)

// AutoBidResolver runs the proxy-bid cascade after an accepted bid. Each round
// it picks the strongest active auto-bid that does not belong to the current
// high bidder and places the minimum amount that outbids the standing high
// bid, never more than the proxy's authorized ceiling. The new proxy bid is
// then treated like any other accepted bid, so cascades chain until no proxy
// can outbid the leader.
//
// The resolver runs inside the caller's transaction and under the caller's
// auction lock; it never acquires locks of its own.
type AutoBidResolver struct {
	policy    *bidding.IncrementPolicy
	antiSnipe *AntiSnipeExtender
	maxDepth  int
	logger    *zap.Logger
}

// NewAutoBidResolver creates a resolver with the given cascade depth cap
func NewAutoBidResolver(policy *bidding.IncrementPolicy, antiSnipe *AntiSnipeExtender, maxDepth int, logger *zap.Logger) *AutoBidResolver {
	return &AutoBidResolver{
		policy:    policy,
		antiSnipe: antiSnipe,
		maxDepth:  maxDepth,
		logger:    logger,
	}
}

// Resolve runs the cascade against the auction's current state and returns
// the proxy bids it placed, in order. The auction's high-bid pointer and
// closing time are updated in place; the caller persists the auction and
// publishes events for the returned bids.
func (r *AutoBidResolver) Resolve(ctx context.Context, repos TransactionalRepositories, auction *bidding.Auction, now time.Time) ([]*bidding.Bid, error) {
	placed := make([]*bidding.Bid, 0, 2)

	for depth := 0; ; depth++ {
		if depth >= r.maxDepth {
			r.logger.Warn("auto-bid cascade stopped at depth cap",
				zap.String("auction_id", auction.ID.String()),
				zap.Int("depth", depth),
			)
			break
		}
		if auction.CurrentHighBid == nil || auction.CurrentHighBidderID == nil {
			break
		}

		candidates, err := repos.AutoBidRepo().FindActiveByAuction(ctx, auction.ID, *auction.CurrentHighBidderID)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			break
		}

		top := &candidates[0]
		minNext := r.policy.MinimumNextBid(*auction.CurrentHighBid)

		if top.MaxAmount.LessThan(minNext) {
			// The required next amount exceeds the authorized ceiling; the
			// proxy is spent and places no further bids.
			top.Deactivate()
			if err := repos.AutoBidRepo().Save(ctx, top); err != nil {
				return nil, err
			}
			break
		}

		amount := decimal.Min(minNext, top.MaxAmount)
		if err := top.Raise(amount, now); err != nil {
			return nil, err
		}
		if err := repos.AutoBidRepo().Save(ctx, top); err != nil {
			return nil, err
		}

		proxy := bidding.NewProxyBid(auction.ID, top.BidderID, top.ID, amount, now)
		var terr error
		if auction.MeetsReserve(amount) {
			terr = proxy.Accept()
		} else {
			terr = proxy.AcceptBelowReserve()
		}
		if terr != nil {
			return nil, terr
		}
		if err := repos.BidRepo().Create(ctx, proxy); err != nil {
			return nil, err
		}

		auction.ApplyHighBid(proxy)
		r.antiSnipe.MaybeExtend(auction, now)
		placed = append(placed, proxy)
	}

	return placed, nil
}
