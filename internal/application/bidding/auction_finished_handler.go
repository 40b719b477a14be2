package bidding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/auctionhouse/backend/internal/domain/bidding"
	"github.com/auctionhouse/backend/internal/domain/shared"
)

// AuctionFinishedHandler consumes AuctionFinished events from the
// auction-lifecycle collaborator and deactivates every standing proxy bid for
// the finished auction. Delivery is at-least-once; the subscription should be
// wrapped in an idempotent handler, though the deactivation itself is a no-op
// when replayed.
type AuctionFinishedHandler struct {
	autoBids *AutoBidService
	logger   *zap.Logger
}

// NewAuctionFinishedHandler creates the handler
func NewAuctionFinishedHandler(autoBids *AutoBidService, logger *zap.Logger) *AuctionFinishedHandler {
	return &AuctionFinishedHandler{autoBids: autoBids, logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *AuctionFinishedHandler) EventTypes() []string {
	return []string{bidding.EventTypeAuctionFinished}
}

// Handle processes an AuctionFinished event
func (h *AuctionFinishedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	finished, ok := event.(*bidding.AuctionFinishedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}

	count, err := h.autoBids.DeactivateAllForAuction(ctx, finished.AuctionID)
	if err != nil {
		return fmt.Errorf("deactivate auto-bids for auction %s: %w", finished.AuctionID, err)
	}

	h.logger.Info("auction finished, proxy bids retired",
		zap.String("auction_id", finished.AuctionID.String()),
		zap.Bool("item_sold", finished.ItemSold),
		zap.Int64("deactivated", count),
	)
	return nil
}

var _ shared.EventHandler = (*AuctionFinishedHandler)(nil)
