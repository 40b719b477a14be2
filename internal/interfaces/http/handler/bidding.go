package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbidding "github.com/auctionhouse/backend/internal/application/bidding"
	"github.com/auctionhouse/backend/internal/infrastructure/lock"
	"github.com/auctionhouse/backend/internal/interfaces/http/dto"
)

// BiddingHandler handles bid submission and auction state HTTP requests
type BiddingHandler struct {
	BaseHandler
	engine  *appbidding.BidEngine
	queries *appbidding.BidQueryService
}

// NewBiddingHandler creates a new bidding handler
func NewBiddingHandler(engine *appbidding.BidEngine, queries *appbidding.BidQueryService) *BiddingHandler {
	return &BiddingHandler{
		engine:  engine,
		queries: queries,
	}
}

// RegisterRoutes registers bidding routes
func (h *BiddingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auctions := rg.Group("/auctions")
	{
		auctions.GET("/:id", h.GetAuctionState)
		auctions.GET("/:id/bids", h.GetBids)
		auctions.POST("/:id/bids", h.PlaceBid)
	}
}

// placeBidRequest is the bid submission payload
type placeBidRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// PlaceBid handles POST /auctions/:id/bids.
//
// The outcome is returned with 200 for evaluated submissions, including
// TooLow: the submission itself succeeded even when the bid did not lead.
// Lock contention beyond the wait budget returns 503 with Retry-After.
// An Idempotency-Key header makes retries safe across network failures.
func (h *BiddingHandler) PlaceBid(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid auction ID")
		return
	}

	bidderID, err := getBidderID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid X-Bidder-ID header")
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.engine.PlaceBid(c.Request.Context(), appbidding.PlaceBidCommand{
		AuctionID:      auctionID,
		BidderID:       bidderID,
		Amount:         req.Amount,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			h.ServiceUnavailable(c, dto.ErrCodeLockTimeout, "Auction is busy, please retry", 1)
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetBids handles GET /auctions/:id/bids
func (h *BiddingHandler) GetBids(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid auction ID")
		return
	}

	bids, err := h.queries.GetBidsForAuction(c.Request.Context(), auctionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bids)
}

// GetAuctionState handles GET /auctions/:id
func (h *BiddingHandler) GetAuctionState(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid auction ID")
		return
	}

	state, err := h.queries.GetAuctionState(c.Request.Context(), auctionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}
