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

// AutoBidHandler handles standing proxy bid HTTP requests
type AutoBidHandler struct {
	BaseHandler
	service *appbidding.AutoBidService
}

// NewAutoBidHandler creates a new auto-bid handler
func NewAutoBidHandler(service *appbidding.AutoBidService) *AutoBidHandler {
	return &AutoBidHandler{service: service}
}

// RegisterRoutes registers auto-bid routes
func (h *AutoBidHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auctions/:id/autobids", h.Create)
	rg.GET("/auctions/:id/autobids/me", h.Get)
	rg.PATCH("/autobids/:id", h.Update)
}

// createAutoBidRequest is the proxy bid registration payload
type createAutoBidRequest struct {
	MaxAmount decimal.Decimal `json:"max_amount" binding:"required"`
}

// updateAutoBidRequest modifies an existing proxy bid; nil fields stay unchanged
type updateAutoBidRequest struct {
	MaxAmount *decimal.Decimal `json:"max_amount"`
	IsActive  *bool            `json:"is_active"`
}

// Create handles POST /auctions/:id/autobids
func (h *AutoBidHandler) Create(c *gin.Context) {
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

	var req createAutoBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), appbidding.CreateAutoBidCommand{
		AuctionID: auctionID,
		BidderID:  bidderID,
		MaxAmount: req.MaxAmount,
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			h.ServiceUnavailable(c, dto.ErrCodeLockTimeout, "Auction is busy, please retry", 1)
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get handles GET /auctions/:id/autobids/me
func (h *AutoBidHandler) Get(c *gin.Context) {
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

	resp, err := h.service.Get(c.Request.Context(), auctionID, bidderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update handles PATCH /autobids/:id
func (h *AutoBidHandler) Update(c *gin.Context) {
	autoBidID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid auto-bid ID")
		return
	}

	var req updateAutoBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), appbidding.UpdateAutoBidCommand{
		AutoBidID: autoBidID,
		MaxAmount: req.MaxAmount,
		IsActive:  req.IsActive,
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			h.ServiceUnavailable(c, dto.ErrCodeLockTimeout, "Auction is busy, please retry", 1)
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
