package bidding

import "github.com/auctionhouse/backend/internal/domain/shared"

// Bidding domain errors
var (
	// ErrAuctionNotLive means the auction is not accepting bids (wrong status
	// or past its closing time)
	ErrAuctionNotLive = shared.NewDomainError("AUCTION_NOT_LIVE", "Auction is not accepting bids")
	// ErrAutoBidCapExceeded means a proxy bid would exceed the bidder's
	// authorized ceiling
	ErrAutoBidCapExceeded = shared.NewDomainError("AUTO_BID_CAP_EXCEEDED", "Auto-bid would exceed the authorized maximum")
	// ErrActiveAutoBidExists means the (auction, bidder) pair already has an
	// active proxy bid; callers should update it instead
	ErrActiveAutoBidExists = shared.NewDomainError("ACTIVE_AUTO_BID_EXISTS", "An active auto-bid already exists for this auction and bidder")
)
