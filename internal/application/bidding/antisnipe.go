package bidding

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/bidding"
)

// AntiSnipeExtender pushes an auction's closing time out when an accepted bid
// lands inside the threshold window before close. The check is made against
// the auction's current closing time, so a cascade step after an extension
// compares against the already-extended close. There is no cap on repeats.
type AntiSnipeExtender struct {
	threshold time.Duration
	extension time.Duration
}

// NewAntiSnipeExtender creates an extender with the given window and extension
func NewAntiSnipeExtender(threshold, extension time.Duration) *AntiSnipeExtender {
	return &AntiSnipeExtender{threshold: threshold, extension: extension}
}

// MaybeExtend extends the auction if the bid time falls within the threshold
// of the current closing time. Returns true when an extension was applied.
func (e *AntiSnipeExtender) MaybeExtend(auction *bidding.Auction, bidTime time.Time) bool {
	remaining := auction.ClosingTime.Sub(bidTime)
	if remaining <= 0 || remaining > e.threshold {
		return false
	}
	auction.ExtendClosing(e.extension)
	return true
}
