package bidding

import "github.com/shopspring/decimal"

// incrementBand maps a contiguous, inclusive range of current-high-bid values
// to the minimum increment a subsequent bid must add. An open band has no
// upper bound.
type incrementBand struct {
	from      decimal.Decimal
	to        decimal.Decimal
	open      bool
	increment decimal.Decimal
}

// fallbackIncrement is returned when no band matches. The last band is
// open-ended, so with non-negative amounts this branch is unreachable; it is
// kept as a defensive default.
var fallbackIncrement = decimal.NewFromInt(10)

// IncrementPolicy is a pure, stateless mapping from the current high bid to
// the minimum acceptable next bid. First matching band wins.
type IncrementPolicy struct {
	bands []incrementBand
}

// NewIncrementPolicy creates the standard auction increment ladder.
func NewIncrementPolicy() *IncrementPolicy {
	band := func(from, to, inc int64) incrementBand {
		return incrementBand{
			from:      decimal.NewFromInt(from),
			to:        decimal.NewFromInt(to),
			increment: decimal.NewFromInt(inc),
		}
	}
	openBand := func(from, inc int64) incrementBand {
		return incrementBand{
			from:      decimal.NewFromInt(from),
			open:      true,
			increment: decimal.NewFromInt(inc),
		}
	}
	return &IncrementPolicy{
		bands: []incrementBand{
			band(0, 99, 5),
			band(100, 499, 10),
			band(500, 999, 25),
			band(1_000, 4_999, 50),
			band(5_000, 9_999, 100),
			band(10_000, 24_999, 250),
			band(25_000, 49_999, 500),
			band(50_000, 99_999, 1_000),
			band(100_000, 249_999, 2_500),
			band(250_000, 499_999, 5_000),
			openBand(500_000, 10_000),
		},
	}
}

// MinimumIncrement returns the minimum amount a new bid must add on top of
// the given current high bid.
func (p *IncrementPolicy) MinimumIncrement(currentHighBid decimal.Decimal) decimal.Decimal {
	for _, b := range p.bands {
		if currentHighBid.LessThan(b.from) {
			continue
		}
		if b.open || currentHighBid.LessThanOrEqual(b.to) {
			return b.increment
		}
	}
	return fallbackIncrement
}

// MinimumNextBid returns the smallest amount that outbids the current high bid.
func (p *IncrementPolicy) MinimumNextBid(currentHighBid decimal.Decimal) decimal.Decimal {
	return currentHighBid.Add(p.MinimumIncrement(currentHighBid))
}

// minimumOpeningBid is the smallest two-decimal positive amount
var minimumOpeningBid = decimal.New(1, -2)

// MinimumOpeningBid returns the floor for an auction with no standing high
// bid. Any positive amount opens the bidding, so the floor is one cent.
func (p *IncrementPolicy) MinimumOpeningBid() decimal.Decimal {
	return minimumOpeningBid
}

// IsValidAmount reports whether amount is an acceptable bid against the
// current high bid. With no standing high bid any positive amount is valid.
func (p *IncrementPolicy) IsValidAmount(amount decimal.Decimal, currentHighBid *decimal.Decimal) bool {
	if currentHighBid == nil {
		return amount.IsPositive()
	}
	return amount.GreaterThanOrEqual(p.MinimumNextBid(*currentHighBid))
}
