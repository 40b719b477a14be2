package bidding

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestIncrementPolicy_MinimumIncrement(t *testing.T) {
	policy := NewIncrementPolicy()

	cases := []struct {
		current  int64
		expected int64
	}{
		{0, 5},
		{99, 5},
		{100, 10},
		{480, 10},
		{499, 10},
		{500, 25},
		{999, 25},
		{1_000, 50},
		{4_999, 50},
		{5_000, 100},
		{9_999, 100},
		{10_000, 250},
		{24_999, 250},
		{25_000, 500},
		{49_999, 500},
		{50_000, 1_000},
		{99_999, 1_000},
		{100_000, 2_500},
		{249_999, 2_500},
		{250_000, 5_000},
		{499_999, 5_000},
		{500_000, 10_000},
		{2_000_000, 10_000},
	}

	for _, tc := range cases {
		inc := policy.MinimumIncrement(d(tc.current))
		assert.True(t, d(tc.expected).Equal(inc),
			"current %d: expected increment %d, got %s", tc.current, tc.expected, inc)
	}
}

func TestIncrementPolicy_BandsAreContiguous(t *testing.T) {
	policy := NewIncrementPolicy()

	// Every band's upper bound +1 must fall into the next band, so there are
	// no gaps or overlaps in the ladder.
	for i := 0; i < len(policy.bands)-1; i++ {
		upper := policy.bands[i].to
		next := policy.bands[i+1].from
		assert.True(t, upper.Add(decimal.NewFromInt(1)).Equal(next),
			"band %d ends at %s but band %d starts at %s", i, upper, i+1, next)
	}
	assert.True(t, policy.bands[len(policy.bands)-1].open)
}

func TestIncrementPolicy_MinimumNextBid(t *testing.T) {
	policy := NewIncrementPolicy()

	for _, current := range []int64{0, 50, 99, 100, 480, 999, 7_500, 123_456, 600_000} {
		cur := d(current)
		expected := cur.Add(policy.MinimumIncrement(cur))
		assert.True(t, expected.Equal(policy.MinimumNextBid(cur)))
	}

	// 480 sits in the 100-499 band, so the next valid bid is 490
	assert.True(t, d(490).Equal(policy.MinimumNextBid(d(480))))
}

func TestIncrementPolicy_MinimumOpeningBid(t *testing.T) {
	policy := NewIncrementPolicy()

	// The opening floor is itself a valid first bid
	floor := policy.MinimumOpeningBid()
	assert.True(t, decimal.RequireFromString("0.01").Equal(floor))
	assert.True(t, policy.IsValidAmount(floor, nil))
}

func TestIncrementPolicy_IsValidAmount(t *testing.T) {
	policy := NewIncrementPolicy()

	t.Run("no current high bid accepts any positive amount", func(t *testing.T) {
		assert.True(t, policy.IsValidAmount(d(1), nil))
		assert.True(t, policy.IsValidAmount(decimal.NewFromFloat(0.01), nil))
		assert.False(t, policy.IsValidAmount(d(0), nil))
		assert.False(t, policy.IsValidAmount(d(-5), nil))
	})

	t.Run("amount must reach the minimum next bid", func(t *testing.T) {
		current := d(480)
		assert.True(t, policy.IsValidAmount(d(490), &current))
		assert.True(t, policy.IsValidAmount(d(1_000), &current))
		assert.False(t, policy.IsValidAmount(d(489), &current))
		assert.False(t, policy.IsValidAmount(d(480), &current))
	})
}
