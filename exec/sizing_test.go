package exec

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func TestMinSize_ShareFloorDominates(t *testing.T) {
	// 5 shares at 0.50 is $2.50, well above the $1 notional floor
	size := MinSize([]LegFloor{
		{Price: d("0.50"), MinShares: d("5"), MinValue: d("1")},
	})
	assert.True(t, size.Equal(d("5")))
}

func TestMinSize_NotionalFloorDominates(t *testing.T) {
	// $1 at 0.04 needs 25 shares
	size := MinSize([]LegFloor{
		{Price: d("0.04"), MinShares: d("5"), MinValue: d("1")},
	})
	assert.True(t, size.Equal(d("25")))
}

func TestMinSize_NotionalRoundsUp(t *testing.T) {
	// $1 / 0.30 = 3.33 → 4 shares
	size := MinSize([]LegFloor{
		{Price: d("0.30"), MinShares: decimal.Zero, MinValue: d("1")},
	})
	assert.True(t, size.Equal(d("4")))
}

func TestMinSize_BothLegsCleared(t *testing.T) {
	legs := []LegFloor{
		{Price: d("0.50"), MinShares: d("5"), MinValue: d("1")}, // needs 5
		{Price: d("0.05"), MinShares: decimal.Zero, MinValue: d("1")}, // needs 20
	}
	size := MinSize(legs)
	assert.True(t, size.Equal(d("20")))

	// The chosen size clears every floor simultaneously
	for _, leg := range legs {
		assert.True(t, size.GreaterThanOrEqual(leg.MinShares))
		assert.True(t, size.Mul(leg.Price).GreaterThanOrEqual(leg.MinValue))
	}
}

func TestMinSize_Minimality(t *testing.T) {
	legs := []LegFloor{
		{Price: d("0.50"), MinShares: d("5"), MinValue: d("1")},
		{Price: d("0.45"), MinShares: decimal.Zero, MinValue: d("1")},
	}
	size := MinSize(legs)

	// One share fewer must violate some floor
	smaller := size.Sub(d("1"))
	violates := smaller.LessThan(legs[0].MinShares) ||
		smaller.Mul(legs[0].Price).LessThan(legs[0].MinValue) ||
		smaller.Mul(legs[1].Price).LessThan(legs[1].MinValue)
	assert.True(t, violates)
}

func TestMinSize_UnusablePrice(t *testing.T) {
	assert.True(t, MinSize([]LegFloor{
		{Price: decimal.Zero, MinShares: d("5"), MinValue: d("1")},
	}).IsZero())
}

func TestAggregate_GroupsByAssetAndSide(t *testing.T) {
	trades := []RawTrade{
		{Asset: "tok1", Side: "BUY", Size: d("3"), Price: d("0.10")},
		{Asset: "tok1", Side: "BUY", Size: d("2"), Price: d("0.20")},
	}

	orders := Aggregate(trades)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].TotalSize.Equal(d("5")))
	// (3*0.10 + 2*0.20) / 5 = 0.14
	assert.True(t, orders[0].AvgPrice.Equal(d("0.14")))
}

func TestAggregate_SeparatesGroups(t *testing.T) {
	trades := []RawTrade{
		{Asset: "tok1", Side: "BUY", Size: d("1"), Price: d("0.50")},
		{Asset: "tok2", Side: "BUY", Size: d("1"), Price: d("0.40")},
		{Asset: "tok1", Side: "SELL", Size: d("1"), Price: d("0.60")},
		{Asset: "tok1", Side: "BUY", Size: d("1"), Price: d("0.52")},
	}

	orders := Aggregate(trades)
	require.Len(t, orders, 3)

	// First-seen order preserved
	assert.Equal(t, "tok1", orders[0].Asset)
	assert.Equal(t, "BUY", orders[0].Side)
	assert.True(t, orders[0].TotalSize.Equal(d("2")))
	assert.True(t, orders[0].AvgPrice.Equal(d("0.51")))

	assert.Equal(t, "tok2", orders[1].Asset)
	assert.Equal(t, "SELL", orders[2].Side)
}

func TestAggregate_DropsZeroSize(t *testing.T) {
	orders := Aggregate([]RawTrade{
		{Asset: "tok1", Side: "BUY", Size: decimal.Zero, Price: d("0.50")},
	})
	assert.Empty(t, orders)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}
