package exec

import (
	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ORDER SIZING
// ═══════════════════════════════════════════════════════════════════════════════
//
// Every venue enforces its own floor (Polymarket: max(5 shares, $1
// notional); predict.fun: $1 notional). A two-leg trade has to clear the
// floors of BOTH legs with one share count, so the size is the smallest
// whole number of shares satisfying every floor simultaneously.
//
// ═══════════════════════════════════════════════════════════════════════════════

// LegFloor describes one leg's price and its venue's minimums
type LegFloor struct {
	Price     decimal.Decimal
	MinShares decimal.Decimal
	MinValue  decimal.Decimal
}

// MinSize returns the smallest integer share count that satisfies every
// leg's share floor and notional floor. Zero when any leg has no usable
// price.
func MinSize(legs []LegFloor) decimal.Decimal {
	size := decimal.Zero
	for _, leg := range legs {
		if !leg.Price.IsPositive() {
			return decimal.Zero
		}
		if leg.MinShares.GreaterThan(size) {
			size = leg.MinShares
		}
		byValue := leg.MinValue.Div(leg.Price).Ceil()
		if byValue.GreaterThan(size) {
			size = byValue
		}
	}
	return size.Ceil()
}

// RawTrade is one observed fill from a followed trader
type RawTrade struct {
	Asset string
	Side  string
	Size  decimal.Decimal
	Price decimal.Decimal
}

// AggregatedOrder is several raw trades on the same (asset, side) rolled
// into one synthetic order
type AggregatedOrder struct {
	Asset     string
	Side      string
	TotalSize decimal.Decimal
	AvgPrice  decimal.Decimal // volume-weighted
}

// Aggregate sums raw trades per (asset, side) within one poll cycle into
// synthetic orders with volume-weighted average prices. Many sub-$1 fills
// that would individually fail a venue's order-value floor survive as one
// order that clears it. First-seen grouping order is preserved.
func Aggregate(trades []RawTrade) []AggregatedOrder {
	type key struct{ asset, side string }

	index := make(map[key]int)
	out := make([]AggregatedOrder, 0, len(trades))

	for _, t := range trades {
		if !t.Size.IsPositive() {
			continue
		}
		k := key{t.Asset, t.Side}
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, AggregatedOrder{Asset: t.Asset, Side: t.Side})
			i = len(out) - 1
		}

		agg := &out[i]
		// Keep the running notional in AvgPrice until the final divide
		agg.AvgPrice = agg.AvgPrice.Add(t.Price.Mul(t.Size))
		agg.TotalSize = agg.TotalSize.Add(t.Size)
	}

	for i := range out {
		if out[i].TotalSize.IsPositive() {
			out[i].AvgPrice = out[i].AvgPrice.Div(out[i].TotalSize)
		}
	}

	return out
}

// legCost is the notional of one leg at the chosen size
func legCost(size, price decimal.Decimal) decimal.Decimal {
	return size.Mul(price)
}
