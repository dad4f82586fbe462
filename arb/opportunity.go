package arb

import (
	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/feeds"
	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// OPPORTUNITY CALCULATOR
// ═══════════════════════════════════════════════════════════════════════════════
//
// Pure scoring of one quote snapshot. No side effects, no clock, no I/O:
// everything here is unit-testable with literal quotes.
//
// Two shapes:
//   CrossSpread    buy Up on one venue and Down on the other for a combined
//                  cost under $1; profit locked at resolution.
//   DirectionalArb the same outcome bid higher on one venue than it is
//                  asked on the other; buy the cheap ask.
//
// ═══════════════════════════════════════════════════════════════════════════════

var one = decimal.NewFromInt(1)
var cent = decimal.NewFromFloat(0.01)

// Kind discriminates opportunity shapes
type Kind string

const (
	KindCrossSpread    Kind = "cross_spread"
	KindDirectionalArb Kind = "directional"
)

// Leg is one side of an opportunity
type Leg struct {
	Venue   types.Venue
	Side    types.Side
	TokenID string
	Price   decimal.Decimal // limit price to buy at
}

// Opportunity is one qualifying spread, recomputed fresh on every tick
// and never persisted
type Opportunity struct {
	Kind       Kind
	Legs       []Leg
	UnitProfit decimal.Decimal // profit per share, in price units
	Executable bool            // clears the configured minimum profit
}

// ProfitCents returns the unit profit expressed in cents
func (o Opportunity) ProfitCents() decimal.Decimal {
	return o.UnitProfit.Div(cent)
}

// Calculator scores snapshots against a minimum-profit threshold
type Calculator struct {
	minProfit decimal.Decimal // in price units
}

// NewCalculator creates a calculator with the threshold in cents
func NewCalculator(minProfitCents decimal.Decimal) *Calculator {
	return &Calculator{minProfit: minProfitCents.Mul(cent)}
}

// CrossSpreadProfit is the guaranteed per-share payoff of buying both
// outcomes at the given asks: 1 - (askUp + askDown)
func CrossSpreadProfit(askUp, askDown decimal.Decimal) decimal.Decimal {
	return one.Sub(askUp.Add(askDown))
}

// Evaluate computes every positive-profit opportunity in the snapshot.
// Missing or zero quotes yield no opportunity for that combination, never
// an error. Sub-threshold opportunities are included (for display) with
// Executable=false.
func (c *Calculator) Evaluate(snap feeds.Snapshot) []Opportunity {
	opps := make([]Opportunity, 0, 8)

	// Cross spreads: Up on one venue, Down on the other
	pairs := []struct {
		up, down *types.Quote
	}{
		{&snap.PolyUp, &snap.PfDown},
		{&snap.PfUp, &snap.PolyDown},
	}
	for _, p := range pairs {
		if !p.up.HasAsk() || !p.down.HasAsk() {
			continue
		}
		profit := CrossSpreadProfit(*p.up.BestAsk, *p.down.BestAsk)
		if !profit.IsPositive() {
			continue
		}
		opps = append(opps, Opportunity{
			Kind: KindCrossSpread,
			Legs: []Leg{
				{Venue: p.up.Venue, Side: p.up.Side, TokenID: p.up.TokenID, Price: *p.up.BestAsk},
				{Venue: p.down.Venue, Side: p.down.Side, TokenID: p.down.TokenID, Price: *p.down.BestAsk},
			},
			UnitProfit: profit,
			Executable: profit.GreaterThanOrEqual(c.minProfit),
		})
	}

	// Directional arbs: same outcome, bid on one venue above ask on the other
	combos := []struct {
		bid, ask *types.Quote
	}{
		{&snap.PolyUp, &snap.PfUp},
		{&snap.PfUp, &snap.PolyUp},
		{&snap.PolyDown, &snap.PfDown},
		{&snap.PfDown, &snap.PolyDown},
	}
	for _, cb := range combos {
		if !cb.bid.HasBid() || !cb.ask.HasAsk() {
			continue
		}
		profit := cb.bid.BestBid.Sub(*cb.ask.BestAsk)
		if !profit.IsPositive() {
			continue
		}
		opps = append(opps, Opportunity{
			Kind: KindDirectionalArb,
			Legs: []Leg{
				{Venue: cb.ask.Venue, Side: cb.ask.Side, TokenID: cb.ask.TokenID, Price: *cb.ask.BestAsk},
			},
			UnitProfit: profit,
			Executable: profit.GreaterThanOrEqual(c.minProfit),
		})
	}

	return opps
}

// Best returns the single highest-profit executable opportunity, or nil.
// At most one opportunity is executed per tick; chasing several at once
// would double up correlated exposure against quotes that are already
// stale by the second submission.
func Best(opps []Opportunity) *Opportunity {
	var best *Opportunity
	for i := range opps {
		if !opps[i].Executable {
			continue
		}
		if best == nil || opps[i].UnitProfit.GreaterThan(best.UnitProfit) {
			best = &opps[i]
		}
	}
	return best
}
