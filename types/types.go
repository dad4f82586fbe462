package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SHARED TYPES - Avoid import cycles
// ═══════════════════════════════════════════════════════════════════════════════

// Venue identifies a prediction-market platform
type Venue string

const (
	VenuePolymarket Venue = "polymarket"
	VenuePredictFun Venue = "predictfun"
)

// Side is one of the two binary outcomes of a window market
type Side string

const (
	SideUp   Side = "UP"
	SideDown Side = "DOWN"
)

// Other returns the opposite side
func (s Side) Other() Side {
	if s == SideUp {
		return SideDown
	}
	return SideUp
}

// Quote is the live best bid/ask for one outcome token on one venue.
// Nil bid/ask means no data yet. Written only by that venue's feed adapter.
type Quote struct {
	Venue     Venue
	Side      Side
	TokenID   string
	BestBid   *decimal.Decimal
	BestAsk   *decimal.Decimal
	UpdatedAt time.Time
}

// HasAsk reports whether a usable ask is known
func (q *Quote) HasAsk() bool {
	return q != nil && q.BestAsk != nil && q.BestAsk.IsPositive()
}

// HasBid reports whether a usable bid is known
func (q *Quote) HasBid() bool {
	return q != nil && q.BestBid != nil && q.BestBid.IsPositive()
}

// MarketWindow is the currently active 15-minute contract pair on one venue.
// Exactly one live window per venue, owned by that venue's resolver.
type MarketWindow struct {
	Venue       Venue
	ID          string
	Title       string
	UpTokenID   string
	DownTokenID string
	WindowLabel string // e.g. "9:15AM-9:30AM"
	TickSize    decimal.Decimal
	NegRisk     bool
	EndTime     time.Time
}

// OrderStatus tracks the lifecycle of a submitted leg
type OrderStatus string

const (
	OrderSubmitted OrderStatus = "SUBMITTED"
	OrderFilled    OrderStatus = "FILLED"
	OrderRejected  OrderStatus = "REJECTED"
)

// Order is one submitted leg of a trade
type Order struct {
	ID      string
	Venue   Venue
	Side    Side
	TokenID string
	Price   decimal.Decimal
	Size    decimal.Decimal
	Status  OrderStatus
	Error   string
}

// TradeRecord is a persisted execution record
type TradeRecord struct {
	ID         string
	Kind       string // "cross_spread", "directional", "copy"
	Legs       int
	UnitProfit decimal.Decimal
	Size       decimal.Decimal
	Partial    bool
	ExecutedAt time.Time
}
