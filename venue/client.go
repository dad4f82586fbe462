package venue

import (
	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// VENUE TRADING CLIENT
// ═══════════════════════════════════════════════════════════════════════════════
//
// Opaque per-venue trading capability. Authentication and order signing
// happen entirely inside the implementation; nothing above this boundary
// touches keys, nonces or wire signatures. One client instance per venue,
// owned by the execution engine, which serializes submissions per venue
// because signing nonces are fragile to interleaving.
//
// ═══════════════════════════════════════════════════════════════════════════════

// OrderResult reports one leg's submission outcome
type OrderResult struct {
	Success bool
	OrderID string
	Error   string
}

// TradingClient is the opaque per-venue capability
type TradingClient interface {
	Venue() types.Venue

	// IsConfigured reports whether credentials for live trading are loaded
	IsConfigured() bool

	// GetActiveMarket returns the venue's current 15m window, or nil
	GetActiveMarket() (*types.MarketWindow, error)

	// GetMarketDetails fetches full details for a known market id
	GetMarketDetails(id string) (*types.MarketWindow, error)

	// PlaceLimitOrder submits a BUY limit order for the outcome token
	PlaceLimitOrder(tokenID string, price, size decimal.Decimal) OrderResult

	// CancelOrder cancels a resting order; false on any failure
	CancelOrder(orderID string) bool

	// GetBalance returns the venue's spendable USD balance
	GetBalance() (decimal.Decimal, error)

	// MinShares is the venue's minimum order size in shares
	MinShares() decimal.Decimal

	// MinOrderValue is the venue's minimum order notional in USD
	MinOrderValue() decimal.Decimal
}
