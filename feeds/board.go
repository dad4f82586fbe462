package feeds

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// QUOTE BOARD - Single shared view of best bid/ask across venues
// ═══════════════════════════════════════════════════════════════════════════════
//
// Four slots: (venue × side). Each venue's feed adapter is the only writer
// for its two slots; the calculator reads a consistent snapshot.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Snapshot is an immutable copy of all four quotes at one instant
type Snapshot struct {
	PolyUp   types.Quote
	PolyDown types.Quote
	PfUp     types.Quote
	PfDown   types.Quote
	TakenAt  time.Time
}

// Quote returns the slot for (venue, side)
func (s *Snapshot) Quote(venue types.Venue, side types.Side) *types.Quote {
	switch {
	case venue == types.VenuePolymarket && side == types.SideUp:
		return &s.PolyUp
	case venue == types.VenuePolymarket && side == types.SideDown:
		return &s.PolyDown
	case venue == types.VenuePredictFun && side == types.SideUp:
		return &s.PfUp
	default:
		return &s.PfDown
	}
}

// Board holds the live quotes and notifies on every update
type Board struct {
	mu     sync.RWMutex
	quotes map[types.Venue]map[types.Side]types.Quote

	onUpdate func(types.Venue, types.Side)
}

// NewBoard creates an empty quote board
func NewBoard() *Board {
	return &Board{
		quotes: map[types.Venue]map[types.Side]types.Quote{
			types.VenuePolymarket: {},
			types.VenuePredictFun: {},
		},
	}
}

// OnUpdate registers the callback fired after each successful quote write.
// Must be set before the feeds start.
func (b *Board) OnUpdate(cb func(types.Venue, types.Side)) {
	b.onUpdate = cb
}

// SetQuote replaces the quote for (venue, side). Nil bid/ask keeps
// the slot marked unknown on that side of the book.
func (b *Board) SetQuote(venue types.Venue, side types.Side, tokenID string, bid, ask *decimal.Decimal) {
	b.mu.Lock()
	b.quotes[venue][side] = types.Quote{
		Venue:     venue,
		Side:      side,
		TokenID:   tokenID,
		BestBid:   bid,
		BestAsk:   ask,
		UpdatedAt: time.Now(),
	}
	b.mu.Unlock()

	if b.onUpdate != nil {
		b.onUpdate(venue, side)
	}
}

// Clear drops all quotes for a venue. Called on window rollover so stale
// prices from the previous contract can never be traded against.
func (b *Board) Clear(venue types.Venue) {
	b.mu.Lock()
	b.quotes[venue] = map[types.Side]types.Quote{}
	b.mu.Unlock()
}

// Snapshot copies the current board state
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Snapshot{
		PolyUp:   b.quotes[types.VenuePolymarket][types.SideUp],
		PolyDown: b.quotes[types.VenuePolymarket][types.SideDown],
		PfUp:     b.quotes[types.VenuePredictFun][types.SideUp],
		PfDown:   b.quotes[types.VenuePredictFun][types.SideDown],
		TakenAt:  time.Now(),
	}
}
