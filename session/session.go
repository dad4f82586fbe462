package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SESSION STATE & RISK GUARD
// ═══════════════════════════════════════════════════════════════════════════════
//
// Admission control for one 15-minute round. This is the GATEKEEPER - no
// trade fires without passing it. All counters and spend reset when the
// resolver detects a new window on either venue.
//
// ═══════════════════════════════════════════════════════════════════════════════

// spendKey identifies a budget bucket
type spendKey struct {
	Venue types.Venue
	Side  types.Side
}

// Session tracks per-round execution state
type Session struct {
	mu sync.Mutex

	maxTrades int
	cooldown  time.Duration
	budgets   map[types.Venue]decimal.Decimal
	lowWater  decimal.Decimal

	tradesExecuted int
	pendingTrade   bool
	lastTradeTime  time.Time
	spent          map[spendKey]decimal.Decimal
	lowBalanceSent map[types.Venue]bool
}

// New creates a session guard
func New(maxTrades int, cooldown time.Duration, budgets map[types.Venue]decimal.Decimal, lowWater decimal.Decimal) *Session {
	return &Session{
		maxTrades:      maxTrades,
		cooldown:       cooldown,
		budgets:        budgets,
		lowWater:       lowWater,
		spent:          make(map[spendKey]decimal.Decimal),
		lowBalanceSent: make(map[types.Venue]bool),
	}
}

// TryBegin attempts to claim the execution slot. Returns a reject reason
// when a trade is pending, the cooldown hasn't elapsed, or the round's
// trade limit is spent. On success the pending flag is held until End.
func (s *Session) TryBegin() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingTrade {
		return false, "execution already in flight"
	}
	if !s.lastTradeTime.IsZero() && time.Since(s.lastTradeTime) < s.cooldown {
		return false, "cooldown active"
	}
	if s.tradesExecuted >= s.maxTrades {
		return false, fmt.Sprintf("round trade limit reached (%d)", s.maxTrades)
	}

	s.pendingTrade = true
	return true, ""
}

// End releases the execution slot and starts the cooldown. Every attempt
// counts against the round limit, successful or not - retry storms against
// the same stale quote are worse than a skipped round.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingTrade = false
	s.lastTradeTime = time.Now()
	s.tradesExecuted++
}

// Abort releases the execution slot without counting a trade or starting
// the cooldown. Used when the engine rejects the opportunity before any
// order was submitted.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingTrade = false
}

// Remaining returns the unspent budget for (venue, side)
func (s *Session) Remaining(venue types.Venue, side types.Side) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets[venue].Sub(s.spent[spendKey{venue, side}])
}

// RecordSpend books an executed leg's cost against its budget bucket
func (s *Session) RecordSpend(venue types.Venue, side types.Side, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := spendKey{venue, side}
	s.spent[key] = s.spent[key].Add(amount)
}

// TradesExecuted returns the round's attempt count
func (s *Session) TradesExecuted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tradesExecuted
}

// Pending reports whether an execution is in flight
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingTrade
}

// ShouldAlertLowBalance fires once per round per venue when the remaining
// budget first drops under the low-water mark. The flag clears on rollover.
func (s *Session) ShouldAlertLowBalance(venue types.Venue) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lowBalanceSent[venue] {
		return false
	}

	worst := s.budgets[venue]
	for _, side := range []types.Side{types.SideUp, types.SideDown} {
		remaining := s.budgets[venue].Sub(s.spent[spendKey{venue, side}])
		if remaining.LessThan(worst) {
			worst = remaining
		}
	}
	if worst.GreaterThanOrEqual(s.lowWater) {
		return false
	}

	s.lowBalanceSent[venue] = true
	return true
}

// Rollover resets all per-round state for a fresh window
func (s *Session) Rollover() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tradesExecuted = 0
	s.pendingTrade = false
	s.lastTradeTime = time.Time{}
	s.spent = make(map[spendKey]decimal.Decimal)
	s.lowBalanceSent = make(map[types.Venue]bool)

	log.Info().Msg("🔄 New round - session counters reset")
}
