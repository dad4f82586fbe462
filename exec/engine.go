package exec

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/arb"
	"github.com/web3guy0/crossarb/session"
	"github.com/web3guy0/crossarb/types"
	"github.com/web3guy0/crossarb/venue"
)

// ═══════════════════════════════════════════════════════════════════════════════
// EXECUTION ENGINE
// ═══════════════════════════════════════════════════════════════════════════════
//
// Turns one chosen opportunity into submitted orders:
//   size → budget check → leg 1 → leg 2 → bookkeeping
//
// Legs go out sequentially, never concurrently - each venue client owns
// auth/nonce state that must not interleave. Once leg 1 is attempted both
// legs are always attempted; a one-leg fill leaves naked directional
// exposure that is surfaced loudly, never unwound automatically.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Notifier is a fire-and-forget alert sink
type Notifier interface {
	Send(message string) bool
}

// TradeStore persists executed trades
type TradeStore interface {
	SaveTrade(types.TradeRecord) error
	SaveOrder(types.Order) error
}

// Result reports the outcome of one execution pass
type Result struct {
	Executed bool
	Partial  bool
	Reason   string
	Orders   []types.Order
}

// Engine submits orders through the per-venue trading clients
type Engine struct {
	mu sync.Mutex

	clients  map[types.Venue]venue.TradingClient
	sess     *session.Session
	notifier Notifier
	store    TradeStore

	// Resting orders from this round, cancelled on rollover or desync
	openOrders []types.Order
}

// NewEngine creates an execution engine over the venue clients
func NewEngine(clients map[types.Venue]venue.TradingClient, sess *session.Session) *Engine {
	return &Engine{
		clients: clients,
		sess:    sess,
	}
}

// SetNotifier wires the alert sink
func (e *Engine) SetNotifier(n Notifier) { e.notifier = n }

// SetStore wires trade persistence
func (e *Engine) SetStore(s TradeStore) { e.store = s }

// Execute runs one opportunity through sizing, budget checks and
// submission. Serialized: a second call while one is in flight is
// rejected by the session guard, not queued.
func (e *Engine) Execute(opp *arb.Opportunity) Result {
	ok, reason := e.sess.TryBegin()
	if !ok {
		return Result{Reason: reason}
	}

	// Sizing across every leg's floors
	floors := make([]LegFloor, 0, len(opp.Legs))
	for _, leg := range opp.Legs {
		client := e.clients[leg.Venue]
		floors = append(floors, LegFloor{
			Price:     leg.Price,
			MinShares: client.MinShares(),
			MinValue:  client.MinOrderValue(),
		})
	}
	size := MinSize(floors)
	if !size.IsPositive() {
		e.sess.Abort()
		return Result{Reason: "no usable size for legs"}
	}

	// Budget check before anything is submitted. One short leg aborts the
	// whole opportunity - half a spread is a directional bet, not an arb.
	for _, leg := range opp.Legs {
		cost := legCost(size, leg.Price)
		remaining := e.sess.Remaining(leg.Venue, leg.Side)
		if cost.GreaterThan(remaining) {
			e.sess.Abort()
			log.Warn().
				Str("venue", string(leg.Venue)).
				Str("side", string(leg.Side)).
				Str("cost", cost.StringFixed(2)).
				Str("remaining", remaining.StringFixed(2)).
				Msg("💸 Insufficient balance for leg, skipping opportunity")
			return Result{Reason: "insufficient balance"}
		}
	}

	// Submit each leg in order; all legs are attempted once the first is
	result := Result{Executed: true}
	for _, leg := range opp.Legs {
		order := e.submitLeg(leg, size)
		result.Orders = append(result.Orders, order)
	}

	// Cooldown starts and the round counter ticks no matter what happened
	e.sess.End()

	e.reconcile(opp, size, &result)
	return result
}

func (e *Engine) submitLeg(leg arb.Leg, size decimal.Decimal) types.Order {
	client := e.clients[leg.Venue]

	order := types.Order{
		Venue:   leg.Venue,
		Side:    leg.Side,
		TokenID: leg.TokenID,
		Price:   leg.Price,
		Size:    size,
		Status:  types.OrderSubmitted,
	}

	res := client.PlaceLimitOrder(leg.TokenID, leg.Price, size)
	if res.Success {
		order.ID = res.OrderID
		order.Status = types.OrderFilled
		e.sess.RecordSpend(leg.Venue, leg.Side, legCost(size, leg.Price))

		e.mu.Lock()
		e.openOrders = append(e.openOrders, order)
		e.mu.Unlock()
	} else {
		order.Status = types.OrderRejected
		order.Error = res.Error
		log.Error().
			Str("venue", string(leg.Venue)).
			Str("side", string(leg.Side)).
			Str("error", res.Error).
			Msg("❌ Leg submission failed")
	}

	return order
}

// reconcile books the round, flags partial fills and fires alerts
func (e *Engine) reconcile(opp *arb.Opportunity, size decimal.Decimal, result *Result) {
	filled := 0
	for _, o := range result.Orders {
		if o.Status == types.OrderFilled {
			filled++
		}
	}

	switch {
	case filled == len(result.Orders):
		log.Info().
			Str("kind", string(opp.Kind)).
			Str("profit", opp.ProfitCents().StringFixed(1)+"¢").
			Str("size", size.StringFixed(0)).
			Msg("✅ All legs filled")
	case filled == 0:
		result.Executed = false
		result.Reason = "all legs rejected"
	default:
		// Naked exposure: one leg filled, the hedge didn't. No automatic
		// unwind - the operator decides.
		result.Partial = true
		msg := e.partialMessage(result.Orders)
		log.Error().Msg("🚨 PARTIAL FILL - naked directional exposure: " + msg)
		if e.notifier != nil {
			e.notifier.Send("🚨 PARTIAL FILL\n" + msg)
		}
	}

	// One-shot low-balance alerts per venue
	for _, leg := range opp.Legs {
		if e.sess.ShouldAlertLowBalance(leg.Venue) && e.notifier != nil {
			e.notifier.Send(fmt.Sprintf("⚠️ Low budget remaining on %s this round", leg.Venue))
		}
	}

	if e.store != nil && result.Executed {
		record := types.TradeRecord{
			ID:         fmt.Sprintf("arb_%d", time.Now().UnixNano()),
			Kind:       string(opp.Kind),
			Legs:       len(result.Orders),
			UnitProfit: opp.UnitProfit,
			Size:       size,
			Partial:    result.Partial,
			ExecutedAt: time.Now(),
		}
		if err := e.store.SaveTrade(record); err != nil {
			log.Warn().Err(err).Msg("Trade persistence failed")
		}
		for _, o := range result.Orders {
			if err := e.store.SaveOrder(o); err != nil {
				log.Warn().Err(err).Msg("Order persistence failed")
			}
		}
	}
}

func (e *Engine) partialMessage(orders []types.Order) string {
	var sb strings.Builder
	for _, o := range orders {
		status := "FILLED"
		if o.Status != types.OrderFilled {
			status = "FAILED: " + o.Error
		}
		sb.WriteString(fmt.Sprintf("%s %s @ %s x%s → %s\n",
			o.Venue, o.Side, o.Price.StringFixed(2), o.Size.StringFixed(0), status))
	}
	return sb.String()
}

// CancelAll cancels every resting order from this round, on both venues.
// Called on window rollover and whenever the venues fall out of sync.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	orders := e.openOrders
	e.openOrders = nil
	e.mu.Unlock()

	for _, o := range orders {
		if o.ID == "" {
			continue
		}
		if !e.clients[o.Venue].CancelOrder(o.ID) {
			log.Warn().
				Str("venue", string(o.Venue)).
				Str("order_id", o.ID).
				Msg("Cancel failed")
		}
	}

	if len(orders) > 0 {
		log.Info().Int("orders", len(orders)).Msg("🧹 Resting orders cancelled")
	}
}
