package core

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/web3guy0/crossarb/arb"
	"github.com/web3guy0/crossarb/dashboard"
	"github.com/web3guy0/crossarb/exec"
	"github.com/web3guy0/crossarb/feeds"
	"github.com/web3guy0/crossarb/market"
	"github.com/web3guy0/crossarb/session"
	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BOT - Central orchestrator
// ═══════════════════════════════════════════════════════════════════════════════
//
// Flow:
//   Resolver → Feeds → Sync Gate → Calculator → Session → Engine
//
// Quote updates arrive on the feed goroutines, resolver rollovers on the
// timer goroutine. One mutex serializes every pass through the pipeline so
// an execution can never race a window rollover invalidating its quotes.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Feed is the per-venue streaming adapter as seen by the orchestrator
type Feed interface {
	Start()
	Stop()
	SetTokens(upToken, downToken string)
	IsConnected() bool
}

// Bot ties the pipeline together
type Bot struct {
	mu sync.Mutex

	board    *feeds.Board
	resolver *market.Resolver
	calc     *arb.Calculator
	engine   *exec.Engine
	sess     *session.Session
	display  *dashboard.Terminal
	notifier exec.Notifier

	venueFeeds map[types.Venue]Feed

	wasInSync bool
	tradingOn bool
}

// NewBot wires the orchestrator. The board's update callback and the
// resolver's rollover callback are registered here; call Start after.
func NewBot(
	board *feeds.Board,
	resolver *market.Resolver,
	calc *arb.Calculator,
	engine *exec.Engine,
	sess *session.Session,
	venueFeeds map[types.Venue]Feed,
	tradingOn bool,
) *Bot {
	b := &Bot{
		board:      board,
		resolver:   resolver,
		calc:       calc,
		engine:     engine,
		sess:       sess,
		venueFeeds: venueFeeds,
		tradingOn:  tradingOn,
	}

	board.OnUpdate(b.onQuote)
	resolver.OnRollover(b.onRollover)
	return b
}

// SetDisplay wires the terminal dashboard
func (b *Bot) SetDisplay(d *dashboard.Terminal) { b.display = d }

// SetNotifier wires the alert sink for desync warnings
func (b *Bot) SetNotifier(n exec.Notifier) { b.notifier = n }

// Start brings up resolver and feeds
func (b *Bot) Start() {
	b.resolver.Start()
	for _, f := range b.venueFeeds {
		f.Start()
	}
	log.Info().Msg("⚡ Cross-venue arbitrage pipeline started")
}

// Stop tears everything down
func (b *Bot) Stop() {
	for _, f := range b.venueFeeds {
		f.Stop()
	}
	b.resolver.Stop()
}

// Pause disables execution; monitoring continues
func (b *Bot) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tradingOn = false
	log.Info().Msg("⏸️ Trading paused")
}

// Resume re-enables execution
func (b *Bot) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tradingOn = true
	log.Info().Msg("▶️ Trading resumed")
}

// StatusText summarizes the pipeline for the /status command
func (b *Bot) StatusText() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	sync := "❌ OUT OF SYNC"
	if b.resolver.InSync() {
		sync = "✅ in sync"
	}
	mode := "paused"
	if b.tradingOn {
		mode = "active"
	}

	feedLines := ""
	for v, f := range b.venueFeeds {
		state := "🔴 down"
		if f.IsConnected() {
			state = "🟢 up"
		}
		feedLines += fmt.Sprintf("Feed %s: %s\n", v, state)
	}

	return fmt.Sprintf(
		"📊 Status\nTrading: %s\nVenues: %s\nTrades this round: %d\nPending: %v\n%s",
		mode, sync, b.sess.TradesExecuted(), b.sess.Pending(), feedLines,
	)
}

// onQuote runs the full evaluation pass for one quote update.
// Push-driven: every successful feed parse lands here.
func (b *Bot) onQuote(venue types.Venue, side types.Side) {
	b.mu.Lock()
	defer b.mu.Unlock()

	inSync := b.resolver.InSync()
	snap := b.board.Snapshot()
	opps := b.calc.Evaluate(snap)

	if b.display != nil {
		b.display.Update(snap, inSync, opps, b.sess.TradesExecuted())
	}

	if !inSync {
		// Stale quotes from a desynced venue must not be traded against
		if b.wasInSync {
			log.Warn().Msg("⏳ Venues out of sync - trading blocked, cancelling resting orders")
			b.engine.CancelAll()
			if b.notifier != nil {
				b.notifier.Send("⏳ Venues out of sync - trading paused")
			}
		}
		b.wasInSync = false
		return
	}
	if !b.wasInSync {
		log.Info().Msg("✅ Venues back in sync - trading enabled")
	}
	b.wasInSync = true

	if !b.tradingOn {
		return
	}

	best := arb.Best(opps)
	if best == nil {
		return
	}

	result := b.engine.Execute(best)
	if result.Reason != "" {
		log.Debug().Str("reason", result.Reason).Msg("Opportunity not executed")
	}
}

// onRollover handles a venue minting a new 15-minute window
func (b *Bot) onRollover(venue types.Venue, window *types.MarketWindow) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Orders against the previous window are dead weight either way
	b.engine.CancelAll()

	b.board.Clear(venue)
	if f, ok := b.venueFeeds[venue]; ok {
		f.SetTokens(window.UpTokenID, window.DownTokenID)
	}

	b.sess.Rollover()

	log.Info().
		Str("venue", string(venue)).
		Str("label", window.WindowLabel).
		Msg("🪟 Round rolled over")
}
