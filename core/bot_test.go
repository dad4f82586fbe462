package core

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/crossarb/arb"
	"github.com/web3guy0/crossarb/exec"
	"github.com/web3guy0/crossarb/feeds"
	"github.com/web3guy0/crossarb/market"
	"github.com/web3guy0/crossarb/session"
	"github.com/web3guy0/crossarb/types"
	"github.com/web3guy0/crossarb/venue"
)

// stubFinder serves a swappable fixed window
type stubFinder struct {
	mu     sync.Mutex
	window *types.MarketWindow
}

func (s *stubFinder) Find(now time.Time) (*types.MarketWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window == nil {
		return nil, market.ErrNoWindow
	}
	return s.window, nil
}

func (s *stubFinder) set(w *types.MarketWindow) {
	s.mu.Lock()
	s.window = w
	s.mu.Unlock()
}

// recordClient counts placements and cancels; read from the test
// goroutine while the resolver goroutine may be writing
type recordClient struct {
	mu        sync.Mutex
	venueName types.Venue
	placed    int
	cancelled int
}

func (c *recordClient) Venue() types.Venue { return c.venueName }
func (c *recordClient) IsConfigured() bool { return true }

func (c *recordClient) GetActiveMarket() (*types.MarketWindow, error) { return nil, nil }

func (c *recordClient) GetMarketDetails(id string) (*types.MarketWindow, error) {
	return nil, nil
}

func (c *recordClient) MinShares() decimal.Decimal     { return decimal.Zero }
func (c *recordClient) MinOrderValue() decimal.Decimal { return decimal.NewFromInt(1) }

func (c *recordClient) GetBalance() (decimal.Decimal, error) {
	return decimal.NewFromInt(100), nil
}

func (c *recordClient) PlaceLimitOrder(tokenID string, price, size decimal.Decimal) venue.OrderResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.placed++
	return venue.OrderResult{Success: true, OrderID: fmt.Sprintf("%s_%d", c.venueName, c.placed)}
}

func (c *recordClient) CancelOrder(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled++
	return true
}

func (c *recordClient) placedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.placed
}

func (c *recordClient) cancelledCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Send(msg string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return true
}

func (n *fakeNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func window(v types.Venue, title string) *types.MarketWindow {
	return &types.MarketWindow{
		Venue: v, ID: string(v) + "_" + title, Title: title,
		UpTokenID: string(v) + "_up", DownTokenID: string(v) + "_down",
	}
}

type botFixture struct {
	bot      *Bot
	board    *feeds.Board
	pm, pf   *recordClient
	pfFinder *stubFinder
	notifier *fakeNotifier
}

// buildBot wires a full pipeline against stub finders and recording clients
func buildBot(t *testing.T, pmTitle, pfTitle string) *botFixture {
	t.Helper()

	board := feeds.NewBoard()
	pfFinder := &stubFinder{window: window(types.VenuePredictFun, pfTitle)}
	resolver := market.NewResolver(
		&stubFinder{window: window(types.VenuePolymarket, pmTitle)},
		pfFinder,
		25*time.Millisecond,
	)
	calc := arb.NewCalculator(decimal.NewFromInt(2))
	sess := session.New(3, 0, map[types.Venue]decimal.Decimal{
		types.VenuePolymarket: decimal.NewFromInt(50),
		types.VenuePredictFun: decimal.NewFromInt(50),
	}, decimal.NewFromInt(10))

	pm := &recordClient{venueName: types.VenuePolymarket}
	pf := &recordClient{venueName: types.VenuePredictFun}
	engine := exec.NewEngine(map[types.Venue]venue.TradingClient{
		types.VenuePolymarket: pm,
		types.VenuePredictFun: pf,
	}, sess)

	bot := NewBot(board, resolver, calc, engine, sess, map[types.Venue]Feed{}, true)
	notifier := &fakeNotifier{}
	bot.SetNotifier(notifier)
	engine.SetNotifier(notifier)

	resolver.Start()
	t.Cleanup(resolver.Stop)
	return &botFixture{bot: bot, board: board, pm: pm, pf: pf, pfFinder: pfFinder, notifier: notifier}
}

// waitInSync blocks until both venues resolve to the same window and the
// resolver's rollover callbacks have drained
func (fx *botFixture) waitInSync(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		return fx.bot.resolver.InSync()
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
}

func arbAsk(v string) *decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return &d
}

// postSpread writes a 5¢ cross spread to the board; the second write
// triggers an evaluation pass seeing both legs
func (fx *botFixture) postSpread() {
	fx.board.SetQuote(types.VenuePolymarket, types.SideUp, "pm_up", nil, arbAsk("0.50"))
	fx.board.SetQuote(types.VenuePredictFun, types.SideDown, "pf_down", nil, arbAsk("0.45"))
}

func TestBot_ExecutesWhenInSync(t *testing.T) {
	fx := buildBot(t,
		"Bitcoin Up or Down - 9:15AM-9:30AM ET",
		"BTC Up/Down 9:15-9:30AM ET",
	)
	fx.waitInSync(t)

	fx.postSpread()

	assert.Equal(t, 1, fx.pm.placedCount())
	assert.Equal(t, 1, fx.pf.placedCount())
	assert.Equal(t, 1, fx.bot.sess.TradesExecuted())
}

func TestBot_BlocksExecutionWhenOutOfSync(t *testing.T) {
	fx := buildBot(t,
		"Bitcoin Up or Down - 9:15AM-9:30AM ET",
		"BTC Up/Down 9:30-9:45AM ET",
	)

	// Give the resolver its initial pass; venues resolve to different windows
	require.Eventually(t, func() bool {
		return fx.bot.resolver.Window(types.VenuePolymarket) != nil &&
			fx.bot.resolver.Window(types.VenuePredictFun) != nil
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.False(t, fx.bot.resolver.InSync())

	fx.postSpread()

	// The spread exists on the board but nothing may trade against it
	assert.Equal(t, 0, fx.pm.placedCount())
	assert.Equal(t, 0, fx.pf.placedCount())
	assert.Equal(t, 0, fx.bot.sess.TradesExecuted())
}

func TestBot_DesyncCancelsRestingOrders(t *testing.T) {
	fx := buildBot(t,
		"Bitcoin Up or Down - 9:15AM-9:30AM ET",
		"BTC Up/Down 9:15-9:30AM ET",
	)
	fx.waitInSync(t)

	fx.postSpread()
	require.Equal(t, 1, fx.pm.placedCount())
	require.Equal(t, 1, fx.pf.placedCount())

	// predict.fun mints the next window while Polymarket still shows the
	// old one: the resting orders on BOTH venues must get a cancel call
	fx.pfFinder.set(window(types.VenuePredictFun, "BTC Up/Down 9:30-9:45AM ET"))

	require.Eventually(t, func() bool {
		return !fx.bot.resolver.InSync()
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return fx.pm.cancelledCount() == 1 && fx.pf.cancelledCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A quote arriving while desynced must not trade, and the transition
	// must be surfaced to the operator
	fx.postSpread()
	assert.Equal(t, 1, fx.pm.placedCount())
	assert.Equal(t, 1, fx.pf.placedCount())

	var alerted bool
	for _, msg := range fx.notifier.all() {
		if strings.Contains(msg, "out of sync") {
			alerted = true
		}
	}
	assert.True(t, alerted, "expected an out-of-sync alert")
}

func TestBot_PauseBlocksExecution(t *testing.T) {
	fx := buildBot(t,
		"Bitcoin Up or Down - 9:15AM-9:30AM ET",
		"BTC Up/Down 9:15-9:30AM ET",
	)
	fx.waitInSync(t)

	fx.bot.Pause()
	fx.postSpread()
	assert.Equal(t, 0, fx.pm.placedCount())

	fx.bot.Resume()
	fx.board.SetQuote(types.VenuePredictFun, types.SideDown, "pf_down", nil, arbAsk("0.45"))
	assert.Equal(t, 1, fx.pm.placedCount())
}

func TestBot_StatusText(t *testing.T) {
	fx := buildBot(t,
		"Bitcoin Up or Down - 9:15AM-9:30AM ET",
		"BTC Up/Down 9:15-9:30AM ET",
	)

	text := fx.bot.StatusText()
	assert.Contains(t, text, "Trading: active")
	assert.Contains(t, text, "Trades this round: 0")
}
