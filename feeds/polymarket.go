package feeds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// POLYMARKET WEBSOCKET FEED
// ═══════════════════════════════════════════════════════════════════════════════
//
// Subscribes to the CLOB market channel for both outcome tokens of the
// active window. The server sends an initial book snapshot as a JSON array,
// then incremental price_change events carrying best_bid/best_ask.
//
// Reconnect policy: fixed 5s delay, retry forever. This is a long-running
// supervised monitor; a growing backoff would only delay recovery.
//
// ═══════════════════════════════════════════════════════════════════════════════

const reconnectDelay = 5 * time.Second

// pmBookSnapshot is the initial order book snapshot
type pmBookSnapshot struct {
	EventType string `json:"event_type"`
	AssetID   string `json:"asset_id"`
	Bids      []struct {
		Price string `json:"price"`
		Size  string `json:"size"`
	} `json:"bids"`
	Asks []struct {
		Price string `json:"price"`
		Size  string `json:"size"`
	} `json:"asks"`
}

// pmPriceChange is a real-time top-of-book update
type pmPriceChange struct {
	EventType    string `json:"event_type"`
	PriceChanges []struct {
		AssetID string `json:"asset_id"`
		BestBid string `json:"best_bid"`
		BestAsk string `json:"best_ask"`
	} `json:"price_changes"`
}

// PolymarketFeed maintains live quotes for one window's token pair
type PolymarketFeed struct {
	mu        sync.RWMutex
	wsURL     string
	conn      *websocket.Conn
	connected bool
	running   bool
	stopCh    chan struct{}

	board     *Board
	upToken   string
	downToken string
}

// NewPolymarketFeed creates a feed writing into the shared board
func NewPolymarketFeed(wsURL string, board *Board) *PolymarketFeed {
	return &PolymarketFeed{
		wsURL:  wsURL,
		board:  board,
		stopCh: make(chan struct{}),
	}
}

// Start connects and begins processing
func (f *PolymarketFeed) Start() {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return
	}
	f.running = true
	f.mu.Unlock()

	go f.connectionLoop()
	log.Info().Msg("📡 Polymarket feed started")
}

// Stop closes the connection
func (f *PolymarketFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return
	}
	f.running = false
	close(f.stopCh)

	if f.conn != nil {
		f.conn.Close()
	}
	log.Info().Msg("Polymarket feed stopped")
}

// SetTokens switches the subscription to a new window's token pair.
// Drops the current connection; the connection loop redials and
// subscribes with the new tokens.
func (f *PolymarketFeed) SetTokens(upToken, downToken string) {
	f.mu.Lock()
	changed := f.upToken != upToken || f.downToken != downToken
	f.upToken = upToken
	f.downToken = downToken
	conn := f.conn
	f.mu.Unlock()

	if changed && conn != nil {
		conn.Close()
	}
}

// IsConnected returns connection status
func (f *PolymarketFeed) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

func (f *PolymarketFeed) connectionLoop() {
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		if err := f.connect(); err != nil {
			log.Error().Err(err).Msg("Polymarket WS dial failed, retrying...")
			time.Sleep(reconnectDelay)
			continue
		}

		f.readLoop()

		f.mu.Lock()
		f.connected = false
		f.mu.Unlock()
		time.Sleep(reconnectDelay)
	}
}

func (f *PolymarketFeed) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL, nil)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.conn = conn
	f.connected = true
	up, down := f.upToken, f.downToken
	f.mu.Unlock()

	log.Info().Msg("🔌 Polymarket WebSocket connected")

	if up != "" && down != "" {
		msg := map[string]interface{}{
			"type":       "market",
			"assets_ids": []string{up, down},
		}
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			return err
		}
		log.Debug().Msg("📡 Subscribed to window tokens")
	}

	return nil
}

func (f *PolymarketFeed) readLoop() {
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		f.mu.RLock()
		conn := f.conn
		f.mu.RUnlock()
		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warn().Err(err).Msg("Polymarket WS read error, reconnecting in 5s")
			return
		}

		f.processMessage(message)
	}
}

// processMessage parses a raw frame and updates the board. Malformed or
// irrelevant frames are dropped silently; the feed must never die on input.
func (f *PolymarketFeed) processMessage(data []byte) {
	// Initial subscription response is an array of book snapshots
	var snapshots []pmBookSnapshot
	if err := json.Unmarshal(data, &snapshots); err == nil && len(snapshots) > 0 {
		for _, snap := range snapshots {
			f.applySnapshot(snap)
		}
		return
	}

	var pc pmPriceChange
	if err := json.Unmarshal(data, &pc); err == nil && pc.EventType == "price_change" {
		f.applyPriceChange(pc)
	}
}

func (f *PolymarketFeed) applySnapshot(snap pmBookSnapshot) {
	side, ok := f.sideFor(snap.AssetID)
	if !ok {
		return
	}

	var bid, ask *decimal.Decimal
	if len(snap.Bids) > 0 {
		// Bids are sorted ascending; best bid is the last entry
		if d, err := decimal.NewFromString(snap.Bids[len(snap.Bids)-1].Price); err == nil {
			bid = &d
		}
	}
	if len(snap.Asks) > 0 {
		// Asks are sorted descending; best ask is the last entry
		if d, err := decimal.NewFromString(snap.Asks[len(snap.Asks)-1].Price); err == nil {
			ask = &d
		}
	}

	f.board.SetQuote(types.VenuePolymarket, side, snap.AssetID, bid, ask)
}

func (f *PolymarketFeed) applyPriceChange(pc pmPriceChange) {
	for _, change := range pc.PriceChanges {
		side, ok := f.sideFor(change.AssetID)
		if !ok {
			continue
		}

		var bid, ask *decimal.Decimal
		if d, err := decimal.NewFromString(change.BestBid); err == nil && d.IsPositive() {
			bid = &d
		}
		if d, err := decimal.NewFromString(change.BestAsk); err == nil && d.IsPositive() {
			ask = &d
		}

		f.board.SetQuote(types.VenuePolymarket, side, change.AssetID, bid, ask)
	}
}

func (f *PolymarketFeed) sideFor(tokenID string) (types.Side, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	switch tokenID {
	case f.upToken:
		return types.SideUp, f.upToken != ""
	case f.downToken:
		return types.SideDown, f.downToken != ""
	default:
		return "", false
	}
}
