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
// PREDICT.FUN WEBSOCKET FEED
// ═══════════════════════════════════════════════════════════════════════════════
//
// One connection multiplexes both outcome tokens. The server pushes full
// top-of-book frames on the "orderbook" channel and periodic ping frames
// that must be echoed back verbatim or the server drops the connection
// as idle.
//
// Same reconnect policy as the Polymarket feed: fixed 5s, forever.
//
// ═══════════════════════════════════════════════════════════════════════════════

// pfFrame is the envelope for all predict.fun stream messages
type pfFrame struct {
	Op      string          `json:"op,omitempty"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// pfBookUpdate is a top-of-book update for one outcome token
type pfBookUpdate struct {
	TokenID string `json:"tokenId"`
	BestBid string `json:"bestBid"`
	BestAsk string `json:"bestAsk"`
}

// PredictFunFeed maintains live quotes for one window's token pair
type PredictFunFeed struct {
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

// NewPredictFunFeed creates a feed writing into the shared board
func NewPredictFunFeed(wsURL string, board *Board) *PredictFunFeed {
	return &PredictFunFeed{
		wsURL:  wsURL,
		board:  board,
		stopCh: make(chan struct{}),
	}
}

// Start connects and begins processing
func (f *PredictFunFeed) Start() {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return
	}
	f.running = true
	f.mu.Unlock()

	go f.connectionLoop()
	log.Info().Msg("📡 predict.fun feed started")
}

// Stop closes the connection
func (f *PredictFunFeed) Stop() {
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
	log.Info().Msg("predict.fun feed stopped")
}

// SetTokens switches the subscription to a new window's token pair
func (f *PredictFunFeed) SetTokens(upToken, downToken string) {
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
func (f *PredictFunFeed) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

func (f *PredictFunFeed) connectionLoop() {
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		if err := f.connect(); err != nil {
			log.Error().Err(err).Msg("predict.fun WS dial failed, retrying...")
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

func (f *PredictFunFeed) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL, nil)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.conn = conn
	f.connected = true
	up, down := f.upToken, f.downToken
	f.mu.Unlock()

	log.Info().Msg("🔌 predict.fun WebSocket connected")

	if up != "" && down != "" {
		sub := map[string]interface{}{
			"op":      "subscribe",
			"channel": "orderbook",
			"tokens":  []string{up, down},
		}
		if err := conn.WriteJSON(sub); err != nil {
			conn.Close()
			return err
		}
		log.Debug().Msg("📡 Subscribed to window tokens")
	}

	return nil
}

func (f *PredictFunFeed) readLoop() {
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
			log.Warn().Err(err).Msg("predict.fun WS read error, reconnecting in 5s")
			return
		}

		f.processMessage(message)
	}
}

// processMessage parses one frame. Pings are echoed verbatim; orderbook
// frames update the board; anything else is dropped silently.
func (f *PredictFunFeed) processMessage(data []byte) {
	var frame pfFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return
	}

	// Heartbeat: echo the full payload back unchanged
	if frame.Op == "ping" {
		f.mu.RLock()
		conn := f.conn
		f.mu.RUnlock()
		if conn != nil {
			conn.WriteMessage(websocket.TextMessage, data)
		}
		return
	}

	if frame.Channel != "orderbook" || len(frame.Data) == 0 {
		return
	}

	var update pfBookUpdate
	if err := json.Unmarshal(frame.Data, &update); err != nil {
		return
	}
	f.applyBookUpdate(update)
}

func (f *PredictFunFeed) applyBookUpdate(update pfBookUpdate) {
	side, ok := f.sideFor(update.TokenID)
	if !ok {
		return
	}

	var bid, ask *decimal.Decimal
	if d, err := decimal.NewFromString(update.BestBid); err == nil && d.IsPositive() {
		bid = &d
	}
	if d, err := decimal.NewFromString(update.BestAsk); err == nil && d.IsPositive() {
		ask = &d
	}

	f.board.SetQuote(types.VenuePredictFun, side, update.TokenID, bid, ask)
}

func (f *PredictFunFeed) sideFor(tokenID string) (types.Side, bool) {
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
