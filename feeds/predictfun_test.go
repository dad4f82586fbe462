package feeds

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictFun_BookUpdateFrame(t *testing.T) {
	board := NewBoard()
	feed := NewPredictFunFeed("", board)
	feed.SetTokens("pf_up", "pf_down")

	feed.processMessage([]byte(`{
		"channel": "orderbook",
		"data": {"tokenId":"pf_down","bestBid":"0.44","bestAsk":"0.46"}
	}`))

	snap := board.Snapshot()
	require.True(t, snap.PfDown.HasBid())
	assert.Equal(t, "0.44", snap.PfDown.BestBid.String())
	assert.Equal(t, "0.46", snap.PfDown.BestAsk.String())
	assert.False(t, snap.PfUp.HasBid())
}

func TestPredictFun_EmptyBookSide(t *testing.T) {
	board := NewBoard()
	feed := NewPredictFunFeed("", board)
	feed.SetTokens("pf_up", "pf_down")

	// No ask quoted: slot stays unknown on that side
	feed.processMessage([]byte(`{
		"channel": "orderbook",
		"data": {"tokenId":"pf_up","bestBid":"0.44","bestAsk":""}
	}`))

	snap := board.Snapshot()
	assert.True(t, snap.PfUp.HasBid())
	assert.False(t, snap.PfUp.HasAsk())
}

func TestPredictFun_MalformedFrameDropped(t *testing.T) {
	board := NewBoard()
	feed := NewPredictFunFeed("", board)
	feed.SetTokens("pf_up", "pf_down")

	feed.processMessage([]byte(`garbage`))
	feed.processMessage([]byte(`{"channel":"orderbook"}`))
	feed.processMessage([]byte(`{"channel":"trades","data":{"tokenId":"pf_up"}}`))
	// Ping with no live connection must not panic
	feed.processMessage([]byte(`{"op":"ping","data":{"ts":123}}`))

	snap := board.Snapshot()
	assert.False(t, snap.PfUp.HasBid())
	assert.False(t, snap.PfDown.HasBid())
}

// TestPredictFun_PingEchoedVerbatim runs the feed against a local WS server
// and checks the heartbeat echo carries the exact original payload.
func TestPredictFun_PingEchoedVerbatim(t *testing.T) {
	ping := `{"op":"ping","data":{"nonce":"abc123"}}`
	echoed := make(chan string, 1)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()

		// Drain the subscribe message, then ping
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
		if err := c.WriteMessage(websocket.TextMessage, []byte(ping)); err != nil {
			return
		}
		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}
		echoed <- string(msg)
	}))
	defer srv.Close()

	board := NewBoard()
	feed := NewPredictFunFeed("ws"+strings.TrimPrefix(srv.URL, "http"), board)
	feed.SetTokens("pf_up", "pf_down")
	feed.Start()
	defer feed.Stop()

	select {
	case got := <-echoed:
		assert.Equal(t, ping, got)
	case <-time.After(3 * time.Second):
		t.Fatal("ping was not echoed")
	}
}

// TestPredictFun_SubscribesOnConnect checks the subscription frame sent
// right after dialing names both window tokens.
func TestPredictFun_SubscribesOnConnect(t *testing.T) {
	subscribed := make(chan []byte, 1)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}
		subscribed <- msg
	}))
	defer srv.Close()

	board := NewBoard()
	feed := NewPredictFunFeed("ws"+strings.TrimPrefix(srv.URL, "http"), board)
	feed.SetTokens("pf_up", "pf_down")
	feed.Start()
	defer feed.Stop()

	select {
	case msg := <-subscribed:
		var sub struct {
			Op      string   `json:"op"`
			Channel string   `json:"channel"`
			Tokens  []string `json:"tokens"`
		}
		require.NoError(t, json.Unmarshal(msg, &sub))
		assert.Equal(t, "subscribe", sub.Op)
		assert.Equal(t, "orderbook", sub.Channel)
		assert.Equal(t, []string{"pf_up", "pf_down"}, sub.Tokens)
	case <-time.After(3 * time.Second):
		t.Fatal("no subscription frame received")
	}
}
