package copytrade

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/exec"
	"github.com/web3guy0/crossarb/venue"
)

// ═══════════════════════════════════════════════════════════════════════════════
// COPY-TRADE FOLLOWER
// ═══════════════════════════════════════════════════════════════════════════════
//
// Polls a trader's public activity feed and replays their buys at a scaled
// size. Raw fills arrive in bursts of many sub-$1 pieces, so each poll
// cycle is aggregated per (asset, side) into one synthetic order with a
// volume-weighted average price before scaling and the venue's order
// floors are applied. Fills already seen are skipped by transaction hash.
//
// ═══════════════════════════════════════════════════════════════════════════════

const (
	defaultActivityURL = "https://data-api.polymarket.com"
	activityPageSize   = 50
)

// CopyStore persists replayed orders. Optional.
type CopyStore interface {
	SaveCopyOrder(trader, asset, side string, totalSize, avgPrice, scaled decimal.Decimal, status string) error
}

// activityItem is one fill from the data API
type activityItem struct {
	TxHash    string  `json:"transactionHash"`
	Type      string  `json:"type"`
	Side      string  `json:"side"`
	Asset     string  `json:"asset"`
	Size      float64 `json:"size"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// Follower mirrors one trader's activity onto our own account
type Follower struct {
	trader     string
	multiplier decimal.Decimal
	pollEvery  time.Duration
	client     venue.TradingClient
	store      CopyStore

	baseURL string
	http    *http.Client

	mu       sync.Mutex
	seen     map[string]bool
	lastSeen int64

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewFollower creates a follower for one trader address
func NewFollower(trader string, multiplier decimal.Decimal, pollEvery time.Duration, client venue.TradingClient) *Follower {
	return &Follower{
		trader:     trader,
		multiplier: multiplier,
		pollEvery:  pollEvery,
		client:     client,
		baseURL:    defaultActivityURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		seen:       make(map[string]bool),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// SetStore attaches optional persistence
func (f *Follower) SetStore(s CopyStore) { f.store = s }

// Start begins the polling loop
func (f *Follower) Start() {
	log.Info().
		Str("trader", f.trader).
		Str("multiplier", f.multiplier.String()).
		Msg("👥 Copy-trade follower started")
	go f.pollLoop()
}

// Stop terminates the polling loop
func (f *Follower) Stop() {
	close(f.stopCh)
	<-f.doneCh
}

func (f *Follower) pollLoop() {
	defer close(f.doneCh)

	// Prime the seen-set so we only copy activity from startup onwards
	if items, err := f.fetchActivity(); err == nil {
		f.mu.Lock()
		for _, it := range items {
			f.seen[it.TxHash] = true
			if it.Timestamp > f.lastSeen {
				f.lastSeen = it.Timestamp
			}
		}
		f.mu.Unlock()
	}

	ticker := time.NewTicker(f.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-f.stopCh:
			return
		case <-ticker.C:
			f.pollOnce()
		}
	}
}

// pollOnce fetches new fills, aggregates and replays them
func (f *Follower) pollOnce() {
	items, err := f.fetchActivity()
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Activity fetch failed")
		return
	}

	fresh := f.filterNew(items)
	if len(fresh) == 0 {
		return
	}

	orders := exec.Aggregate(fresh)
	log.Info().
		Int("fills", len(fresh)).
		Int("orders", len(orders)).
		Msg("👥 New trader activity")

	for _, order := range orders {
		f.replay(order)
	}
}

// filterNew converts unseen BUY fills into RawTrades
func (f *Follower) filterNew(items []activityItem) []exec.RawTrade {
	f.mu.Lock()
	defer f.mu.Unlock()

	var fresh []exec.RawTrade
	for _, it := range items {
		if it.Type != "TRADE" || it.Side != "BUY" {
			continue
		}
		if f.seen[it.TxHash] {
			continue
		}
		f.seen[it.TxHash] = true
		if it.Timestamp > f.lastSeen {
			f.lastSeen = it.Timestamp
		}
		fresh = append(fresh, exec.RawTrade{
			Asset: it.Asset,
			Side:  it.Side,
			Size:  decimal.NewFromFloat(it.Size),
			Price: decimal.NewFromFloat(it.Price),
		})
	}
	return fresh
}

// replay scales one aggregated order and submits it through our client
func (f *Follower) replay(order exec.AggregatedOrder) {
	scaled := order.TotalSize.Mul(f.multiplier)

	floor := exec.MinSize([]exec.LegFloor{{
		Price:     order.AvgPrice,
		MinShares: f.client.MinShares(),
		MinValue:  f.client.MinOrderValue(),
	}})
	if floor.IsZero() {
		log.Warn().Str("asset", order.Asset).Msg("⚠️ Skipping copy order with no usable price")
		return
	}
	if scaled.LessThan(floor) {
		scaled = floor
	}
	scaled = scaled.Ceil()

	result := f.client.PlaceLimitOrder(order.Asset, order.AvgPrice, scaled)

	status := "FILLED"
	if !result.Success {
		status = "REJECTED"
		log.Error().
			Str("asset", order.Asset).
			Str("error", result.Error).
			Msg("❌ Copy order rejected")
	} else {
		log.Info().
			Str("asset", order.Asset).
			Str("size", scaled.String()).
			Str("price", order.AvgPrice.StringFixed(4)).
			Str("order_id", result.OrderID).
			Msg("✅ Copy order placed")
	}

	if f.store != nil {
		if err := f.store.SaveCopyOrder(f.trader, order.Asset, order.Side,
			order.TotalSize, order.AvgPrice, scaled, status); err != nil {
			log.Warn().Err(err).Msg("⚠️ Failed to persist copy order")
		}
	}
}

// fetchActivity pulls the trader's most recent fills
func (f *Follower) fetchActivity() ([]activityItem, error) {
	q := url.Values{}
	q.Set("user", f.trader)
	q.Set("limit", fmt.Sprintf("%d", activityPageSize))

	resp, err := f.http.Get(f.baseURL + "/activity?" + q.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("activity endpoint returned %d", resp.StatusCode)
	}

	var items []activityItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}
