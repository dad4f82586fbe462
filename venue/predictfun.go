package venue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/market"
	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PREDICT.FUN TRADING CLIENT
// ═══════════════════════════════════════════════════════════════════════════════
//
// Bearer-token REST client. The token wraps whatever session auth the
// venue hands out; nothing above this file cares.
//
// Floor: $1 notional per order, no share minimum.
//
// ═══════════════════════════════════════════════════════════════════════════════

// PredictFunClient trades on predict.fun
type PredictFunClient struct {
	baseURL    string
	token      string
	dryRun     bool
	httpClient *http.Client
	finder     *market.PredictFunFinder

	minValue decimal.Decimal
}

// PredictFunConfig carries the credentials and endpoints for the client
type PredictFunConfig struct {
	APIURL   string
	Token    string
	DryRun   bool
	MinValue decimal.Decimal
}

// NewPredictFunClient creates the trading client
func NewPredictFunClient(cfg PredictFunConfig) *PredictFunClient {
	mode := "DRY RUN"
	if !cfg.DryRun {
		mode = "LIVE"
	}
	log.Info().Str("mode", mode).Msg("🚀 predict.fun client initialized")

	return &PredictFunClient{
		baseURL:    cfg.APIURL,
		token:      cfg.Token,
		dryRun:     cfg.DryRun,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		finder:     market.NewPredictFunFinder(cfg.APIURL),
		minValue:   cfg.MinValue,
	}
}

// Venue identifies this client
func (c *PredictFunClient) Venue() types.Venue { return types.VenuePredictFun }

// IsConfigured reports whether a session token is loaded
func (c *PredictFunClient) IsConfigured() bool { return c.token != "" }

// MinShares is the venue share floor (none beyond the notional floor)
func (c *PredictFunClient) MinShares() decimal.Decimal { return decimal.Zero }

// MinOrderValue is the venue notional floor
func (c *PredictFunClient) MinOrderValue() decimal.Decimal { return c.minValue }

// GetActiveMarket resolves the venue's current 15m window
func (c *PredictFunClient) GetActiveMarket() (*types.MarketWindow, error) {
	return c.finder.Find(time.Now())
}

// GetMarketDetails fetches details for a known market id
func (c *PredictFunClient) GetMarketDetails(id string) (*types.MarketWindow, error) {
	resp, err := c.get("/v1/markets/" + id)
	if err != nil {
		return nil, err
	}

	var m struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		TickSize string `json:"tickSize"`
		NegRisk  bool   `json:"isNegRisk"`
		CloseAt  string `json:"closeAt"`
		Outcomes []struct {
			Name      string `json:"name"`
			OnChainID string `json:"onChainId"`
		} `json:"outcomes"`
	}
	if err := json.Unmarshal(resp, &m); err != nil {
		return nil, fmt.Errorf("parse market details: %w", err)
	}

	window := &types.MarketWindow{
		Venue:   types.VenuePredictFun,
		ID:      m.ID,
		Title:   m.Title,
		NegRisk: m.NegRisk,
	}
	for _, o := range m.Outcomes {
		switch strings.ToUpper(o.Name) {
		case "UP", "YES":
			window.UpTokenID = o.OnChainID
		case "DOWN", "NO":
			window.DownTokenID = o.OnChainID
		}
	}
	if label, ok := market.ParseWindowLabel(m.Title); ok {
		window.WindowLabel = label.String()
	}
	if d, err := decimal.NewFromString(m.TickSize); err == nil {
		window.TickSize = d
	}
	if m.CloseAt != "" {
		window.EndTime, _ = time.Parse(time.RFC3339, m.CloseAt)
	}

	return window, nil
}

// PlaceLimitOrder submits a BUY limit order
func (c *PredictFunClient) PlaceLimitOrder(tokenID string, price, size decimal.Decimal) OrderResult {
	if c.dryRun {
		orderID := fmt.Sprintf("DRY_%d", time.Now().UnixNano())
		log.Info().
			Str("order_id", orderID).
			Str("price", price.StringFixed(2)).
			Str("size", size.StringFixed(2)).
			Msg("📝 DRY RUN: predict.fun order would be placed")
		return OrderResult{Success: true, OrderID: orderID}
	}

	payload := map[string]interface{}{
		"tokenId": tokenID,
		"side":    "BUY",
		"type":    "LIMIT",
		"price":   price.String(),
		"size":    size.String(),
	}

	resp, err := c.post("/v1/orders", payload)
	if err != nil {
		return OrderResult{Error: err.Error()}
	}

	var result struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return OrderResult{Error: fmt.Sprintf("parse response: %v", err)}
	}
	if result.Error != "" {
		return OrderResult{Error: result.Error}
	}

	log.Info().
		Str("order_id", result.OrderID).
		Str("status", result.Status).
		Msg("✅ predict.fun order placed")

	return OrderResult{Success: true, OrderID: result.OrderID}
}

// CancelOrder cancels a resting order
func (c *PredictFunClient) CancelOrder(orderID string) bool {
	if c.dryRun {
		log.Info().Str("order_id", orderID).Msg("📝 DRY RUN: predict.fun order would be cancelled")
		return true
	}

	if _, err := c.delete("/v1/orders/" + orderID); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("Cancel failed")
		return false
	}
	return true
}

// GetBalance returns the spendable balance
func (c *PredictFunClient) GetBalance() (decimal.Decimal, error) {
	if c.dryRun {
		return decimal.NewFromFloat(100), nil
	}

	resp, err := c.get("/v1/account/balance")
	if err != nil {
		return decimal.Zero, err
	}

	var result struct {
		Available string `json:"available"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return decimal.Zero, err
	}

	balance, _ := decimal.NewFromString(result.Available)
	return balance, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// HTTP HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

func (c *PredictFunClient) get(path string) ([]byte, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req)
	return c.doRequest(req)
}

func (c *PredictFunClient) post(path string, body interface{}) ([]byte, error) {
	jsonBody, _ := json.Marshal(body)
	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)
	return c.doRequest(req)
}

func (c *PredictFunClient) delete(path string) ([]byte, error) {
	req, err := http.NewRequest("DELETE", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req)
	return c.doRequest(req)
}

func (c *PredictFunClient) addHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *PredictFunClient) doRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
