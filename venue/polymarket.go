package venue

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/market"
	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// POLYMARKET TRADING CLIENT
// ═══════════════════════════════════════════════════════════════════════════════
//
// CLOB REST client. L2 auth: API key + HMAC-SHA256 signature over
// timestamp+method+path, wallet key only used to derive the signing
// address and sign order payloads.
//
// Floor: max(5 shares, $1 notional) per order.
//
// ═══════════════════════════════════════════════════════════════════════════════

// PolymarketClient trades on the Polymarket CLOB
type PolymarketClient struct {
	baseURL    string
	privateKey *ecdsa.PrivateKey
	address    string
	apiKey     string
	apiSecret  string
	passphrase string
	dryRun     bool
	httpClient *http.Client
	finder     *market.PolymarketFinder

	minShares decimal.Decimal
	minValue  decimal.Decimal
}

// PolymarketConfig carries the credentials and endpoints for the client
type PolymarketConfig struct {
	CLOBURL    string
	GammaURL   string
	APIKey     string
	APISecret  string
	Passphrase string
	PrivateKey string
	DryRun     bool
	MinShares  decimal.Decimal
	MinValue   decimal.Decimal
}

// NewPolymarketClient creates the trading client
func NewPolymarketClient(cfg PolymarketConfig) (*PolymarketClient, error) {
	c := &PolymarketClient{
		baseURL:    cfg.CLOBURL,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		passphrase: cfg.Passphrase,
		dryRun:     cfg.DryRun,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		finder:     market.NewPolymarketFinder(cfg.GammaURL),
		minShares:  cfg.MinShares,
		minValue:   cfg.MinValue,
	}

	if cfg.PrivateKey != "" {
		pk, err := crypto.HexToECDSA(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		c.privateKey = pk
		c.address = crypto.PubkeyToAddress(pk.PublicKey).Hex()
	}

	mode := "DRY RUN"
	if !cfg.DryRun {
		mode = "LIVE"
	}
	log.Info().
		Str("mode", mode).
		Str("address", c.address).
		Msg("🚀 Polymarket client initialized")

	return c, nil
}

// Venue identifies this client
func (c *PolymarketClient) Venue() types.Venue { return types.VenuePolymarket }

// IsConfigured reports whether live-trading credentials are loaded
func (c *PolymarketClient) IsConfigured() bool {
	return c.privateKey != nil || (c.apiKey != "" && c.apiSecret != "")
}

// MinShares is the venue share floor
func (c *PolymarketClient) MinShares() decimal.Decimal { return c.minShares }

// MinOrderValue is the venue notional floor
func (c *PolymarketClient) MinOrderValue() decimal.Decimal { return c.minValue }

// GetActiveMarket resolves the venue's current 15m window
func (c *PolymarketClient) GetActiveMarket() (*types.MarketWindow, error) {
	return c.finder.Find(time.Now())
}

// GetMarketDetails fetches details for a known condition id
func (c *PolymarketClient) GetMarketDetails(id string) (*types.MarketWindow, error) {
	resp, err := c.get("/markets/" + id)
	if err != nil {
		return nil, err
	}

	var m struct {
		ConditionID string `json:"condition_id"`
		Question    string `json:"question"`
		Tokens      []struct {
			TokenID string `json:"token_id"`
			Outcome string `json:"outcome"`
		} `json:"tokens"`
		MinimumTickSize string `json:"minimum_tick_size"`
		NegRisk         bool   `json:"neg_risk"`
		EndDateISO      string `json:"end_date_iso"`
	}
	if err := json.Unmarshal(resp, &m); err != nil {
		return nil, fmt.Errorf("parse market details: %w", err)
	}

	window := &types.MarketWindow{
		Venue:   types.VenuePolymarket,
		ID:      m.ConditionID,
		Title:   m.Question,
		NegRisk: m.NegRisk,
	}
	for _, t := range m.Tokens {
		switch t.Outcome {
		case "Up", "Yes":
			window.UpTokenID = t.TokenID
		case "Down", "No":
			window.DownTokenID = t.TokenID
		}
	}
	if label, ok := market.ParseWindowLabel(m.Question); ok {
		window.WindowLabel = label.String()
	}
	if d, err := decimal.NewFromString(m.MinimumTickSize); err == nil {
		window.TickSize = d
	}
	if m.EndDateISO != "" {
		window.EndTime, _ = time.Parse(time.RFC3339, m.EndDateISO)
	}

	return window, nil
}

// PlaceLimitOrder submits a signed BUY limit order
func (c *PolymarketClient) PlaceLimitOrder(tokenID string, price, size decimal.Decimal) OrderResult {
	if c.dryRun {
		orderID := fmt.Sprintf("DRY_%d", time.Now().UnixNano())
		log.Info().
			Str("order_id", orderID).
			Str("price", price.StringFixed(2)).
			Str("size", size.StringFixed(2)).
			Msg("📝 DRY RUN: Polymarket order would be placed")
		return OrderResult{Success: true, OrderID: orderID}
	}

	order := map[string]interface{}{
		"tokenID":       tokenID,
		"price":         price.String(),
		"size":          size.String(),
		"side":          "BUY",
		"type":          "GTC",
		"expiration":    time.Now().Add(24 * time.Hour).Unix(),
		"nonce":         time.Now().UnixNano(),
		"feeRateBps":    "0",
		"signatureType": 2,
	}

	signature, err := c.signOrder(order)
	if err != nil {
		return OrderResult{Error: fmt.Sprintf("signing failed: %v", err)}
	}
	order["signature"] = signature

	resp, err := c.post("/order", order)
	if err != nil {
		return OrderResult{Error: err.Error()}
	}

	var result struct {
		OrderID string `json:"orderID"`
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
		Msg("✅ Polymarket order placed")

	return OrderResult{Success: true, OrderID: result.OrderID}
}

// CancelOrder cancels a resting order
func (c *PolymarketClient) CancelOrder(orderID string) bool {
	if c.dryRun {
		log.Info().Str("order_id", orderID).Msg("📝 DRY RUN: Polymarket order would be cancelled")
		return true
	}

	if _, err := c.delete("/order/" + orderID); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("Cancel failed")
		return false
	}
	return true
}

// GetBalance returns the spendable USDC balance
func (c *PolymarketClient) GetBalance() (decimal.Decimal, error) {
	if c.dryRun {
		return decimal.NewFromFloat(100), nil
	}

	resp, err := c.get("/balance")
	if err != nil {
		return decimal.Zero, err
	}

	var result struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return decimal.Zero, err
	}

	balance, _ := decimal.NewFromString(result.Balance)
	return balance, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// HTTP HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

func (c *PolymarketClient) get(path string) ([]byte, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req)
	return c.doRequest(req)
}

func (c *PolymarketClient) post(path string, body interface{}) ([]byte, error) {
	jsonBody, _ := json.Marshal(body)
	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)
	return c.doRequest(req)
}

func (c *PolymarketClient) delete(path string) ([]byte, error) {
	req, err := http.NewRequest("DELETE", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.addHeaders(req)
	return c.doRequest(req)
}

func (c *PolymarketClient) addHeaders(req *http.Request) {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	req.Header.Set("POLY_API_KEY", c.apiKey)
	req.Header.Set("POLY_TIMESTAMP", timestamp)
	req.Header.Set("POLY_PASSPHRASE", c.passphrase)

	if c.apiSecret != "" {
		message := timestamp + req.Method + req.URL.Path
		req.Header.Set("POLY_SIGNATURE", c.hmacSign(message))
	}
}

func (c *PolymarketClient) doRequest(req *http.Request) ([]byte, error) {
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

// ═══════════════════════════════════════════════════════════════════════════════
// SIGNING
// ═══════════════════════════════════════════════════════════════════════════════

func (c *PolymarketClient) signOrder(order map[string]interface{}) (string, error) {
	if c.privateKey == nil {
		return "", fmt.Errorf("private key not loaded")
	}

	orderBytes, _ := json.Marshal(order)
	hash := crypto.Keccak256(orderBytes)

	sig, err := crypto.Sign(hash, c.privateKey)
	if err != nil {
		return "", err
	}

	return hexutil.Encode(sig), nil
}

func (c *PolymarketClient) hmacSign(message string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
