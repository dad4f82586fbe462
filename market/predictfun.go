package market

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PREDICT.FUN WINDOW FINDER
// ═══════════════════════════════════════════════════════════════════════════════
//
// predict.fun has no slug scheme. The markets listing is filtered to
// REGISTERED (tradeable) BTC up-or-down contracts and the first hit whose
// title parses to the expected quarter-hour label wins. Titles use the
// short spelling "9:15-9:30AM"; ParseWindowLabel handles both forms.
//
// ═══════════════════════════════════════════════════════════════════════════════

// pfMarket mirrors the predict.fun listing shape. Venue field names must
// not leak past this file.
type pfMarket struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Category string `json:"category"`
	TickSize string `json:"tickSize"`
	NegRisk  bool   `json:"isNegRisk"`
	CloseAt  string `json:"closeAt"`
	Outcomes []struct {
		Name      string `json:"name"`
		OnChainID string `json:"onChainId"`
	} `json:"outcomes"`
}

type pfMarketList struct {
	Markets []pfMarket `json:"markets"`
}

// PredictFunFinder locates the active 15m BTC window on predict.fun
type PredictFunFinder struct {
	apiURL     string
	httpClient *http.Client
}

// NewPredictFunFinder creates a finder against the predict.fun REST API
func NewPredictFunFinder(apiURL string) *PredictFunFinder {
	return &PredictFunFinder{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Find resolves the registered BTC up/down market for the quarter-hour
// containing now. Returns ErrNoWindow when the venue hasn't minted it yet.
func (p *PredictFunFinder) Find(now time.Time) (*types.MarketWindow, error) {
	url := fmt.Sprintf("%s/v1/markets?status=REGISTERED&search=btc", p.apiURL)
	resp, err := p.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("predict.fun request failed: %w", err)
	}
	defer resp.Body.Close()

	var list pfMarketList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("predict.fun decode failed: %w", err)
	}

	expected := ExpectedLabel(now)

	for _, m := range list.Markets {
		if m.Status != "REGISTERED" {
			continue
		}
		if !isBTCUpDown(m.Title) {
			continue
		}

		label, ok := ParseWindowLabel(m.Title)
		if !ok || label != expected {
			continue
		}

		window, err := p.toWindow(m, label)
		if err != nil {
			continue
		}
		return window, nil
	}

	return nil, ErrNoWindow
}

func (p *PredictFunFinder) toWindow(m pfMarket, label Label) (*types.MarketWindow, error) {
	var upToken, downToken string
	for _, o := range m.Outcomes {
		switch strings.ToUpper(o.Name) {
		case "UP", "YES":
			upToken = o.OnChainID
		case "DOWN", "NO":
			downToken = o.OnChainID
		}
	}
	if upToken == "" || downToken == "" {
		return nil, fmt.Errorf("market %s missing outcome tokens", m.ID)
	}

	tick := decimal.NewFromFloat(0.01)
	if m.TickSize != "" {
		if d, err := decimal.NewFromString(m.TickSize); err == nil {
			tick = d
		}
	}

	var endTime time.Time
	if m.CloseAt != "" {
		endTime, _ = time.Parse(time.RFC3339, m.CloseAt)
	}

	return &types.MarketWindow{
		Venue:       types.VenuePredictFun,
		ID:          m.ID,
		Title:       m.Title,
		UpTokenID:   upToken,
		DownTokenID: downToken,
		WindowLabel: label.String(),
		TickSize:    tick,
		NegRisk:     m.NegRisk,
		EndTime:     endTime,
	}, nil
}

func isBTCUpDown(title string) bool {
	t := strings.ToLower(title)
	if !strings.Contains(t, "btc") && !strings.Contains(t, "bitcoin") {
		return false
	}
	return strings.Contains(t, "up or down") || strings.Contains(t, "up/down")
}
