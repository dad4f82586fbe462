package market

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// POLYMARKET WINDOW FINDER
// ═══════════════════════════════════════════════════════════════════════════════
//
// Polymarket crypto windows use timestamp-based slugs:
//   btc-updown-15m-{timestamp} where timestamp is Unix time aligned to the
//   window interval. The gamma events endpoint resolves a slug to the
//   market, its title and its CLOB token ids.
//
// ═══════════════════════════════════════════════════════════════════════════════

// ErrNoWindow is returned when no contract for the current window exists
// yet on a venue. Transient; the resolver retries on the next tick.
var ErrNoWindow = fmt.Errorf("no active window market found")

// gammaEvent mirrors the gamma API response shape. Venue field names must
// not leak past this file.
type gammaEvent struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Active  bool   `json:"active"`
	Closed  bool   `json:"closed"`
	EndDate string `json:"endDate"`
	Markets []struct {
		ID           string `json:"id"`
		ConditionID  string `json:"conditionId"`
		Question     string `json:"question"`
		Outcomes     string `json:"outcomes"`
		ClobTokenIds string `json:"clobTokenIds"`
		NegRisk      bool   `json:"negRisk"`
		MinTickSize  string `json:"orderPriceMinTickSize"`
	} `json:"markets"`
}

// PolymarketFinder locates the active 15m BTC window on Polymarket
type PolymarketFinder struct {
	gammaURL   string
	httpClient *http.Client
}

// NewPolymarketFinder creates a finder against the gamma API
func NewPolymarketFinder(gammaURL string) *PolymarketFinder {
	return &PolymarketFinder{
		gammaURL:   gammaURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Find resolves the window whose slug matches the quarter-hour containing
// now. Returns ErrNoWindow when the venue hasn't minted it yet.
func (p *PolymarketFinder) Find(now time.Time) (*types.MarketWindow, error) {
	windowTs := (now.Unix() / (WindowMinutes * 60)) * (WindowMinutes * 60)
	slug := fmt.Sprintf("btc-updown-15m-%d", windowTs)

	url := fmt.Sprintf("%s/events?slug=%s", p.gammaURL, slug)
	resp, err := p.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("gamma request failed: %w", err)
	}
	defer resp.Body.Close()

	var events []gammaEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("gamma decode failed: %w", err)
	}

	if len(events) == 0 || len(events[0].Markets) == 0 {
		return nil, ErrNoWindow
	}

	event := events[0]
	m := event.Markets[0]
	if event.Closed || !event.Active {
		return nil, ErrNoWindow
	}

	// clobTokenIds is a JSON array encoded as a string: ["<up>","<down>"]
	var tokenIDs []string
	if err := json.Unmarshal([]byte(m.ClobTokenIds), &tokenIDs); err != nil || len(tokenIDs) < 2 {
		return nil, ErrNoWindow
	}

	label, ok := ParseWindowLabel(event.Title)
	if !ok {
		return nil, fmt.Errorf("window title %q has no time label", event.Title)
	}

	tick := decimal.NewFromFloat(0.01)
	if m.MinTickSize != "" {
		if d, err := decimal.NewFromString(m.MinTickSize); err == nil {
			tick = d
		}
	}

	var endTime time.Time
	if event.EndDate != "" {
		endTime, _ = time.Parse(time.RFC3339, event.EndDate)
	}

	return &types.MarketWindow{
		Venue:       types.VenuePolymarket,
		ID:          m.ConditionID,
		Title:       event.Title,
		UpTokenID:   tokenIDs[0],
		DownTokenID: tokenIDs[1],
		WindowLabel: label.String(),
		TickSize:    tick,
		NegRisk:     m.NegRisk,
		EndTime:     endTime,
	}, nil
}
