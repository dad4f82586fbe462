package dashboard

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/web3guy0/crossarb/arb"
	"github.com/web3guy0/crossarb/feeds"
	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TERMINAL DASHBOARD
// ═══════════════════════════════════════════════════════════════════════════════
//
// Continuously redrawn status display: the 2×2 quote grid, sync state,
// live opportunities and session counters, plus a short append-only
// activity tail. Renders on a fixed tick from its own snapshot copy so a
// burst of quote updates never floods the terminal.
//
// ═══════════════════════════════════════════════════════════════════════════════

const (
	// ANSI escape codes
	clearScreen = "\033[2J"
	moveTopLeft = "\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"

	// Colors
	reset    = "\033[0m"
	bold     = "\033[1m"
	fgRed    = "\033[31m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgCyan   = "\033[36m"

	maxLogLines = 8
)

// Terminal is the live status display
type Terminal struct {
	mu sync.RWMutex

	startTime time.Time
	running   bool
	stopCh    chan struct{}

	snap    feeds.Snapshot
	inSync  bool
	opps    []arb.Opportunity
	trades  int
	logs    []string
}

// NewTerminal creates the dashboard
func NewTerminal() *Terminal {
	return &Terminal{
		startTime: time.Now(),
		stopCh:    make(chan struct{}),
	}
}

// Start begins redrawing
func (t *Terminal) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	fmt.Print(hideCursor, clearScreen)
	go t.renderLoop()
}

// Stop restores the cursor
func (t *Terminal) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.stopCh)
	fmt.Print(showCursor)
}

// Update replaces the displayed state. Called on every quote pass.
func (t *Terminal) Update(snap feeds.Snapshot, inSync bool, opps []arb.Opportunity, trades int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = snap
	t.inSync = inSync
	t.opps = opps
	t.trades = trades
}

// Log appends a line to the activity tail
func (t *Terminal) Log(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = append(t.logs, time.Now().Format("15:04:05")+" "+line)
	if len(t.logs) > maxLogLines {
		t.logs = t.logs[len(t.logs)-maxLogLines:]
	}
}

func (t *Terminal) renderLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.render()
		}
	}
}

func (t *Terminal) render() {
	t.mu.RLock()
	snap := t.snap
	inSync := t.inSync
	opps := t.opps
	trades := t.trades
	logs := append([]string(nil), t.logs...)
	uptime := time.Since(t.startTime).Round(time.Second)
	t.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString(moveTopLeft)

	sb.WriteString(bold + "╔══════════════════════════════════════════════════════════════╗\n" + reset)
	sb.WriteString(fmt.Sprintf(bold+"║  CROSSARB  │  BTC 15m  │  up %-10s │  trades %-3d        ║\n"+reset, uptime, trades))
	sb.WriteString(bold + "╚══════════════════════════════════════════════════════════════╝\n" + reset)

	syncLine := fgGreen + "● IN SYNC" + reset
	if !inSync {
		syncLine = fgRed + "● OUT OF SYNC - trading blocked" + reset
	}
	sb.WriteString("  " + syncLine + "\n\n")

	sb.WriteString(bold + "  QUOTES                bid     ask\n" + reset)
	writeQuote(&sb, "polymarket UP  ", &snap.PolyUp)
	writeQuote(&sb, "polymarket DOWN", &snap.PolyDown)
	writeQuote(&sb, "predictfun UP  ", &snap.PfUp)
	writeQuote(&sb, "predictfun DOWN", &snap.PfDown)
	sb.WriteString("\n")

	sb.WriteString(bold + "  OPPORTUNITIES\n" + reset)
	if len(opps) == 0 {
		sb.WriteString("    (none)                                       \n")
	}
	for _, o := range opps {
		marker := fgYellow + "watch" + reset
		if o.Executable {
			marker = fgGreen + "EXEC " + reset
		}
		sb.WriteString(fmt.Sprintf("    %s %-13s %s¢  %s\n",
			marker, o.Kind, o.ProfitCents().StringFixed(1), legsSummary(o.Legs)))
	}
	sb.WriteString("\n")

	sb.WriteString(bold + "  ACTIVITY\n" + reset)
	for _, l := range logs {
		sb.WriteString("    " + l + "\n")
	}

	// Pad so shrinking content never leaves stale lines behind
	for i := len(opps) + len(logs); i < maxLogLines+8; i++ {
		sb.WriteString(strings.Repeat(" ", 64) + "\n")
	}

	fmt.Print(sb.String())
}

func writeQuote(sb *strings.Builder, label string, q *types.Quote) {
	bid, ask := "  -  ", "  -  "
	if q.HasBid() {
		bid = q.BestBid.StringFixed(2)
	}
	if q.HasAsk() {
		ask = q.BestAsk.StringFixed(2)
	}
	age := ""
	if !q.UpdatedAt.IsZero() && time.Since(q.UpdatedAt) > 10*time.Second {
		age = fgYellow + " (stale)" + reset
	}
	sb.WriteString(fmt.Sprintf("    %s  %s%s  %s%s%s\n", label, bid, "  ", fgCyan, ask, reset+age))
}

func legsSummary(legs []arb.Leg) string {
	parts := make([]string, 0, len(legs))
	for _, l := range legs {
		parts = append(parts, fmt.Sprintf("%s/%s@%s", l.Venue, l.Side, l.Price.StringFixed(2)))
	}
	return strings.Join(parts, " + ")
}
