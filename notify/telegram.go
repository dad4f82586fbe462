package notify

import (
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TELEGRAM NOTIFICATIONS
// ═══════════════════════════════════════════════════════════════════════════════
//
// Fire-and-forget alert sink: partial fills, low budget, desync warnings,
// trade confirmations. A send failure is logged and dropped, never
// retried - the trading loop must not block on chat delivery.
//
// ═══════════════════════════════════════════════════════════════════════════════

// StatusProvider supplies the /status reply
type StatusProvider interface {
	StatusText() string
}

// Telegram is the notification sink
type Telegram struct {
	mu      sync.RWMutex
	api     *tgbotapi.BotAPI
	chatID  int64
	running bool
	stopCh  chan struct{}

	status   StatusProvider
	onPause  func()
	onResume func()
}

// NewTelegram creates the sink. Token and chat id come from config; an
// empty token disables notifications without failing startup.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("🤖 Telegram bot connected")

	return &Telegram{
		api:    api,
		chatID: chatID,
		stopCh: make(chan struct{}),
	}, nil
}

// SetStatusProvider wires the /status reply source
func (t *Telegram) SetStatusProvider(p StatusProvider) { t.status = p }

// SetControls wires the /pause and /resume callbacks
func (t *Telegram) SetControls(onPause, onResume func()) {
	t.onPause = onPause
	t.onResume = onResume
}

// Start begins the command listener
func (t *Telegram) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	go t.listen()
	t.Send("⚡ crossarb online - " + time.Now().Format("15:04:05"))
}

// Stop stops the listener
func (t *Telegram) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.stopCh)
}

// Send delivers one message; false on failure, failure is never retried
func (t *Telegram) Send(message string) bool {
	if t.chatID == 0 {
		return false
	}

	msg := tgbotapi.NewMessage(t.chatID, message)
	if _, err := t.api.Send(msg); err != nil {
		log.Warn().Err(err).Msg("Telegram send failed")
		return false
	}
	return true
}

func (t *Telegram) listen() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.api.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message != nil {
				t.handleMessage(update.Message)
			}
		case <-t.stopCh:
			return
		}
	}
}

func (t *Telegram) handleMessage(msg *tgbotapi.Message) {
	if t.chatID != 0 && msg.Chat.ID != t.chatID {
		return
	}
	if !msg.IsCommand() {
		return
	}

	switch msg.Command() {
	case "status", "s":
		if t.status != nil {
			t.Send(t.status.StatusText())
		} else {
			t.Send("running")
		}
	case "pause":
		if t.onPause != nil {
			t.onPause()
			t.Send("⏸ Trading paused")
		}
	case "resume":
		if t.onResume != nil {
			t.onResume()
			t.Send("▶️ Trading resumed")
		}
	case "help", "h":
		t.Send("/status - current state\n/pause - stop trading\n/resume - resume trading")
	}
}
