package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the bot
type Config struct {
	// Mode
	DryRun bool
	Debug  bool

	// Polymarket
	PolymarketGammaURL string
	PolymarketCLOBURL  string
	PolymarketWSURL    string
	CLOBApiKey         string
	CLOBApiSecret      string
	CLOBPassphrase     string
	WalletPrivateKey   string
	FunderAddress      string

	// predict.fun
	PredictFunAPIURL string
	PredictFunWSURL  string
	PredictFunToken  string

	// Strategy thresholds
	MinProfitCents    decimal.Decimal // min unit profit to execute, in cents
	MaxTradesPerRound int
	CooldownSeconds   int
	RefreshSeconds    int

	// Budgets (USD per venue per side, per round)
	PolymarketBudget decimal.Decimal
	PredictFunBudget decimal.Decimal
	LowBalanceAlert  decimal.Decimal

	// Venue floors
	PolymarketMinShares decimal.Decimal
	MinOrderValue       decimal.Decimal

	// Copy trading
	CopyTrader      string // address of the followed trader
	CopyMultiplier  decimal.Decimal
	CopyPollSeconds int

	// Telegram
	TelegramToken  string
	TelegramChatID int64

	// Database
	DatabaseURL  string
	DatabasePath string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DryRun: getEnvBool("DRY_RUN", true),
		Debug:  getEnvBool("DEBUG", false),

		PolymarketGammaURL: getEnv("POLYMARKET_GAMMA_URL", "https://gamma-api.polymarket.com"),
		PolymarketCLOBURL:  getEnv("POLYMARKET_CLOB_URL", "https://clob.polymarket.com"),
		PolymarketWSURL:    getEnv("POLYMARKET_WS_URL", "wss://ws-subscriptions-clob.polymarket.com/ws/market"),
		CLOBApiKey:         os.Getenv("CLOB_API_KEY"),
		CLOBApiSecret:      os.Getenv("CLOB_API_SECRET"),
		CLOBPassphrase:     os.Getenv("CLOB_PASSPHRASE"),
		WalletPrivateKey:   os.Getenv("WALLET_PRIVATE_KEY"),
		FunderAddress:      os.Getenv("FUNDER_ADDRESS"),

		PredictFunAPIURL: getEnv("PREDICTFUN_API_URL", "https://api.predict.fun"),
		PredictFunWSURL:  getEnv("PREDICTFUN_WS_URL", "wss://ws.predict.fun"),
		PredictFunToken:  os.Getenv("PREDICTFUN_TOKEN"),

		MinProfitCents:    getEnvDecimal("MIN_PROFIT_CENTS", decimal.NewFromInt(2)),
		MaxTradesPerRound: getEnvInt("MAX_TRADES_PER_ROUND", 3),
		CooldownSeconds:   getEnvInt("COOLDOWN_SECONDS", 5),
		RefreshSeconds:    getEnvInt("REFRESH_SECONDS", 10),

		PolymarketBudget: getEnvDecimal("POLYMARKET_BUDGET", decimal.NewFromInt(50)),
		PredictFunBudget: getEnvDecimal("PREDICTFUN_BUDGET", decimal.NewFromInt(50)),
		LowBalanceAlert:  getEnvDecimal("LOW_BALANCE_ALERT", decimal.NewFromInt(10)),

		PolymarketMinShares: getEnvDecimal("POLYMARKET_MIN_SHARES", decimal.NewFromInt(5)),
		MinOrderValue:       getEnvDecimal("MIN_ORDER_VALUE", decimal.NewFromInt(1)),

		CopyTrader:      os.Getenv("COPY_TRADER_ADDRESS"),
		CopyMultiplier:  getEnvDecimal("COPY_MULTIPLIER", decimal.NewFromFloat(0.1)),
		CopyPollSeconds: getEnvInt("COPY_POLL_SECONDS", 5),

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabasePath: getEnv("DATABASE_PATH", "data/crossarb.db"),
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	return cfg, nil
}

// ValidateForTrading checks that live-trading credentials are present.
// Dry-run mode skips the check so the monitor can run unauthenticated.
func (c *Config) ValidateForTrading() error {
	if c.DryRun {
		return nil
	}
	if c.WalletPrivateKey == "" && (c.CLOBApiKey == "" || c.CLOBApiSecret == "") {
		return fmt.Errorf("live mode requires WALLET_PRIVATE_KEY or CLOB_API_KEY/CLOB_API_SECRET")
	}
	if c.PredictFunToken == "" {
		return fmt.Errorf("live mode requires PREDICTFUN_TOKEN")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
