// Crossarb - Cross-venue arbitrage bot for 15-minute BTC up/down markets
//
// Watches the same 15-minute Bitcoin up/down contract on Polymarket and
// predict.fun, and trades two shapes of mispricing:
//
//  1. Cross-spread: buy UP on one venue and DOWN on the other when the two
//     asks sum to less than $1 - one side always resolves to $1.
//  2. Directional: buy an outcome on the venue quoting it cheap and sell
//     it on the venue bidding it rich.
//
// Both venues mint a fresh contract every 15 minutes and they don't always
// roll at the same instant, so trading is gated on both venues quoting the
// SAME window.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/crossarb/arb"
	"github.com/web3guy0/crossarb/config"
	"github.com/web3guy0/crossarb/core"
	"github.com/web3guy0/crossarb/dashboard"
	"github.com/web3guy0/crossarb/exec"
	"github.com/web3guy0/crossarb/feeds"
	"github.com/web3guy0/crossarb/market"
	"github.com/web3guy0/crossarb/notify"
	"github.com/web3guy0/crossarb/session"
	"github.com/web3guy0/crossarb/storage"
	"github.com/web3guy0/crossarb/types"
	"github.com/web3guy0/crossarb/venue"
)

const version = "1.2.0"

func main() {
	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if err := cfg.ValidateForTrading(); err != nil {
		log.Fatal().Err(err).Msg("Missing trading credentials")
	}

	log.Info().
		Str("version", version).
		Bool("dry_run", cfg.DryRun).
		Str("min_profit_cents", cfg.MinProfitCents.String()).
		Msg("⚡ Crossarb starting...")

	// ====== STORAGE ======
	db, err := storage.New(cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Database unavailable - running without persistence")
		db = nil
	}

	// ====== CORE COMPONENTS ======

	// 1. Quote board - shared best bid/ask state, one writer per venue
	board := feeds.NewBoard()

	// 2. Feed adapters - one WebSocket per venue
	pmFeed := feeds.NewPolymarketFeed(cfg.PolymarketWSURL, board)
	pfFeed := feeds.NewPredictFunFeed(cfg.PredictFunWSURL, board)
	venueFeeds := map[types.Venue]core.Feed{
		types.VenuePolymarket: pmFeed,
		types.VenuePredictFun: pfFeed,
	}

	// 3. Window resolver - tracks the live 15m contract on each venue
	resolver := market.NewResolver(
		market.NewPolymarketFinder(cfg.PolymarketGammaURL),
		market.NewPredictFunFinder(cfg.PredictFunAPIURL),
		time.Duration(cfg.RefreshSeconds)*time.Second,
	)

	// 4. Opportunity calculator
	calc := arb.NewCalculator(cfg.MinProfitCents)

	// 5. Session guard - budgets, cooldown, trade cap
	sess := session.New(
		cfg.MaxTradesPerRound,
		time.Duration(cfg.CooldownSeconds)*time.Second,
		map[types.Venue]decimal.Decimal{
			types.VenuePolymarket: cfg.PolymarketBudget,
			types.VenuePredictFun: cfg.PredictFunBudget,
		},
		cfg.LowBalanceAlert,
	)

	// 6. Trading clients
	pmClient, err := venue.NewPolymarketClient(venue.PolymarketConfig{
		CLOBURL:    cfg.PolymarketCLOBURL,
		GammaURL:   cfg.PolymarketGammaURL,
		APIKey:     cfg.CLOBApiKey,
		APISecret:  cfg.CLOBApiSecret,
		Passphrase: cfg.CLOBPassphrase,
		PrivateKey: cfg.WalletPrivateKey,
		DryRun:     cfg.DryRun,
		MinShares:  cfg.PolymarketMinShares,
		MinValue:   cfg.MinOrderValue,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Polymarket client")
	}
	pfClient := venue.NewPredictFunClient(venue.PredictFunConfig{
		APIURL:   cfg.PredictFunAPIURL,
		Token:    cfg.PredictFunToken,
		DryRun:   cfg.DryRun,
		MinValue: cfg.MinOrderValue,
	})

	// 7. Execution engine
	engine := exec.NewEngine(map[types.Venue]venue.TradingClient{
		types.VenuePolymarket: pmClient,
		types.VenuePredictFun: pfClient,
	}, sess)
	if db != nil {
		engine.SetStore(db)
	}

	// 8. Orchestrator
	bot := core.NewBot(board, resolver, calc, engine, sess, venueFeeds, true)

	// ====== TELEGRAM ======
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Telegram unavailable - alerts disabled")
		} else {
			tg.SetStatusProvider(bot)
			tg.SetControls(bot.Pause, bot.Resume)
			tg.Start()
			defer tg.Stop()
			engine.SetNotifier(tg)
			bot.SetNotifier(tg)
		}
	}

	// ====== DASHBOARD ======
	display := dashboard.NewTerminal()
	display.Start()
	bot.SetDisplay(display)

	// ====== START ======
	bot.Start()

	log.Info().Msg("✅ All systems online")
	log.Info().Msg("")
	log.Info().Msg("╔══════════════════════════════════════════╗")
	log.Info().Msg("║     CROSS-VENUE ARBITRAGE ACTIVE         ║")
	log.Info().Msg("║                                          ║")
	log.Info().Msg("║  Polymarket ⇄ predict.fun BTC 15m        ║")
	log.Info().Msg("║  → Cross-spread: askUP + askDOWN < $1    ║")
	log.Info().Msg("║  → Directional: bid A > ask B            ║")
	log.Info().Msg("║  → Gate: identical window labels only    ║")
	log.Info().Msg("╚══════════════════════════════════════════╝")
	log.Info().Msg("")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("🛑 Received shutdown signal")

	// Graceful shutdown: stop feeds first so nothing new executes, then
	// cancel whatever is still resting on the books
	bot.Stop()
	engine.CancelAll()
	display.Stop()

	log.Info().Msg("👋 Shutdown complete")
}
