// Copybot - Mirror a trader's Polymarket activity at a scaled size
//
// Polls the followed trader's public fills, rolls each burst of raw fills
// into one synthetic order per (asset, side) with a volume-weighted average
// price, then replays it at COPY_MULTIPLIER of the original size. The
// aggregation exists because followed traders often fill in many sub-$1
// pieces that would individually bounce off the venue's $1 order floor.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/crossarb/config"
	"github.com/web3guy0/crossarb/copytrade"
	"github.com/web3guy0/crossarb/storage"
	"github.com/web3guy0/crossarb/venue"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.CopyTrader == "" {
		log.Fatal().Msg("COPY_TRADER_ADDRESS is required")
	}
	if err := cfg.ValidateForTrading(); err != nil {
		log.Fatal().Err(err).Msg("Missing trading credentials")
	}

	log.Info().
		Str("trader", cfg.CopyTrader).
		Str("multiplier", cfg.CopyMultiplier.String()).
		Bool("dry_run", cfg.DryRun).
		Msg("👥 Copybot starting...")

	client, err := venue.NewPolymarketClient(venue.PolymarketConfig{
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

	follower := copytrade.NewFollower(
		cfg.CopyTrader,
		cfg.CopyMultiplier,
		time.Duration(cfg.CopyPollSeconds)*time.Second,
		client,
	)

	if db, err := storage.New(cfg.DatabaseURL, cfg.DatabasePath); err != nil {
		log.Warn().Err(err).Msg("⚠️ Database unavailable - running without persistence")
	} else {
		follower.SetStore(db)
	}

	follower.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("🛑 Received shutdown signal")

	follower.Stop()
	log.Info().Msg("👋 Shutdown complete")
}
