package storage

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/web3guy0/crossarb/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// STORAGE - Trade persistence layer
// ═══════════════════════════════════════════════════════════════════════════════
//
// DATABASE_URL starting with postgres:// selects Postgres; otherwise a
// local sqlite file. Persistence is best-effort: a dead database degrades
// to the in-memory session, it never stops the trading loop.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Database wraps the gorm handle
type Database struct {
	db *gorm.DB
}

// TradeRow is a persisted execution
type TradeRow struct {
	ID         string `gorm:"primaryKey"`
	Kind       string `gorm:"index"`
	Legs       int
	UnitProfit decimal.Decimal `gorm:"type:decimal(10,6)"`
	Size       decimal.Decimal `gorm:"type:decimal(20,6)"`
	Partial    bool
	ExecutedAt time.Time
	CreatedAt  time.Time
}

// OrderRow is one persisted leg
type OrderRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"index"`
	Venue     string `gorm:"index"`
	Side      string
	TokenID   string
	Price     decimal.Decimal `gorm:"type:decimal(10,6)"`
	Size      decimal.Decimal `gorm:"type:decimal(20,6)"`
	Status    string
	Error     string
	CreatedAt time.Time
}

// CopyOrderRow is a persisted copy-trade replay
type CopyOrderRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Trader    string `gorm:"index"`
	Asset     string
	Side      string
	TotalSize decimal.Decimal `gorm:"type:decimal(20,6)"`
	AvgPrice  decimal.Decimal `gorm:"type:decimal(10,6)"`
	Scaled    decimal.Decimal `gorm:"type:decimal(20,6)"`
	Status    string
	CreatedAt time.Time
}

// New opens the database. url empty falls back to sqlite at path.
func New(url, path string) (*Database, error) {
	var dialector gorm.Dialector

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		dialector = postgres.Open(url)
		log.Info().Msg("💾 Using Postgres")
	} else {
		if dir := filepath.Dir(path); dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		dialector = sqlite.Open(path)
		log.Info().Str("path", path).Msg("💾 Using SQLite")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&TradeRow{}, &OrderRow{}, &CopyOrderRow{}); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// SaveTrade persists one executed opportunity
func (d *Database) SaveTrade(t types.TradeRecord) error {
	row := TradeRow{
		ID:         t.ID,
		Kind:       t.Kind,
		Legs:       t.Legs,
		UnitProfit: t.UnitProfit,
		Size:       t.Size,
		Partial:    t.Partial,
		ExecutedAt: t.ExecutedAt,
	}
	return d.db.Create(&row).Error
}

// SaveOrder persists one leg
func (d *Database) SaveOrder(o types.Order) error {
	row := OrderRow{
		OrderID: o.ID,
		Venue:   string(o.Venue),
		Side:    string(o.Side),
		TokenID: o.TokenID,
		Price:   o.Price,
		Size:    o.Size,
		Status:  string(o.Status),
		Error:   o.Error,
	}
	return d.db.Create(&row).Error
}

// SaveCopyOrder persists one aggregated copy-trade replay
func (d *Database) SaveCopyOrder(trader, asset, side string, totalSize, avgPrice, scaled decimal.Decimal, status string) error {
	row := CopyOrderRow{
		Trader:    trader,
		Asset:     asset,
		Side:      side,
		TotalSize: totalSize,
		AvgPrice:  avgPrice,
		Scaled:    scaled,
		Status:    status,
	}
	return d.db.Create(&row).Error
}

// RecentTrades returns the latest executions, newest first
func (d *Database) RecentTrades(limit int) ([]TradeRow, error) {
	var rows []TradeRow
	err := d.db.Order("executed_at desc").Limit(limit).Find(&rows).Error
	return rows, err
}
