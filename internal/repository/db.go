// Package repository is the persistence layer: GORM over Postgres with
// transactional multi-table writes and optimistic/row-level locking where
// order state requires it.
package repository

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
	"github.com/ThinkGrid-Labs/altis-engine/internal/config"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// Connect opens a GORM connection against the configured Postgres database.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// AutoMigrate creates/updates the tables this core owns. Schema evolution
// proper is owned by golang-migrate against the migrations/ directory at
// deploy time; AutoMigrate here only keeps local/dev environments usable
// without a full migration run.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Product{},
		&models.Offer{},
		&models.OfferItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Fulfillment{},
		&models.LedgerEntry{},
		&businessrules.OverrideRow{},
	)
}
