package database

import (
	"fmt"

	"storefront/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the storefront owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Product{},
		&models.ProductVariant{},
		&models.Kit{},
		&models.KitProduct{},
		&models.Combo{},
		&models.ComboProduct{},
		&models.CartItem{},
		&models.Coupon{},
		&models.Order{},
		&models.SalesRecord{},
	}
}

func Initialize(databaseURL string, log *zap.Logger) (*gorm.DB, error) {
	db, err := Open(postgres.Open(databaseURL), logger.Info)
	if err != nil {
		return nil, err
	}

	log.Info("database connected and migrated")
	return db, nil
}

// Open connects through any gorm dialector and migrates the schema.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	// Configure GORM
	config := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
