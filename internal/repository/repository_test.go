package repository

import (
	"context"
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:  "Cold pressed groundnut oil",
		Slug:  "groundnut-oil",
		Image: "https://cdn.example.com/groundnut.jpg",
		Price: decimal.NewFromInt(1180),
		Variants: []models.ProductVariant{
			{Label: "1 L", SKU: "GN-1L", Price: decimal.NewFromInt(1180), Stock: stock},
			{Label: "500 ml", SKU: "GN-500", Price: decimal.NewFromInt(649), Stock: stock},
		},
	}
	require.NoError(t, NewProductRepository(db).Create(context.Background(), product))
	return product
}
