package migrations

import (
	"context"
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func TestRunMigrations_SeedsOnce(t *testing.T) {
	db, err := database.Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	ctx := context.Background()
	log := zap.NewNop()

	require.NoError(t, RunMigrations(ctx, db, false, log))
	require.NoError(t, RunMigrations(ctx, db, false, log))

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.Equal(t, int64(3), products)

	kit, err := repository.NewBundleRepository(db).GetKit(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, kit.Products, 2)

	coupon, err := repository.NewCouponRepository(db).GetByCode(ctx, "welcome10")
	require.NoError(t, err)
	assert.Equal(t, "10", coupon.Percent.String())

	// the seeded kit carries no explicit ex-GST price
	calc := pricing.NewCalculator(pricing.DefaultGSTPercent)
	assert.Equal(t, "846.61", calc.BasePrice(kit.Price, kit.PriceExGST).StringFixed(2))

	require.NoError(t, RunMigrations(ctx, db, true, log))
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.Equal(t, int64(3), products)
}
