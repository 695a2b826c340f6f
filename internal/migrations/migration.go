package migrations

import (
	"context"
	"fmt"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations migrates the schema and seeds the demo catalogue. With reset set,
// every storefront table is dropped first.
func RunMigrations(ctx context.Context, db *gorm.DB, reset bool, log *zap.Logger) error {
	log.Info("running database migrations", zap.Bool("reset", reset))

	if reset {
		tables := database.Models()
		// children first so foreign keys never block the drop
		for i, j := 0, len(tables)-1; i < j; i, j = i+1, j-1 {
			tables[i], tables[j] = tables[j], tables[i]
		}
		if err := db.Migrator().DropTable(tables...); err != nil {
			log.Warn("error dropping tables", zap.Error(err))
		}
	}

	if err := db.AutoMigrate(database.Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	if err := createDefaultData(ctx, db, log); err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func pricePtr(v string) *decimal.Decimal {
	d := price(v)
	return &d
}

// createDefaultData seeds products, bundles and coupons once.
func createDefaultData(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("catalogue already seeded", zap.Int64("products", count))
		return nil
	}

	productRepo := repository.NewProductRepository(db)
	bundleRepo := repository.NewBundleRepository(db)
	couponRepo := repository.NewCouponRepository(db)

	oil := &models.Product{
		Name:  "Cold pressed groundnut oil",
		Slug:  "groundnut-oil",
		Image: "/images/groundnut-oil.jpg",
		Price: price("1180"),
		Variants: []models.ProductVariant{
			{Label: "1 L", SKU: "GN-1L", Price: price("1180"), Stock: 50},
			{Label: "500 ml", SKU: "GN-500", Price: price("649"), Stock: 80},
		},
	}
	ghee := &models.Product{
		Name:       "A2 cow ghee",
		Slug:       "a2-ghee",
		Image:      "/images/a2-ghee.jpg",
		Price:      price("1416"),
		PriceExGST: pricePtr("1200"),
		Variants: []models.ProductVariant{
			{Label: "500 ml", SKU: "GHEE-500", Price: price("1416"), PriceExGST: pricePtr("1200"), Stock: 30},
			{Label: "1 L", SKU: "GHEE-1L", Price: price("2714"), Stock: 20},
		},
	}
	soap := &models.Product{
		Name:  "Handmade soap",
		Slug:  "handmade-soap",
		Image: "/images/soap.jpg",
		Price: price("236"),
		Variants: []models.ProductVariant{
			{Label: "Lavender", SKU: "SOAP-LAV", Price: price("236"), Stock: 100},
			{Label: "Rose", SKU: "SOAP-ROSE", Price: price("236"), Stock: 100},
			{Label: "Neem", SKU: "SOAP-NEEM", Price: price("236"), Stock: 100},
		},
	}
	for _, p := range []*models.Product{oil, ghee, soap} {
		if err := productRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to create product %s: %w", p.Slug, err)
		}
	}

	kit := &models.Kit{
		Name:  "Kitchen starter kit",
		Image: "/images/kitchen-kit.jpg",
		Price: price("999"),
		Products: []models.KitProduct{
			{ProductID: oil.ID, VariantID: &oil.Variants[1].ID, Quantity: 1},
			{ProductID: soap.ID, Quantity: 2},
		},
	}
	if err := bundleRepo.CreateKit(ctx, kit); err != nil {
		return fmt.Errorf("failed to create kit: %w", err)
	}

	combo := &models.Combo{
		Name:  "Pick-your-own combo",
		Image: "/images/combo.jpg",
		Products: []models.ComboProduct{
			{ProductID: ghee.ID, Quantity: 1},
			{ProductID: soap.ID, Quantity: 1},
		},
	}
	if err := bundleRepo.CreateCombo(ctx, combo); err != nil {
		return fmt.Errorf("failed to create combo: %w", err)
	}

	coupons := []*models.Coupon{
		{Code: "WELCOME10", Percent: pricePtr("10"), IsActive: true},
		{Code: "FLAT118", Discount: pricePtr("118"), MinOrderValue: price("1000"), IsActive: true},
		{Code: "FESTIVE25", Percent: pricePtr("25"), MinOrderValue: price("2500"), UsageLimit: 100, IsActive: true},
	}
	for _, c := range coupons {
		if err := couponRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to create coupon %s: %w", c.Code, err)
		}
	}

	log.Info("default data created",
		zap.Int("products", 3),
		zap.Uint("kit_id", kit.ID),
		zap.Uint("combo_id", combo.ID),
		zap.Int("coupons", len(coupons)))
	return nil
}
