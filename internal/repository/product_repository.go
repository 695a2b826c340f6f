package repository

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type StockOperation string

const (
	StockDecrement StockOperation = "decrement"
	StockIncrement StockOperation = "increment"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetVariant(ctx context.Context, variantID uint) (*models.ProductVariant, error)
	AdjustVariantStock(ctx context.Context, variantID uint, quantity int, op StockOperation) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Variants").First(&product, id).Error
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return &product, nil
}

func (r *productRepository) GetVariant(ctx context.Context, variantID uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).First(&variant, variantID).Error
	if err != nil {
		return nil, notFound(err, ErrVariantNotFound)
	}
	return &variant, nil
}

// AdjustVariantStock changes stock in a single UPDATE so concurrent checkouts on the
// same variant cannot interleave a read and a write. A decrement never takes stock below zero.
func (r *productRepository) AdjustVariantStock(ctx context.Context, variantID uint, quantity int, op StockOperation) error {
	if quantity <= 0 {
		return fmt.Errorf("invalid stock quantity %d", quantity)
	}

	tx := r.db.WithContext(ctx).Model(&models.ProductVariant{}).Where("id = ?", variantID)
	switch op {
	case StockDecrement:
		tx = tx.Where("stock >= ?", quantity).Update("stock", gorm.Expr("stock - ?", quantity))
	case StockIncrement:
		tx = tx.Update("stock", gorm.Expr("stock + ?", quantity))
	default:
		return fmt.Errorf("unknown stock operation %q", op)
	}
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	if _, err := r.GetVariant(ctx, variantID); err != nil {
		return err
	}
	return ErrInsufficientStock
}
