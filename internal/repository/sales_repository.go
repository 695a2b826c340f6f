package repository

import (
	"context"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type SalesRepository interface {
	Create(ctx context.Context, record *models.SalesRecord) error
	GetByOrderID(ctx context.Context, orderID uint) ([]models.SalesRecord, error)
	SummarizeByItem(ctx context.Context, startDate, endDate time.Time) ([]models.SalesSummary, error)
}

type salesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) Create(ctx context.Context, record *models.SalesRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *salesRepository) GetByOrderID(ctx context.Context, orderID uint) ([]models.SalesRecord, error) {
	var records []models.SalesRecord
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&records).Error
	return records, err
}

// SummarizeByItem totals units and revenue per product, kit and combo sold in
// [startDate, endDate), highest revenue first.
func (r *salesRepository) SummarizeByItem(ctx context.Context, startDate, endDate time.Time) ([]models.SalesSummary, error) {
	var rows []models.SalesSummary
	err := r.db.WithContext(ctx).Model(&models.SalesRecord{}).
		Select("item_kind, product_id, kit_id, combo_id, MAX(item_name) AS item_name, " +
			"SUM(quantity) AS units, SUM(total_price) AS revenue").
		Where("sold_at >= ? AND sold_at < ?", startDate, endDate).
		Group("item_kind, product_id, kit_id, combo_id").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}
