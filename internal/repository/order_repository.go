package repository

import (
	"context"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Order, error)
	GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Order, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

func (r *orderRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&order).Error
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error
	return orders, err
}

// GetByDateRange returns orders created in [startDate, endDate).
func (r *orderRepository) GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", startDate, endDate).
		Order("created_at").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
