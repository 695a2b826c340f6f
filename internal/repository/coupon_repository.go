package repository

import (
	"context"
	"strings"

	"storefront/internal/models"

	"gorm.io/gorm"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	IncrementUsage(ctx context.Context, code string) error
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *couponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = NormalizeCode(coupon.Code)
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&coupon).Error
	if err != nil {
		return nil, notFound(err, ErrCouponNotFound)
	}
	return &coupon, nil
}

func (r *couponRepository) IncrementUsage(ctx context.Context, code string) error {
	tx := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("code = ?", NormalizeCode(code)).
		Update("used_count", gorm.Expr("used_count + 1"))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}
