package services

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type CouponService interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*pricing.Coupon, error)
	Consume(ctx context.Context, code string) error
}

type couponService struct {
	couponRepo repository.CouponRepository
	now        func() time.Time
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponService{couponRepo: couponRepo, now: time.Now}
}

func (s *couponService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*pricing.Coupon, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.check(coupon, subtotal); err != nil {
		return nil, err
	}

	return &pricing.Coupon{
		Code:     coupon.Code,
		Percent:  coupon.Percent,
		Discount: coupon.Discount,
	}, nil
}

func (s *couponService) check(coupon *models.Coupon, subtotal decimal.Decimal) error {
	now := s.now()
	switch {
	case !coupon.IsActive:
		return ErrCouponInactive
	case coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom):
		return ErrCouponNotStarted
	case coupon.ValidTo != nil && now.After(*coupon.ValidTo):
		return ErrCouponExpired
	case coupon.Exhausted():
		return ErrCouponExhausted
	case subtotal.LessThan(coupon.MinOrderValue):
		return fmt.Errorf("%w (minimum %s)", ErrCouponBelowMinimum, coupon.MinOrderValue.StringFixed(2))
	}
	return nil
}

func (s *couponService) Consume(ctx context.Context, code string) error {
	if err := s.couponRepo.IncrementUsage(ctx, code); err != nil {
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}
	return nil
}
