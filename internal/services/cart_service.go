package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// CheckoutView is what the checkout page renders: priced lines, dropped rows and totals.
type CheckoutView struct {
	UserID      uint              `json:"user_id"`
	Items       []models.LineItem `json:"items"`
	Skipped     []SkippedRow      `json:"skipped,omitempty"`
	Summary     pricing.Summary   `json:"summary"`
	CouponError string            `json:"coupon_error,omitempty"`
}

type CartService interface {
	AddItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	RemoveItem(ctx context.Context, id uint) error
	Clear(ctx context.Context, userID uint) error
	Checkout(ctx context.Context, userID uint, couponCode string) (*CheckoutView, error)
	Summarize(ctx context.Context, items []models.LineItem, couponCode string) (*CheckoutView, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	transformer *CartTransformer
	coupons     CouponService
	calculator  *pricing.Calculator
	log         *zap.Logger
}

func NewCartService(cartRepo repository.CartRepository, transformer *CartTransformer, coupons CouponService, calculator *pricing.Calculator, log *zap.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		transformer: transformer,
		coupons:     coupons,
		calculator:  calculator,
		log:         log,
	}
}

// AddItem merges into an existing row for the same reference and variant.
func (s *cartService) AddItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.References() != 1 {
		return nil, ErrInvalidReference
	}
	if item.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	existing, err := s.cartRepo.FindMatching(ctx, item)
	switch {
	case err == nil:
		quantity := existing.Quantity + item.Quantity
		if err := s.cartRepo.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
			return nil, fmt.Errorf("failed to merge cart item: %w", err)
		}
		existing.Quantity = quantity
		return existing, nil
	case !errors.Is(err, repository.ErrCartItemNotFound):
		return nil, err
	}

	if err := s.cartRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return item, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	if quantity <= 0 {
		return s.cartRepo.Delete(ctx, id)
	}
	return s.cartRepo.UpdateQuantity(ctx, id, quantity)
}

func (s *cartService) RemoveItem(ctx context.Context, id uint) error {
	return s.cartRepo.Delete(ctx, id)
}

func (s *cartService) Clear(ctx context.Context, userID uint) error {
	return s.cartRepo.DeleteByUserID(ctx, userID)
}

func (s *cartService) Checkout(ctx context.Context, userID uint, couponCode string) (*CheckoutView, error) {
	rows, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	result := s.transformer.Transform(ctx, rows)
	view, err := s.Summarize(ctx, result.Items, couponCode)
	if err != nil {
		return nil, err
	}
	view.UserID = userID
	view.Skipped = result.Skipped
	return view, nil
}

// Summarize prices already transformed items. A coupon that fails validation does not
// fail the summary; the reason is reported in CouponError.
func (s *cartService) Summarize(ctx context.Context, items []models.LineItem, couponCode string) (*CheckoutView, error) {
	view := &CheckoutView{Items: items}
	summary := s.calculator.Summarize(items, nil)

	if code := strings.TrimSpace(couponCode); code != "" {
		coupon, err := s.coupons.Validate(ctx, code, summary.Subtotal)
		switch {
		case err == nil:
			summary = s.calculator.Summarize(items, coupon)
		case isCouponRejection(err):
			s.log.Info("coupon rejected", zap.String("code", code), zap.Error(err))
			view.CouponError = err.Error()
		default:
			return nil, fmt.Errorf("failed to validate coupon: %w", err)
		}
	}

	view.Summary = summary.Rounded()
	return view, nil
}

func isCouponRejection(err error) bool {
	for _, target := range []error{
		repository.ErrCouponNotFound,
		ErrCouponInactive,
		ErrCouponNotStarted,
		ErrCouponExpired,
		ErrCouponExhausted,
		ErrCouponBelowMinimum,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
