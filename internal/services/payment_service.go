package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/redis"
	"storefront/pkg/razorpay"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const paymentCurrency = "INR"

type PaymentGateway interface {
	CreateOrder(ctx context.Context, request razorpay.CreateOrderRequest) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
}

type TempStore interface {
	SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetTempData(ctx context.Context, key string, dest interface{}) error
	DeleteTempData(ctx context.Context, key string) error
}

// PaymentIntent is remembered between gateway order creation and completion.
type PaymentIntent struct {
	GatewayOrderID string          `json:"gateway_order_id"`
	UserID         uint            `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	CouponCode     string          `json:"coupon_code,omitempty"`
}

type PaymentService interface {
	CreatePaymentOrder(ctx context.Context, userID uint, amount decimal.Decimal, receipt, couponCode string) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
	ConfirmAmount(ctx context.Context, gatewayOrderID string, amount decimal.Decimal) error
	DiscardIntent(ctx context.Context, gatewayOrderID string) error
}

type paymentService struct {
	gateway PaymentGateway
	store   TempStore
	ttl     time.Duration
	log     *zap.Logger
}

func NewPaymentService(gateway PaymentGateway, store TempStore, ttl time.Duration, log *zap.Logger) PaymentService {
	return &paymentService{gateway: gateway, store: store, ttl: ttl, log: log}
}

func intentKey(gatewayOrderID string) string {
	return "payment:" + gatewayOrderID
}

// ToPaise converts a rupee amount to the gateway's smallest unit.
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

func (s *paymentService) CreatePaymentOrder(ctx context.Context, userID uint, amount decimal.Decimal, receipt, couponCode string) (*razorpay.Order, error) {
	if !amount.IsPositive() {
		return nil, ErrEmptyCart
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderRequest{
		Amount:   ToPaise(amount),
		Currency: paymentCurrency,
		Receipt:  receipt,
		Notes:    map[string]string{"user_id": fmt.Sprint(userID)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	intent := PaymentIntent{GatewayOrderID: order.ID, UserID: userID, Amount: amount.Round(2), CouponCode: couponCode}
	if err := s.store.SetTempData(ctx, intentKey(order.ID), intent, s.ttl); err != nil {
		// completion tolerates a missing intent
		s.log.Warn("failed to store payment intent", zap.String("gateway_order_id", order.ID), zap.Error(err))
	}

	return order, nil
}

func (s *paymentService) VerifySignature(orderID, paymentID, signature string) error {
	return s.gateway.VerifySignature(orderID, paymentID, signature)
}

// ConfirmAmount checks a completion against the amount the gateway order was created
// for. A missing or expired intent is not an error.
func (s *paymentService) ConfirmAmount(ctx context.Context, gatewayOrderID string, amount decimal.Decimal) error {
	var intent PaymentIntent
	err := s.store.GetTempData(ctx, intentKey(gatewayOrderID), &intent)
	switch {
	case errors.Is(err, redis.ErrNotFound):
		s.log.Info("no payment intent found", zap.String("gateway_order_id", gatewayOrderID))
		return nil
	case err != nil:
		return fmt.Errorf("failed to load payment intent: %w", err)
	}

	if !intent.Amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: expected %s, got %s", ErrAmountMismatch, intent.Amount.StringFixed(2), amount.StringFixed(2))
	}
	return nil
}

// DiscardIntent drops the stored intent once its order exists.
func (s *paymentService) DiscardIntent(ctx context.Context, gatewayOrderID string) error {
	return s.store.DeleteTempData(ctx, intentKey(gatewayOrderID))
}
