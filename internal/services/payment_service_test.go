package services

import (
	"context"
	"testing"
	"time"

	"storefront/pkg/razorpay"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	requests []razorpay.CreateOrderRequest
	err      error
}

func (g *fakeGateway) CreateOrder(_ context.Context, request razorpay.CreateOrderRequest) (*razorpay.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, request)
	return &razorpay.Order{ID: "order_test_1", Amount: request.Amount, Currency: request.Currency, Receipt: request.Receipt, Status: "created"}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) error {
	if signature != orderID+"|"+paymentID {
		return razorpay.ErrInvalidSignature
	}
	return nil
}

func TestToPaise(t *testing.T) {
	assert.Equal(t, int64(212400), ToPaise(decimal.NewFromInt(2124)))
	assert.Equal(t, int64(84661), ToPaise(decimal.RequireFromString("846.6101694915")))
	assert.Equal(t, int64(1), ToPaise(decimal.RequireFromString("0.005")))
}

func TestPaymentService_CreateAndConfirm(t *testing.T) {
	env := newTestEnv(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(gateway, env.redis, time.Hour, env.log)
	ctx := context.Background()

	order, err := svc.CreatePaymentOrder(ctx, 7, decimal.RequireFromString("2124.00"), "cart-7", "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "order_test_1", order.ID)

	require.Len(t, gateway.requests, 1)
	assert.Equal(t, int64(212400), gateway.requests[0].Amount)
	assert.Equal(t, "INR", gateway.requests[0].Currency)
	assert.Equal(t, "7", gateway.requests[0].Notes["user_id"])

	assert.NoError(t, svc.ConfirmAmount(ctx, "order_test_1", decimal.NewFromInt(2124)))
	assert.ErrorIs(t, svc.ConfirmAmount(ctx, "order_test_1", decimal.NewFromInt(2000)), ErrAmountMismatch)

	// an expired intent does not block completion
	env.mr.FastForward(2 * time.Hour)
	assert.NoError(t, svc.ConfirmAmount(ctx, "order_test_1", decimal.NewFromInt(2000)))
}

func TestPaymentService_Errors(t *testing.T) {
	env := newTestEnv(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(gateway, env.redis, time.Hour, env.log)
	ctx := context.Background()

	_, err := svc.CreatePaymentOrder(ctx, 7, decimal.Zero, "cart-7", "")
	assert.ErrorIs(t, err, ErrEmptyCart)

	gateway.err = errBoom
	_, err = svc.CreatePaymentOrder(ctx, 7, decimal.NewFromInt(10), "cart-7", "")
	assert.ErrorIs(t, err, errBoom)

	assert.NoError(t, svc.VerifySignature("order_1", "pay_1", "order_1|pay_1"))
	assert.ErrorIs(t, svc.VerifySignature("order_1", "pay_1", "forged"), razorpay.ErrInvalidSignature)
}
