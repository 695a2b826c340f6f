package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(number string) *models.Order {
	productID := uint(1)
	return &models.Order{
		PublicID:      uuid.NewString(),
		OrderNumber:   number,
		UserID:        42,
		CustomerName:  "Asha Rao",
		CustomerEmail: "asha@example.com",
		ShippingAddress: models.Address{
			Line1: "12 MG Road", City: "Bengaluru", State: "Karnataka", Pincode: "560001", Country: "India",
		},
		Items: []models.LineItem{{
			Kind:      models.KindProduct,
			ProductID: &productID,
			Name:      "Groundnut oil",
			Price:     decimal.NewFromInt(1180),
			Quantity:  2,
			Variant:   &models.VariantSelection{VariantID: 3, Label: "1 L"},
		}},
		Subtotal: decimal.NewFromInt(2360),
		Total:    decimal.NewFromInt(2360),
		Status:   string(models.OrderConfirmed),
	}
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder("20261019-0001")
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)

	got, err := repo.GetByNumber(ctx, "20261019-0001")
	require.NoError(t, err)
	assert.Equal(t, order.PublicID, got.PublicID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Groundnut oil", got.Items[0].Name)
	assert.Equal(t, "1 L", got.Items[0].VariantLabel())
	assert.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(1180)))
	assert.Equal(t, "Bengaluru", got.ShippingAddress.City)
}

func TestOrderRepository_OrderNumberIsUnique(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestOrder("20261019-0002")))
	err := repo.Create(ctx, newTestOrder("20261019-0002"))

	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestOrderRepository_UpdateFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder("20261019-0003")
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.UpdateFields(ctx, order.ID, map[string]interface{}{"status": "shipped"}))
	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "shipped", got.Status)

	assert.ErrorIs(t, repo.UpdateFields(ctx, 9999, map[string]interface{}{"status": "shipped"}), ErrOrderNotFound)
}

func TestOrderRepository_GetByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestOrder("20261019-0004")))
	require.NoError(t, repo.Create(ctx, newTestOrder("20261019-0005")))

	orders, err := repo.GetByUserID(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	_, err = repo.GetByPaymentID(ctx, "pay_missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderRepository_GetByDateRangeExcludesEnd(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	midnight := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	inside := newTestOrder("20261019-0006")
	inside.CreatedAt = midnight.Add(-time.Minute)
	atEnd := newTestOrder("20261020-0001")
	atEnd.CreatedAt = midnight
	require.NoError(t, repo.Create(ctx, inside))
	require.NoError(t, repo.Create(ctx, atEnd))

	orders, err := repo.GetByDateRange(ctx, midnight.AddDate(0, 0, -1), midnight)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "20261019-0006", orders[0].OrderNumber)

	orders, err = repo.GetByDateRange(ctx, midnight, midnight.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "20261020-0001", orders[0].OrderNumber)
}
