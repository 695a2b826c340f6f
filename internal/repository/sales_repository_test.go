package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleRow(orderID uint, kind string, productID, kitID *uint, name string, qty int, unit int64, soldAt time.Time) *models.SalesRecord {
	price := decimal.NewFromInt(unit)
	return &models.SalesRecord{
		OrderID:    orderID,
		ItemKind:   kind,
		ProductID:  productID,
		KitID:      kitID,
		ItemName:   name,
		Quantity:   qty,
		UnitPrice:  price,
		TotalPrice: price.Mul(decimal.NewFromInt(int64(qty))),
		SoldAt:     soldAt,
	}
}

func TestSalesRepository_SummarizeByItem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSalesRepository(db)
	ctx := context.Background()

	oil, kit := uint(1), uint(2)
	midnight := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	day := midnight.AddDate(0, 0, -1)

	rows := []*models.SalesRecord{
		saleRow(1, "product", &oil, nil, "Groundnut oil", 2, 1180, day.Add(9*time.Hour)),
		saleRow(2, "product", &oil, nil, "Groundnut oil", 1, 649, day.Add(15*time.Hour)),
		saleRow(2, "kit", nil, &kit, "Kitchen starter kit", 1, 999, day.Add(15*time.Hour)),
		// first instant of the next day
		saleRow(3, "kit", nil, &kit, "Kitchen starter kit", 5, 999, midnight),
	}
	for _, r := range rows {
		require.NoError(t, repo.Create(ctx, r))
	}

	summary, err := repo.SummarizeByItem(ctx, day, midnight)
	require.NoError(t, err)
	require.Len(t, summary, 2)

	assert.Equal(t, "product", summary[0].ItemKind)
	require.NotNil(t, summary[0].ProductID)
	assert.Equal(t, oil, *summary[0].ProductID)
	assert.Nil(t, summary[0].KitID)
	assert.Equal(t, "Groundnut oil", summary[0].ItemName)
	assert.Equal(t, 3, summary[0].Units)
	assert.Equal(t, "3009.00", summary[0].Revenue.StringFixed(2))

	assert.Equal(t, "kit", summary[1].ItemKind)
	require.NotNil(t, summary[1].KitID)
	assert.Equal(t, 1, summary[1].Units)
	assert.Equal(t, "999.00", summary[1].Revenue.StringFixed(2))

	next, err := repo.SummarizeByItem(ctx, midnight, midnight.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, 5, next[0].Units)
}
