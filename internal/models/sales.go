package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is the sales ledger row written for every ordered line item.
type SalesRecord struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	OrderID       uint            `json:"order_id" gorm:"not null;index"`
	OrderNumber   string          `json:"order_number" gorm:"index"`
	ItemKind      string          `json:"item_kind" gorm:"not null"` // product, kit, combo
	ProductID     *uint           `json:"product_id,omitempty"`
	KitID         *uint           `json:"kit_id,omitempty"`
	ComboID       *uint           `json:"combo_id,omitempty"`
	VariantID     *uint           `json:"variant_id,omitempty"`
	ItemName      string          `json:"item_name" gorm:"not null"`
	VariantLabel  string          `json:"variant_label"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	TotalPrice    decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
	StockDeducted bool            `json:"stock_deducted" gorm:"default:false"`
	SoldAt        time.Time       `json:"sold_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SalesSummary is the ledger aggregated per product, kit or combo.
type SalesSummary struct {
	ItemKind  string          `json:"item_kind"`
	ProductID *uint           `json:"product_id,omitempty"`
	KitID     *uint           `json:"kit_id,omitempty"`
	ComboID   *uint           `json:"combo_id,omitempty"`
	ItemName  string          `json:"item_name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}
