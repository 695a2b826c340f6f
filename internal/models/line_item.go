package models

import "github.com/shopspring/decimal"

type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindKit     ItemKind = "kit"
	KindCombo   ItemKind = "combo"
)

// LineItem is a self-contained, priced cart or order line. Orders persist a frozen
// copy of these, never live references.
type LineItem struct {
	Kind             ItemKind          `json:"kind"`
	CartItemID       uint              `json:"cart_item_id,omitempty"`
	ProductID        *uint             `json:"product_id,omitempty"`
	KitID            *uint             `json:"kit_id,omitempty"`
	ComboID          *uint             `json:"combo_id,omitempty"`
	Name             string            `json:"name"`
	Image            string            `json:"image"`
	Price            decimal.Decimal   `json:"price"` // GST inclusive, per unit
	PriceExGST       *decimal.Decimal  `json:"price_ex_gst,omitempty"`
	Quantity         int               `json:"quantity"`
	Variant          *VariantSelection `json:"variant,omitempty"`
	VariantFallback  bool              `json:"variant_fallback,omitempty"`
	IncludedProducts []IncludedProduct `json:"included_products,omitempty"`
}

// IncludedProduct is one constituent of a kit or combo line.
type IncludedProduct struct {
	ProductID       uint             `json:"product_id"`
	Name            string           `json:"name"`
	Image           string           `json:"image"`
	Quantity        int              `json:"quantity"`
	Variant         VariantSelection `json:"variant"`
	VariantFallback bool             `json:"variant_fallback,omitempty"`
}

func (l LineItem) TotalPrice() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l LineItem) VariantLabel() string {
	if l.Variant == nil {
		return DefaultVariantLabel
	}
	return l.Variant.Label
}
