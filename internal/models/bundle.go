package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Kit and Combo are both bundles of product variants sold at one bundle price.
// They live in separate tables because the storefront lists them separately.
type Kit struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	Name       string           `json:"name" gorm:"not null"`
	Image      string           `json:"image"`
	Price      decimal.Decimal  `json:"kit_price" gorm:"column:kit_price;type:decimal(12,2);not null"`
	PriceExGST *decimal.Decimal `json:"kit_price_ex_gst,omitempty" gorm:"column:kit_price_ex_gst;type:decimal(12,2)"`
	IsActive   bool             `json:"is_active" gorm:"default:true"`
	Products   []KitProduct     `json:"products,omitempty" gorm:"foreignKey:KitID"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `json:"deleted_at" gorm:"index"`
}

type KitProduct struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	KitID     uint     `json:"kit_id" gorm:"not null;index"`
	ProductID uint     `json:"product_id" gorm:"not null"`
	VariantID *uint    `json:"variant_id,omitempty"`
	Quantity  int      `json:"quantity" gorm:"not null;default:1"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type Combo struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	Name       string           `json:"name" gorm:"not null"`
	Image      string           `json:"image"`
	Price      decimal.Decimal  `json:"combo_price" gorm:"column:combo_price;type:decimal(12,2);not null"`
	PriceExGST *decimal.Decimal `json:"combo_price_ex_gst,omitempty" gorm:"column:combo_price_ex_gst;type:decimal(12,2)"`
	IsActive   bool             `json:"is_active" gorm:"default:true"`
	Products   []ComboProduct   `json:"products,omitempty" gorm:"foreignKey:ComboID"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `json:"deleted_at" gorm:"index"`
}

type ComboProduct struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	ComboID   uint     `json:"combo_id" gorm:"not null;index"`
	ProductID uint     `json:"product_id" gorm:"not null"`
	VariantID *uint    `json:"variant_id,omitempty"`
	Quantity  int      `json:"quantity" gorm:"not null;default:1"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// BundleComponent is a kit or combo join row flattened for stock deduction.
type BundleComponent struct {
	ProductID uint
	VariantID *uint
	Quantity  int
}
