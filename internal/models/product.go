package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	Name       string           `json:"name" gorm:"not null"`
	Slug       string           `json:"slug" gorm:"uniqueIndex"`
	Image      string           `json:"image"`
	Price      decimal.Decimal  `json:"price" gorm:"type:decimal(12,2);not null"` // GST inclusive
	PriceExGST *decimal.Decimal `json:"price_ex_gst,omitempty" gorm:"type:decimal(12,2)"`
	IsActive   bool             `json:"is_active" gorm:"default:true"`
	Variants   []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `json:"deleted_at" gorm:"index"`
}

// ProductVariant is one purchasable configuration of a product and owns the stock count.
type ProductVariant struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	ProductID  uint             `json:"product_id" gorm:"not null;index"`
	Label      string           `json:"label" gorm:"not null"` // e.g. "500 ml", "XL / Red"
	SKU        string           `json:"sku" gorm:"index"`
	Price      decimal.Decimal  `json:"price" gorm:"type:decimal(12,2);not null"`
	PriceExGST *decimal.Decimal `json:"price_ex_gst,omitempty" gorm:"type:decimal(12,2)"`
	Stock      int              `json:"stock" gorm:"not null;default:0"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// FindVariant looks a variant up by id first and then by label.
func (p *Product) FindVariant(id uint, label string) *ProductVariant {
	if id != 0 {
		for i := range p.Variants {
			if p.Variants[i].ID == id {
				return &p.Variants[i]
			}
		}
	}
	if label != "" {
		for i := range p.Variants {
			if p.Variants[i].Label == label {
				return &p.Variants[i]
			}
		}
	}
	return nil
}
