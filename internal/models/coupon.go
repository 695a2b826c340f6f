package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon carries either Percent or Discount. Discount is a flat GST-inclusive amount.
type Coupon struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	Code          string           `json:"code" gorm:"uniqueIndex;not null"`
	Percent       *decimal.Decimal `json:"percent,omitempty" gorm:"type:decimal(5,2)"`
	Discount      *decimal.Decimal `json:"discount,omitempty" gorm:"type:decimal(12,2)"`
	MinOrderValue decimal.Decimal  `json:"min_order_value" gorm:"type:decimal(12,2);default:0"`
	ValidFrom     *time.Time       `json:"valid_from"`
	ValidTo       *time.Time       `json:"valid_to"`
	UsageLimit    int              `json:"usage_limit" gorm:"default:0"` // 0 means unlimited
	UsedCount     int              `json:"used_count" gorm:"default:0"`
	IsActive      bool             `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `json:"deleted_at" gorm:"index"`
}

func (c *Coupon) Exhausted() bool {
	return c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit
}
