package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	PublicID        string          `json:"public_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;not null"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	CustomerName    string          `json:"customer_name" gorm:"not null"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress Address         `json:"shipping_address" gorm:"serializer:json;type:text"`
	Items           []LineItem      `json:"items" gorm:"serializer:json;type:text"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2);default:0"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	CouponCode      string          `json:"coupon_code"`
	Status          string          `json:"status" gorm:"default:'pending'"`
	PaymentStatus   string          `json:"payment_status" gorm:"default:'pending'"` // pending, paid, failed
	PaymentOrderID  string          `json:"payment_order_id"`
	PaymentID       string          `json:"payment_id" gorm:"index"`
	ShippingOrderID string          `json:"shipping_order_id"`
	ShipmentID      string          `json:"shipment_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}

type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

type OrderStatus string

// No transition table is enforced between these; any of them may be written at any time.
const (
	OrderPending       OrderStatus = "pending"
	OrderConfirmed     OrderStatus = "confirmed"
	OrderProcessing    OrderStatus = "processing"
	OrderShipped       OrderStatus = "shipped"
	OrderDelivered     OrderStatus = "delivered"
	OrderPaymentFailed OrderStatus = "payment_failed"
	OrderCancelled     OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
		OrderDelivered, OrderPaymentFailed, OrderCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)
