package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrKitNotFound       = errors.New("kit not found")
	ErrComboNotFound     = errors.New("combo not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// notFound maps gorm's not-found error onto the repository sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// IsUniqueViolation reports unique-constraint failures from postgres and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
