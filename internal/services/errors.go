package services

import "errors"

var (
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidReference = errors.New("cart item must reference exactly one of product, kit or combo")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrMissingCustomer  = errors.New("customer name is required")
	ErrOrderInProgress  = errors.New("order completion already in progress for this payment")
	ErrAmountMismatch   = errors.New("payment amount does not match cart total")

	ErrCouponInactive     = errors.New("coupon is not active")
	ErrCouponNotStarted   = errors.New("coupon is not valid yet")
	ErrCouponExpired      = errors.New("coupon has expired")
	ErrCouponExhausted    = errors.New("coupon usage limit reached")
	ErrCouponBelowMinimum = errors.New("order value is below the coupon minimum")
)
