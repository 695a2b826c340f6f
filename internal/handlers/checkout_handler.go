package handlers

import (
	"fmt"
	"net/http"
	"time"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckoutHandler serves the payment flow: gateway order creation and the
// post-payment callback that completes the order.
type CheckoutHandler struct {
	cartService    services.CartService
	paymentService services.PaymentService
	orderService   services.OrderService
	keyID          string
	log            *zap.Logger
}

func NewCheckoutHandler(
	cartService services.CartService,
	paymentService services.PaymentService,
	orderService services.OrderService,
	keyID string,
	log *zap.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		cartService:    cartService,
		paymentService: paymentService,
		orderService:   orderService,
		keyID:          keyID,
		log:            log,
	}
}

func (h *CheckoutHandler) Summary(c *gin.Context) {
	var req struct {
		Items      []models.LineItem `json:"items"`
		CouponCode string            `json:"coupon_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	view, err := h.cartService.Summarize(c.Request.Context(), req.Items, req.CouponCode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CheckoutHandler) CreatePaymentOrder(c *gin.Context) {
	var req struct {
		UserID     uint   `json:"user_id" binding:"required"`
		CouponCode string `json:"coupon_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := c.Request.Context()
	view, err := h.cartService.Checkout(ctx, req.UserID, req.CouponCode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(view.Items) == 0 {
		respondError(c, h.log, services.ErrEmptyCart)
		return
	}

	receipt := fmt.Sprintf("cart-%d-%d", req.UserID, time.Now().Unix())
	order, err := h.paymentService.CreatePaymentOrder(ctx, req.UserID, view.Summary.FinalTotal, receipt, req.CouponCode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key_id":        h.keyID,
		"payment_order": order,
		"summary":       view.Summary,
		"coupon_error":  view.CouponError,
	})
}

type completeCheckoutRequest struct {
	UserID            uint           `json:"user_id" binding:"required"`
	RazorpayOrderID   string         `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string         `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string         `json:"razorpay_signature" binding:"required"`
	CustomerName      string         `json:"customer_name"`
	CustomerEmail     string         `json:"customer_email"`
	CustomerPhone     string         `json:"customer_phone"`
	ShippingAddress   models.Address `json:"shipping_address"`
	CouponCode        string         `json:"coupon_code"`
}

// Complete verifies the gateway signature, re-prices the cart and completes the order.
func (h *CheckoutHandler) Complete(c *gin.Context) {
	var req completeCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.paymentService.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		h.log.Warn("payment signature rejected",
			zap.Uint("user_id", req.UserID),
			zap.String("payment_order_id", req.RazorpayOrderID))
		respondError(c, h.log, err)
		return
	}

	ctx := c.Request.Context()
	view, err := h.cartService.Checkout(ctx, req.UserID, req.CouponCode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(view.Items) > 0 {
		if err := h.paymentService.ConfirmAmount(ctx, req.RazorpayOrderID, view.Summary.FinalTotal); err != nil {
			respondError(c, h.log, err)
			return
		}
	}

	result, err := h.orderService.CompleteOrder(ctx, services.CompleteOrderInput{
		UserID:          req.UserID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Items:           view.Items,
		Summary:         view.Summary,
		PaymentOrderID:  req.RazorpayOrderID,
		PaymentID:       req.RazorpayPaymentID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyCompleted {
		status = http.StatusOK
	}
	c.JSON(status, result)
}
