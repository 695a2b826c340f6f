package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type APIHandler struct {
	cartService   services.CartService
	couponService services.CouponService
	orderService  services.OrderService
	log           *zap.Logger
}

func NewAPIHandler(
	cartService services.CartService,
	couponService services.CouponService,
	orderService services.OrderService,
	log *zap.Logger,
) *APIHandler {
	return &APIHandler{
		cartService:   cartService,
		couponService: couponService,
		orderService:  orderService,
		log:           log,
	}
}

func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Cart endpoints
func (h *APIHandler) GetCart(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	view, err := h.cartService.Checkout(c.Request.Context(), userID, c.Query("coupon"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type addCartItemRequest struct {
	UserID    uint            `json:"user_id" binding:"required"`
	ProductID *uint           `json:"product_id"`
	KitID     *uint           `json:"kit_id"`
	ComboID   *uint           `json:"combo_id"`
	Variant   json.RawMessage `json:"variant"`
	Quantity  int             `json:"quantity"`
}

// variantText stores a JSON string's contents and any other JSON value verbatim.
func variantText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

func (h *APIHandler) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.cartService.AddItem(c.Request.Context(), &models.CartItem{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		KitID:     req.KitID,
		ComboID:   req.ComboID,
		Variant:   variantText(req.Variant),
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *APIHandler) UpdateCartItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.cartService.UpdateQuantity(c.Request.Context(), id, *req.Quantity); err != nil {
		respondError(c, h.log, err)
		return
	}

	status := "updated"
	if *req.Quantity <= 0 {
		status = "removed"
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

func (h *APIHandler) RemoveCartItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "removed"})
}

// Coupon endpoints
func (h *APIHandler) ValidateCoupon(c *gin.Context) {
	var req struct {
		Code     string          `json:"code" binding:"required"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	coupon, err := h.couponService.Validate(c.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "coupon": coupon})
}

// Order endpoints
func (h *APIHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) GetOrderByNumber(c *gin.Context) {
	order, err := h.orderService.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) GetOrderSales(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	records, err := h.orderService.GetSales(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id, "sales": records})
}

func (h *APIHandler) ListUserOrders(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "orders": orders})
}

func (h *APIHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// Admin endpoints
func (h *APIHandler) AdjustVariantStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Quantity  int    `json:"quantity" binding:"required"`
		Operation string `json:"operation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	op := repository.StockOperation(req.Operation)
	switch op {
	case "":
		op = repository.StockIncrement
	case repository.StockIncrement, repository.StockDecrement:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Operation must be increment or decrement"})
		return
	}

	if err := h.orderService.AdjustStock(c.Request.Context(), id, req.Quantity, op); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variant_id": id, "quantity": req.Quantity, "operation": op})
}

// dateRange reads ?from=YYYY-MM-DD&to=YYYY-MM-DD; to is inclusive and defaults to today.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	to := time.Now()
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return time.Time{}, time.Time{}, false
		}
		to = t
	}
	from := to.AddDate(0, 0, -30)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return time.Time{}, time.Time{}, false
		}
		from = t
	}

	y, m, d := to.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)
	y, m, d = from.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	return start, end, true
}

func (h *APIHandler) ListOrders(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrdersByDateRange(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": start, "to": end, "orders": orders})
}

func (h *APIHandler) SalesReport(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	report, err := h.orderService.SalesReport(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
