package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLogger replaces gin's default logger with zap.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func NewRouter(api *APIHandler, checkout *CheckoutHandler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(log), gin.Recovery())

	group := router.Group("/api")
	{
		group.GET("/health", api.Health)

		// Cart
		group.GET("/cart/:user_id", api.GetCart)
		group.POST("/cart", api.AddCartItem)
		group.PUT("/cart/items/:id", api.UpdateCartItem)
		group.DELETE("/cart/items/:id", api.RemoveCartItem)

		// Checkout
		group.POST("/coupons/validate", api.ValidateCoupon)
		group.POST("/checkout/summary", checkout.Summary)
		group.POST("/checkout/payment-order", checkout.CreatePaymentOrder)
		group.POST("/checkout/complete", checkout.Complete)

		// Orders
		group.GET("/orders/:id", api.GetOrder)
		group.GET("/orders/:id/sales", api.GetOrderSales)
		group.PUT("/orders/:id/status", api.UpdateOrderStatus)
		group.GET("/orders/number/:number", api.GetOrderByNumber)
		group.GET("/users/:user_id/orders", api.ListUserOrders)

		// Admin
		group.POST("/admin/variants/:id/stock", api.AdjustVariantStock)
		group.GET("/admin/orders", api.ListOrders)
		group.GET("/admin/sales", api.SalesReport)
	}

	return router
}
