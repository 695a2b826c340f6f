package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/repository"
	"storefront/internal/services"
	"storefront/pkg/razorpay"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var notFoundErrors = []error{
	repository.ErrProductNotFound,
	repository.ErrVariantNotFound,
	repository.ErrKitNotFound,
	repository.ErrComboNotFound,
	repository.ErrCartItemNotFound,
	repository.ErrCouponNotFound,
	repository.ErrOrderNotFound,
}

var badRequestErrors = []error{
	services.ErrInvalidQuantity,
	services.ErrInvalidReference,
	services.ErrEmptyCart,
	services.ErrInvalidStatus,
	services.ErrMissingCustomer,
	services.ErrAmountMismatch,
	services.ErrCouponInactive,
	services.ErrCouponNotStarted,
	services.ErrCouponExpired,
	services.ErrCouponExhausted,
	services.ErrCouponBelowMinimum,
	repository.ErrInsufficientStock,
}

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError is the only place service errors become status codes.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, razorpay.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid payment signature"})
	case matches(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrOrderInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case matches(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
