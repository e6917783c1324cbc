package server

import (
	"errors"
	"net/http"

	"github.com/abduss/storefront/internal/account"
	"github.com/abduss/storefront/internal/auth"
	"github.com/abduss/storefront/internal/cart"
	"github.com/abduss/storefront/internal/catalog"
	"github.com/abduss/storefront/internal/gateway"
	"github.com/abduss/storefront/internal/order"
	"github.com/abduss/storefront/internal/report"
	"github.com/abduss/storefront/internal/review"
	"github.com/abduss/storefront/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var badRequest = []error{
	auth.ErrInvalidInput,
	account.ErrInvalidInput,
	catalog.ErrInvalidInput,
	order.ErrInvalidInput,
	cart.ErrInvalidQuantity,
	review.ErrInvalidStatus,
	report.ErrInvalidRange,
}

// writeError maps service and gateway errors onto console responses. An
// expired session becomes a redirect to the login route.
func (h *handler) writeError(c *gin.Context, err error) {
	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, gateway.ErrSessionExpired):
		c.Redirect(http.StatusFound, session.LoginRoute)
	case errors.Is(err, gateway.ErrRefreshAbandoned):
		h.logger.Info("request ended during token refresh", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request cancelled"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case isBadRequest(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.Status)
		}
		c.JSON(apiErr.Status, gin.H{"error": msg, "kind": apiErr.Kind.String()})
	case errors.Is(err, gateway.ErrNetwork):
		h.logger.Warn("backend unreachable", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
	default:
		h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
	c.Abort()
}

func isBadRequest(err error) bool {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
