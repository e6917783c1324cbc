package server

import (
	"net/http"

	"github.com/abduss/storefront/internal/session"
	"github.com/gin-gonic/gin"
)

const sellerDashboardOrders = 5

func (h *handler) registerSellerRoutes(router *gin.Engine) {
	router.GET(session.SellerHome, h.guarded(session.SellerHome), h.sellerDashboard)

	orders := router.Group("/seller/orders", h.guarded("/seller/orders"))
	orders.GET("", h.sellerOrders)
	orders.PUT("/:id/status", h.updateSellerOrder)
}

func (h *handler) sellerDashboard(c *gin.Context) {
	page, err := h.deps.Orders.SellerOrders(c.Request.Context(), "", 0, sellerDashboardOrders)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recentOrders": page.Content, "totalOrders": page.TotalElements})
}

func (h *handler) sellerOrders(c *gin.Context) {
	page, err := h.deps.Orders.SellerOrders(c.Request.Context(), c.Query("status"), queryInt(c, "page", 0), queryInt(c, "size", 10))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handler) updateSellerOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o, err := h.deps.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
