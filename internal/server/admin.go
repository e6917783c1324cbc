package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/abduss/storefront/internal/account"
	"github.com/abduss/storefront/internal/catalog"
	"github.com/abduss/storefront/internal/report"
	"github.com/abduss/storefront/internal/review"
	"github.com/abduss/storefront/internal/session"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func (h *handler) registerAdminRoutes(router *gin.Engine) {
	router.GET(session.AdminHome, h.guarded(session.AdminHome), h.adminDashboard)

	reports := router.Group("/admin/reports", h.guarded(session.AdminHome))
	reports.GET("/revenue", h.revenueReport)
	reports.GET("/orders/status", h.orderStatusReport)
	reports.GET("/orders/export", h.exportOrders)

	users := router.Group("/admin/users", h.guarded("/admin/users"))
	users.GET("", h.listUsers)
	users.POST("", h.createUser)
	users.GET("/:id", h.showUser)
	users.PUT("/:id", h.updateUser)
	users.PATCH("/:id/status", h.setUserStatus)
	users.DELETE("/:id", h.deleteUser)

	products := router.Group("/admin/products", h.guarded("/admin/products"))
	products.GET("", h.manageProducts)
	products.POST("", h.createProduct)
	products.PUT("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)

	reviews := router.Group("/admin/reviews", h.guarded("/admin/reviews"))
	reviews.GET("", h.manageReviews)
	reviews.GET("/:id", h.showReview)
	reviews.PATCH("/:id/status", h.moderateReview)
	reviews.DELETE("/:id", h.deleteReview)

	categories := router.Group("/admin/categories", h.guarded("/admin/categories"))
	categories.GET("", h.manageCategories)
	categories.POST("", h.createCategory)
	categories.PUT("/:id", h.updateCategory)
	categories.DELETE("/:id", h.deleteCategory)
}

func (h *handler) adminDashboard(c *gin.Context) {
	var (
		orders report.OrderCount
		stats  review.Stats
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		orders, err = h.deps.Reports.CountOrders(ctx, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() (err error) {
		stats, err = h.deps.Reviews.Stats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "reviews": stats})
}

func (h *handler) revenueReport(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	rows, err := h.deps.Reports.Revenue(c.Request.Context(), from, to)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revenue": rows})
}

func (h *handler) orderStatusReport(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	rows, err := h.deps.Reports.OrderStatus(c.Request.Context(), from, to, c.QueryArray("statuses")...)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": rows})
}

// exportOrders streams the spreadsheet, or archives it and returns a download
// link when archive=true.
func (h *handler) exportOrders(c *gin.Context) {
	year := queryInt(c, "year", time.Now().Year())
	month := queryInt(c, "month", 0)
	archive := c.Query("archive") == "true"
	if archive && h.deps.Archiver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report archive is not configured"})
		return
	}

	exp, err := h.deps.Reports.ExportOrders(c.Request.Context(), year, month)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !archive {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exp.Filename))
		c.Data(http.StatusOK, exp.ContentType, exp.Data)
		return
	}

	archived, err := h.deps.Archiver.Archive(c.Request.Context(), exp)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"object":    archived.Object,
		"size":      archived.Size,
		"url":       archived.URL,
		"expiresAt": archived.Expires.UTC().Format(time.RFC3339),
	})
}

func (h *handler) listUsers(c *gin.Context) {
	q := pageQuery(c)
	page, err := h.deps.Accounts.ListUsers(c.Request.Context(), account.UserFilter{
		Page:     q.Page,
		Size:     q.Size,
		SortBy:   q.SortBy,
		SortDir:  q.SortDir,
		Role:     c.Query("role"),
		Status:   c.Query("status"),
		Keyword:  c.Query("keyword"),
		DateFrom: c.Query("dateFrom"),
		DateTo:   c.Query("dateTo"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) showUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := h.deps.Accounts.User(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handler) createUser(c *gin.Context) {
	var input account.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.deps.Accounts.CreateUser(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *handler) updateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input account.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.deps.Accounts.UpdateUser(c.Request.Context(), id, input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handler) setUserStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Accounts.SetStatus(c.Request.Context(), id, c.Query("status")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Accounts.DeleteUser(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) manageProducts(c *gin.Context) {
	page, err := h.deps.Catalog.Management(c.Request.Context(), pageQuery(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) createProduct(c *gin.Context) {
	var input catalog.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.deps.Catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input catalog.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.deps.Catalog.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) manageReviews(c *gin.Context) {
	page, err := h.deps.Reviews.ListManagement(c.Request.Context(), pageQuery(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) showReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.deps.Reviews.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type moderateReviewRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handler) moderateReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req moderateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := review.ParseStatus(req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.deps.Reviews.UpdateStatus(c.Request.Context(), id, status); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) deleteReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Reviews.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) manageCategories(c *gin.Context) {
	filter := catalog.CategoryFilter{Keyword: c.Query("keyword"), RootOnly: c.Query("rootOnly") == "true"}
	if raw := c.Query("isActive"); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	if raw := c.Query("parentId"); raw != "" {
		parent, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parentId"})
			return
		}
		filter.ParentID = &parent
	}
	cats, err := h.deps.Catalog.Categories(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *handler) createCategory(c *gin.Context) {
	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat, err := h.deps.Catalog.CreateCategory(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *handler) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat, err := h.deps.Catalog.UpdateCategory(c.Request.Context(), id, input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handler) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
