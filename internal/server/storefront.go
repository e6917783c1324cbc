package server

import (
	"net/http"
	"strconv"

	"github.com/abduss/storefront/internal/account"
	"github.com/abduss/storefront/internal/catalog"
	"github.com/abduss/storefront/internal/gateway"
	"github.com/abduss/storefront/internal/order"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const homeShelfSize = 8

func (h *handler) registerStorefrontRoutes(router *gin.Engine) {
	router.GET("/", h.guarded("/"), h.home)
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.showProduct)
	router.GET("/categories", h.listCategories)

	profile := router.Group("/profile", h.guarded("/profile"))
	profile.GET("", h.showProfile)
	profile.PUT("", h.updateProfile)
	profile.POST("/password", h.changePassword)

	cart := router.Group("/cart", h.guarded("/cart"))
	cart.GET("", h.showCart)
	cart.DELETE("", h.clearCart)
	cart.POST("/items", h.addCartItem)
	cart.PUT("/items/:id", h.updateCartItem)
	cart.DELETE("/items/:id", h.removeCartItem)

	orders := router.Group("/orders", h.guarded("/orders"))
	orders.GET("", h.myOrders)
	orders.POST("", h.placeOrder)
	orders.GET("/:id", h.showOrder)
	orders.POST("/:id/cancel", h.cancelOrder)
	orders.POST("/:id/payment", h.payOrder)
}

// home loads the landing shelves concurrently.
func (h *handler) home(c *gin.Context) {
	var (
		newest, top []catalog.Product
		categories  []catalog.Category
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		newest, err = h.deps.Catalog.Newest(ctx, homeShelfSize)
		return err
	})
	g.Go(func() (err error) {
		top, err = h.deps.Catalog.TopSelling(ctx, homeShelfSize)
		return err
	})
	g.Go(func() (err error) {
		categories, err = h.deps.Catalog.Categories(ctx, catalog.CategoryFilter{RootOnly: true})
		return err
	})
	if err := g.Wait(); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"newest": newest, "topSelling": top, "categories": categories})
}

func (h *handler) listProducts(c *gin.Context) {
	ctx := c.Request.Context()
	q := pageQuery(c)

	var (
		page gateway.Page[catalog.Product]
		err  error
	)
	switch {
	case c.Query("keyword") != "":
		page, err = h.deps.Catalog.Search(ctx, c.Query("keyword"), q.Page, q.Size)
	case c.Query("categoryId") != "":
		id, convErr := strconv.ParseInt(c.Query("categoryId"), 10, 64)
		if convErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categoryId"})
			return
		}
		page, err = h.deps.Catalog.ByCategory(ctx, id, q.Page, q.Size)
	default:
		page, err = h.deps.Catalog.Products(ctx, q)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) showProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.deps.Catalog.Product(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	reviews, err := h.deps.Reviews.ListByProduct(c.Request.Context(), id, gateway.PageQuery{Size: 5})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product, "reviews": reviews})
}

func (h *handler) listCategories(c *gin.Context) {
	active := true
	cats, err := h.deps.Catalog.Categories(c.Request.Context(), catalog.CategoryFilter{
		Keyword:  c.Query("keyword"),
		IsActive: &active,
		RootOnly: c.Query("rootOnly") == "true",
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *handler) showProfile(c *gin.Context) {
	me, err := h.deps.Accounts.Me(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

func (h *handler) updateProfile(c *gin.Context) {
	var input account.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	me, err := h.deps.Accounts.UpdateProfile(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

func (h *handler) changePassword(c *gin.Context) {
	var input account.PasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.deps.Accounts.ChangePassword(c.Request.Context(), input); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) showCart(c *gin.Context) {
	cart, err := h.deps.Cart.Get(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type addCartItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

func (h *handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart, err := h.deps.Cart.AddItem(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handler) updateCartItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cart, err := h.deps.Cart.UpdateQuantity(c.Request.Context(), id, queryInt(c, "quantity", 1))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handler) removeCartItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cart, err := h.deps.Cart.RemoveItem(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handler) clearCart(c *gin.Context) {
	if err := h.deps.Cart.Clear(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) myOrders(c *gin.Context) {
	page, err := h.deps.Orders.MyOrders(c.Request.Context(), queryInt(c, "page", 0), queryInt(c, "size", 10))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) placeOrder(c *gin.Context) {
	var input order.PlaceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	placed, err := h.deps.Orders.Place(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placed)
}

func (h *handler) showOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.deps.Orders.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handler) cancelOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.deps.Orders.Cancel(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type payOrderRequest struct {
	Method string `json:"method"`
}

// payOrder starts an online payment and returns the provider's URL.
func (h *handler) payOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req payOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o, err := h.deps.Orders.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	link, err := h.deps.Orders.CreatePayment(c.Request.Context(), req.Method, o.OrderCode)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paymentUrl": link, "orderCode": o.OrderCode})
}
