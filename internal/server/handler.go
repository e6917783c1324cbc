package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/abduss/storefront/internal/auth"
	"github.com/abduss/storefront/internal/gateway"
	"github.com/abduss/storefront/internal/guard"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type handler struct {
	deps   Dependencies
	logger *zap.Logger
}

// guarded returns middleware enforcing the guard route registered for path.
// Every console page must have a route in guard.Routes.
func (h *handler) guarded(path string) gin.HandlerFunc {
	route, ok := guard.Lookup(path)
	if !ok {
		panic("server: no guard route for " + path)
	}
	return func(c *gin.Context) {
		decision := route.Check(h.deps.Auth.Session())
		if !decision.Allow {
			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *handler) registerSessionRoutes(router *gin.Engine) {
	router.POST("/login", h.login)
	router.POST("/register", h.register)
	router.POST("/logout", h.logout)
	router.GET("/session", h.currentSession)
}

func (h *handler) login(c *gin.Context) {
	var input auth.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.deps.Auth.Login(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": h.deps.Auth.RedirectPath(), "user": result.User})
}

func (h *handler) register(c *gin.Context) {
	var input auth.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.deps.Auth.Register(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"redirect": h.deps.Auth.RedirectPath(), "user": result.User})
}

func (h *handler) logout(c *gin.Context) {
	h.deps.Auth.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

func (h *handler) currentSession(c *gin.Context) {
	sess := h.deps.Auth.Session()
	body := gin.H{"authenticated": sess.Authenticated, "role": sess.Role(), "home": h.deps.Auth.RedirectPath()}
	if sess.Profile != nil {
		body["user"] = sess.Profile
	}
	if exp, ok := h.deps.Auth.TokenExpiry(); ok {
		body["tokenExpiresAt"] = exp.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, body)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil {
		return v
	}
	return fallback
}

func pageQuery(c *gin.Context) gateway.PageQuery {
	return gateway.PageQuery{
		Page:    queryInt(c, "page", 0),
		Size:    queryInt(c, "size", 0),
		SortBy:  c.Query("sortBy"),
		SortDir: c.Query("sortDir"),
	}
}

func queryDate(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ", expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}
