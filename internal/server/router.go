// Package server hosts the storefront console: a local gin app that exposes
// the storefront views as JSON behind the route guard.
package server

import (
	"context"
	"net/http"

	"github.com/abduss/storefront/internal/account"
	"github.com/abduss/storefront/internal/auth"
	"github.com/abduss/storefront/internal/cart"
	"github.com/abduss/storefront/internal/catalog"
	"github.com/abduss/storefront/internal/config"
	"github.com/abduss/storefront/internal/logger"
	"github.com/abduss/storefront/internal/metrics"
	"github.com/abduss/storefront/internal/order"
	"github.com/abduss/storefront/internal/report"
	"github.com/abduss/storefront/internal/review"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type storeChecker interface {
	Check(ctx context.Context) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups the services required by the console router. DB,
// ObjectStore and Archiver are optional.
type Dependencies struct {
	Config      config.Config
	Logger      *zap.Logger
	Store       storeChecker
	DB          pinger
	ObjectStore *minio.Client

	Auth     *auth.Service
	Accounts *account.Service
	Cart     *cart.Service
	Catalog  *catalog.Service
	Orders   *order.Service
	Reviews  *review.Service
	Reports  *report.Service
	Archiver *report.Archiver
}

// NewRouter builds the console engine.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps)
	if path := deps.Config.Metrics.PrometheusPath; path != "" {
		metrics.Register(router, path)
	}

	h := &handler{deps: deps, logger: deps.Logger.Named("console")}
	h.registerSessionRoutes(router)
	h.registerStorefrontRoutes(router)
	h.registerAdminRoutes(router)
	h.registerSellerRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return router
}
