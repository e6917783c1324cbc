package server

import (
	"context"
	"net/http"
	"time"

	"github.com/abduss/storefront/internal/storage"
	"github.com/gin-gonic/gin"
)

const readinessTimeout = 5 * time.Second

func registerHealthRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		for _, check := range readinessChecks(deps) {
			if err := check.run(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "degraded",
					"component": check.name,
					"error":     err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

type readinessCheck struct {
	name string
	run  func(context.Context) error
}

func readinessChecks(deps Dependencies) []readinessCheck {
	var checks []readinessCheck
	if deps.Store != nil {
		checks = append(checks, readinessCheck{"credential_store", deps.Store.Check})
	}
	if deps.DB != nil {
		checks = append(checks, readinessCheck{"postgres", deps.DB.Ping})
	}
	if deps.ObjectStore != nil {
		bucket := deps.Config.MinIO.Bucket
		checks = append(checks, readinessCheck{"minio", func(ctx context.Context) error {
			return storage.PingBucket(ctx, deps.ObjectStore, bucket)
		}})
	}
	return checks
}
