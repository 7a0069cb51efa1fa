package server

import (
	"context"
	"net/http"
	"time"

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

		if deps.DB != nil {
			if err := deps.DB.Ping(ctx); err != nil {
				degraded(c, "postgres", err)
				return
			}
		}

		if err := checkMinIO(ctx, deps); err != nil {
			degraded(c, "minio", err)
			return
		}

		if deps.WorkOrders != nil {
			if _, err := deps.WorkOrders.List(ctx); err != nil {
				degraded(c, "media", err)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func degraded(c *gin.Context, component string, err error) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":    "degraded",
		"component": component,
		"error":     err.Error(),
	})
}

func checkMinIO(ctx context.Context, deps Dependencies) error {
	if deps.ObjectStore == nil {
		return nil
	}
	_, err := deps.ObjectStore.BucketExists(ctx, deps.Config.MinIO.Bucket)
	return err
}
