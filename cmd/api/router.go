package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"img2pdf-backend/internal/shared/middleware"
	"img2pdf-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupConversionRoutes(v1, c)
		setupImageRoutes(v1, c)
	}

	return router
}

// ========================================
// CONVERSION ROUTES
// ========================================
func setupConversionRoutes(v1 *gin.RouterGroup, c *container.Container) {
	conversions := v1.Group("/conversions")
	{
		conversions.POST("", c.ConversionHandler.Create)
		conversions.GET("/:id", c.ConversionHandler.Get)
		conversions.PATCH("/:id", c.ConversionHandler.Update)
		conversions.POST("/:id/process", c.ConversionHandler.Process)
		conversions.GET("/:id/pdf", c.ConversionHandler.GetPDF)

		conversions.POST("/:id/images", c.ImageHandler.Upload)
		conversions.GET("/:id/images", c.ImageHandler.List)
		conversions.PUT("/:id/images/order", c.ImageHandler.Reorder)
	}
}

// ========================================
// IMAGE ROUTES
// ========================================
func setupImageRoutes(v1 *gin.RouterGroup, c *container.Container) {
	images := v1.Group("/images")
	{
		images.DELETE("/:id", c.ImageHandler.Delete)
	}
}

// healthCheckHandler báo trạng thái các backing service
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{
			"database": "ok",
			"redis":    "ok",
			"storage":  "ok",
		}
		status := "ok"

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			checks["database"] = err.Error()
			status = "degraded"
		}
		if err := c.Cache.Ping(checkCtx); err != nil {
			checks["redis"] = err.Error()
			status = "degraded"
		}
		if err := c.Storage.HealthCheck(checkCtx); err != nil {
			checks["storage"] = err.Error()
			status = "degraded"
		}

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}

		ctx.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   c.Config.App.Version,
			"checks":    checks,
		})
	}
}
