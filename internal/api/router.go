package api

import (
	"time"

	routes "zonecheck/internal/api/handlers"
	"zonecheck/internal/service/jurisdiction"
	"zonecheck/internal/service/lookup"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine, svc *lookup.Service, catalog *jurisdiction.Catalog, logger *zap.Logger) {
	r.Use(requestLogger(logger))

	// API group
	api := r.Group("/api")

	// Setup main handlers
	routes.SetupMainHandlers(r.Group(""), catalog)

	// Setup zoning and admin handlers
	routes.SetupZoningHandlers(api, svc, catalog, logger)
	routes.SetupAdminHandlers(api, catalog, logger)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
