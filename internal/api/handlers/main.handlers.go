package routes

import (
	"net/http"

	"zonecheck/internal/metrics"
	"zonecheck/internal/service/jurisdiction"

	"github.com/gin-gonic/gin"
)

// SetupMainHandlers registers the health and metrics endpoints
func SetupMainHandlers(router *gin.RouterGroup, catalog *jurisdiction.Catalog) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"ready":         catalog.Ready(),
			"jurisdictions": len(catalog.List()),
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
