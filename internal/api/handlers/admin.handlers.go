package routes

import (
	"context"
	"net/http"

	"zonecheck/internal/config"
	"zonecheck/internal/service/jurisdiction"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupAdminHandlers registers the snapshot management endpoints
func SetupAdminHandlers(router *gin.RouterGroup, catalog *jurisdiction.Catalog, logger *zap.Logger) {
	admin := router.Group("/admin")

	admin.POST("/jurisdictions/:id/reload", func(c *gin.Context) {
		id := c.Param("id")
		ctx, cancel := context.WithTimeout(c.Request.Context(), config.SnapshotLoadTimeout)
		defer cancel()

		if _, err := catalog.Reload(ctx, id); err != nil {
			logger.Warn("manual reload failed", zap.String("jurisdiction_id", id), zap.Error(err))
			abortWithServiceError(c, err)
			return
		}
		info, err := catalog.Info(id)
		if err != nil {
			abortWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	})
}
