package routes

import (
	"net/http"
	"strconv"

	"zonecheck/internal/service/jurisdiction"
	"zonecheck/internal/service/lookup"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ZoningHandler serves lookups and reference data
type ZoningHandler struct {
	lookup  *lookup.Service
	catalog *jurisdiction.Catalog
	logger  *zap.Logger
}

// BatchRequest is the body of POST /api/zoning/lookup/batch
type BatchRequest struct {
	JurisdictionID string           `json:"jurisdiction_id"`
	Requests       []lookup.Request `json:"requests"`
}

// SetupZoningHandlers registers the zoning endpoints
func SetupZoningHandlers(router *gin.RouterGroup, svc *lookup.Service, catalog *jurisdiction.Catalog, logger *zap.Logger) {
	h := &ZoningHandler{lookup: svc, catalog: catalog, logger: logger}

	router.GET("/jurisdictions", h.ListJurisdictions)
	router.GET("/standards", h.ListStandards)
	router.GET("/standards/:code", h.GetStandards)

	zoning := router.Group("/zoning")
	zoning.POST("/lookup", h.Lookup)
	zoning.POST("/lookup/batch", h.LookupBatch)
}

// ListJurisdictions returns every loaded jurisdiction
func (h *ZoningHandler) ListJurisdictions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jurisdictions": h.catalog.List()})
}

// ListStandards returns the zone codes with a standards entry
func (h *ZoningHandler) ListStandards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"codes": h.lookup.Standards().Codes()})
}

// GetStandards returns one zone's development standards. Unknown codes get
// an all-null record, not a 404.
func (h *ZoningHandler) GetStandards(c *gin.Context) {
	code := c.Param("code")
	table := h.lookup.Standards()
	c.JSON(http.StatusOK, gin.H{
		"code":        code,
		"known":       table.Has(code),
		"description": table.Describe(code),
		"standards":   table.StandardsFor(code),
	})
}

// Lookup resolves one point
func (h *ZoningHandler) Lookup(c *gin.Context) {
	var req lookup.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.lookup.Lookup(c.Request.Context(), req)
	if err != nil {
		h.logger.Debug("lookup rejected", zap.String("jurisdiction_id", req.JurisdictionID), zap.Error(err))
		abortWithServiceError(c, err)
		return
	}

	if dedupe(c) {
		resp.Requirements = resp.Requirements.Dedup()
	}
	c.JSON(http.StatusOK, resp)
}

// LookupBatch resolves many points against one jurisdiction
func (h *ZoningHandler) LookupBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	items, err := h.lookup.LookupBatch(c.Request.Context(), req.JurisdictionID, req.Requests)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	if dedupe(c) {
		for i := range items {
			if items[i].Result != nil {
				items[i].Result.Requirements = items[i].Result.Requirements.Dedup()
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"jurisdiction_id": req.JurisdictionID, "results": items})
}

func dedupe(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("dedupe", "false"))
	return err == nil && v
}
