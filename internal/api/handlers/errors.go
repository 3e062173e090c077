package routes

import (
	"errors"
	"net/http"

	"zonecheck/internal/service/jurisdiction"
	"zonecheck/internal/service/lookup"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func abortWithError(c *gin.Context, status int, message string, err error) {
	body := ErrorResponse{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// abortWithServiceError maps service sentinels to HTTP statuses
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lookup.ErrInvalidRequest), errors.Is(err, lookup.ErrBatchTooLarge):
		abortWithError(c, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, jurisdiction.ErrUnknownJurisdiction):
		abortWithError(c, http.StatusNotFound, "No zoning data for this jurisdiction", err)
	case errors.Is(err, jurisdiction.ErrNotLoaded):
		abortWithError(c, http.StatusServiceUnavailable, "Zoning data is still loading", err)
	default:
		abortWithError(c, http.StatusInternalServerError, "Internal error", err)
	}
}
