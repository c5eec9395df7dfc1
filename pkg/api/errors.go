package api

import (
	"errors"
	"net/http"

	"airport_service/pkg/domain"
	"airport_service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Only
// unexpected errors are logged; the access log already covers the rest.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verrs domain.ValidationErrors
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verrs.Fields()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active account found with the given credentials"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": domain.ErrForbidden.Error()})
	default:
		_ = c.Error(err)
		h.log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// badRequest reports a payload that failed to bind.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
}
