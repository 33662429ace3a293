package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JBK2116/CollaBoard/pkg/services"
)

// mapServiceError translates service-layer errors into HTTP error
// responses for the REST endpoints. The summarize/export routes do not use
// it; they answer with their own coarse envelope.
func mapServiceError(c *gin.Context, err error) {
	var validErr *services.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validErr.Error()})
		return
	}
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}
	if errors.Is(err, services.ErrAlreadyExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "resource already exists"})
		return
	}
	if errors.Is(err, services.ErrAuthFailed) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}
	if errors.Is(err, services.ErrCodeExhaustion) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not allocate an access code, try again"})
		return
	}

	// Unexpected error
	slog.Error("Unexpected service error", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
