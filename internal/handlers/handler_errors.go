package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondServiceError translates application errors into HTTP responses. The
// fallback message hides internal details from clients; the logger keeps them.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrUnbalancedPosting):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Operation not permitted", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": "operation not permitted"})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate resource", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Concurrency conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": "concurrent modification, please retry"})
	case errors.Is(err, apperrors.ErrAccountNotConfigured):
		logger.Error("Account mapping missing", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
