package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	"github.com/SscSPs/delivery_pricing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondWithError maps err to its HTTP status. Client errors echo the error
// message; server errors are logged and answered with fallback only.
func respondWithError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.StatusCode(err)

	if status >= http.StatusInternalServerError {
		if errors.Is(err, apperrors.ErrInvariantViolation) {
			logger.Error("Invariant violation", slog.String("error", err.Error()))
		} else {
			logger.Error(fallback, slog.String("error", err.Error()))
		}
		msg := fallback
		var appErr *apperrors.AppError
		if status != http.StatusInternalServerError && errors.As(err, &appErr) {
			msg = appErr.Message
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}

// requireUserID returns the authenticated actor or answers 401.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

// bindJSON binds the body into req or answers 400.
func bindJSON(c *gin.Context, req any, operation string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind JSON", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return false
	}
	return true
}
