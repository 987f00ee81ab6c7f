package common

import (
	"errors"
	"net/http"

	"github.com/cardora/giftcard-market/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandleServiceError handles service errors with consistent patterns.
// Returns true if an error was handled (and response was sent), false otherwise.
//
// Usage:
//
//	result, err := h.service.DoSomething(ctx, req)
//	if HandleServiceError(c, err, "failed to do something") {
//	    return
//	}
func HandleServiceError(c *gin.Context, err error, fallbackMessage string) bool {
	if err == nil {
		return false
	}

	// Check for AppError first (typed business errors)
	var appErr *AppError
	if errors.As(err, &appErr) {
		AppErrorResponse(c, appErr)
		return true
	}

	// Log the unexpected error for debugging
	logger.ErrorContext(c.Request.Context(), fallbackMessage,
		zap.Error(err),
	)

	// Return generic internal server error
	ErrorResponse(c, http.StatusInternalServerError, fallbackMessage)
	return true
}

// ParseUUIDParam parses a UUID from a URL parameter.
// Returns the UUID and true on success, or sends an error response and returns false on failure.
func ParseUUIDParam(c *gin.Context, paramName, displayName string) (uuid.UUID, bool) {
	paramValue := c.Param(paramName)
	if paramValue == "" {
		ErrorResponse(c, http.StatusBadRequest, displayName+" is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(paramValue)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid "+displayName)
		return uuid.Nil, false
	}

	return id, true
}

// BindJSON binds JSON request body and sends error response on failure.
// Returns true on success, false on failure (response already sent).
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// RequireParam extracts a non-empty URL parameter or sends a 400.
func RequireParam(c *gin.Context, paramName, displayName string) (string, bool) {
	value := c.Param(paramName)
	if value == "" {
		ErrorResponse(c, http.StatusBadRequest, displayName+" is required")
		return "", false
	}
	return value, true
}
