package middleware

import (
	"github.com/cardora/giftcard-market/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const CorrelationIDHeader = "X-Request-ID"

// CorrelationID ensures every request has a correlation ID. Incoming IDs are
// honored so traces stitch across services; otherwise a new one is minted.
// The ID is echoed on the response and attached to the request context for
// structured logging.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		ctx := logger.ContextWithCorrelationID(c.Request.Context(), correlationID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(CorrelationIDHeader, correlationID)
		c.Next()
	}
}
