package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/cardora/giftcard-market/pkg/logger"
	"github.com/cardora/giftcard-market/pkg/security"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxLoggedBodyBytes = 2048

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// RequestLogger logs each request with latency, status and sanitized bodies.
// Bodies are truncated so oversized payloads never bloat the log stream.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var requestBody string
		if c.Request.Body != nil {
			raw, err := io.ReadAll(c.Request.Body)
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
				requestBody = security.TruncateString(security.SanitizeString(string(raw)), maxLoggedBodyBytes)
			}
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if requestBody != "" {
			fields = append(fields, zap.String("request_body", requestBody))
		}
		if c.Writer.Status() >= 400 {
			fields = append(fields,
				zap.String("response_body", security.TruncateString(writer.body.String(), maxLoggedBodyBytes)))
			logger.WarnContext(c.Request.Context(), "request completed with error", fields...)
			return
		}

		logger.InfoContext(c.Request.Context(), "request completed", fields...)
	}
}
