package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/cardora/giftcard-market/pkg/errors"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware returns a middleware that integrates Sentry error tracking.
// It captures panics with stack traces and attaches the request to event scope.
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// ErrorHandler captures errors attached to the gin context and sends them to
// Sentry. Business errors (4xx validation and auth failures) stay out of the
// error tracker. It should be placed after other middleware in the chain.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		errors.AddBreadcrumbForRequest(
			c.Request.Method,
			c.Request.URL.Path,
			statusCode,
			duration,
		)

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				if errors.ShouldReportError(err.Err, statusCode) {
					captureErrorWithContext(c, err.Err, statusCode, duration)
				}
			}
		}

		if statusCode >= 500 && len(c.Errors) == 0 {
			captureHTTPError(c, statusCode, duration)
		}
	}
}

// RecoveryWithSentry returns a middleware that recovers from panics and reports them to Sentry
func RecoveryWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentrygin.GetHubFromContext(c)
				if hub == nil {
					hub = sentry.CurrentHub().Clone()
				}

				hub.Scope().SetRequest(c.Request)
				hub.Scope().SetContext("panic", map[string]interface{}{
					"value":      fmt.Sprintf("%v", err),
					"stacktrace": string(debug.Stack()),
				})

				if sess, sErr := GetSession(c); sErr == nil {
					hub.Scope().SetUser(sentry.User{
						ID:    sess.UserID.String(),
						Email: sess.Email,
					})
				}

				hub.RecoverWithContext(c.Request.Context(), err)
				hub.Flush(2 * time.Second)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "Internal Server Error",
					"message": "An unexpected error occurred",
				})
			}
		}()

		c.Next()
	}
}

func captureErrorWithContext(c *gin.Context, err error, statusCode int, duration time.Duration) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	hub.Scope().SetRequest(c.Request)
	hub.Scope().SetLevel(getSentryLevel(statusCode))

	if sess, sErr := GetSession(c); sErr == nil {
		hub.Scope().SetUser(sentry.User{
			ID:        sess.UserID.String(),
			Email:     sess.Email,
			IPAddress: c.ClientIP(),
		})
		hub.Scope().SetTag("account_type", string(sess.AccountType))
	}

	hub.Scope().SetTag("http.method", c.Request.Method)
	hub.Scope().SetTag("http.status_code", fmt.Sprintf("%d", statusCode))
	hub.Scope().SetTag("endpoint", c.Request.URL.Path)

	if correlationID := c.GetHeader(CorrelationIDHeader); correlationID != "" {
		hub.Scope().SetTag("correlation_id", correlationID)
	}

	hub.Scope().SetContext("http", map[string]interface{}{
		"method":       c.Request.Method,
		"url":          c.Request.URL.String(),
		"status_code":  statusCode,
		"duration_ms":  duration.Milliseconds(),
		"remote_addr":  c.ClientIP(),
		"user_agent":   c.Request.UserAgent(),
		"content_type": c.ContentType(),
	})

	hub.CaptureException(err)
}

// captureHTTPError captures HTTP errors without explicit Go errors
func captureHTTPError(c *gin.Context, statusCode int, duration time.Duration) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	hub.Scope().SetRequest(c.Request)
	hub.Scope().SetLevel(getSentryLevel(statusCode))

	hub.Scope().SetTag("http.method", c.Request.Method)
	hub.Scope().SetTag("http.status_code", fmt.Sprintf("%d", statusCode))
	hub.Scope().SetTag("endpoint", c.Request.URL.Path)
	hub.Scope().SetContext("http", map[string]interface{}{
		"duration_ms": duration.Milliseconds(),
	})

	message := fmt.Sprintf("HTTP %d: %s %s", statusCode, c.Request.Method, c.Request.URL.Path)
	hub.CaptureMessage(message)
}

// getSentryLevel maps HTTP status codes to Sentry severity levels
func getSentryLevel(statusCode int) sentry.Level {
	switch {
	case statusCode >= 500:
		return sentry.LevelError
	case statusCode == 429:
		return sentry.LevelWarning
	default:
		return sentry.LevelInfo
	}
}
