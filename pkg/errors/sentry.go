package errors

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig holds configuration for Sentry integration
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	SampleRate       float64
	Debug            bool
	ServerName       string
	AttachStacktrace bool
}

// DefaultSentryConfig returns a default Sentry configuration
func DefaultSentryConfig() *SentryConfig {
	return &SentryConfig{
		DSN:              os.Getenv("SENTRY_DSN"),
		Environment:      getEnvironment(),
		Release:          os.Getenv("SENTRY_RELEASE"),
		SampleRate:       getSampleRate(),
		Debug:            os.Getenv("SENTRY_DEBUG") == "true",
		ServerName:       os.Getenv("SERVICE_NAME"),
		AttachStacktrace: true,
	}
}

// InitSentry initializes the Sentry SDK with the given configuration
func InitSentry(config *SentryConfig) error {
	if config.DSN == "" {
		return fmt.Errorf("sentry DSN is not configured")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		SampleRate:       config.SampleRate,
		Debug:            config.Debug,
		ServerName:       config.ServerName,
		AttachStacktrace: config.AttachStacktrace,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// Filter out business logic errors (validation failures)
			if event.Level == sentry.LevelInfo || event.Level == sentry.LevelDebug {
				return nil
			}
			return event
		},
		BeforeBreadcrumb: func(breadcrumb *sentry.Breadcrumb, hint *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			// Filter sensitive data from breadcrumbs
			if breadcrumb.Category == "http" && breadcrumb.Data != nil {
				delete(breadcrumb.Data, "Authorization")
				delete(breadcrumb.Data, "Cookie")
				delete(breadcrumb.Data, "X-API-Key")
			}
			return breadcrumb
		},
	})

	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	return nil
}

// Flush flushes the Sentry buffer
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// CaptureError captures an error and sends it to Sentry
func CaptureError(err error) *sentry.EventID {
	if err == nil {
		return nil
	}
	return sentry.CaptureException(err)
}

// AddBreadcrumbForRequest adds a breadcrumb for HTTP request
func AddBreadcrumbForRequest(method, url string, statusCode int, duration time.Duration) {
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "http",
		Category:  "http.request",
		Level:     sentry.LevelInfo,
		Message:   fmt.Sprintf("%s %s", method, url),
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"method":      method,
			"url":         url,
			"status_code": statusCode,
			"duration_ms": duration.Milliseconds(),
		},
	})
}

// IsBusinessError checks if an error is a business logic error that shouldn't be reported
func IsBusinessError(err error) bool {
	if err == nil {
		return false
	}

	businessErrors := []string{
		"validation failed",
		"invalid input",
		"unauthorized",
		"forbidden",
		"not found",
		"bad request",
	}

	errMsg := strings.ToLower(err.Error())
	for _, businessErr := range businessErrors {
		if strings.Contains(errMsg, businessErr) {
			return true
		}
	}

	return false
}

// ShouldReportError determines if an error should be reported to Sentry
func ShouldReportError(err error, statusCode int) bool {
	if err == nil {
		return false
	}

	if IsBusinessError(err) {
		return false
	}

	// Don't report client errors (4xx) except 429 (rate limit)
	if statusCode >= 400 && statusCode < 500 && statusCode != 429 {
		return false
	}

	return true
}

func getEnvironment() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = os.Getenv("SENTRY_ENVIRONMENT")
	}
	if env == "" {
		env = "development"
	}
	return env
}

func getSampleRate() float64 {
	rate := os.Getenv("SENTRY_SAMPLE_RATE")
	if rate == "" {
		return 1.0
	}

	var sampleRate float64
	fmt.Sscanf(rate, "%f", &sampleRate)
	return sampleRate
}
