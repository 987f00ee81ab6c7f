package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cardora/giftcard-market/pkg/logger"
	"github.com/cardora/giftcard-market/pkg/resilience"
	"go.uber.org/zap"
)

// transport wraps the HTTP client with circuit breaker and retry logic for
// calls to the gift card API.
type transport struct {
	client  *http.Client
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	name    string
}

func newTransport(name string, timeout time.Duration, breakerSettings resilience.Settings, retryConfig resilience.RetryConfig) *transport {
	breaker := resilience.NewCircuitBreaker(breakerSettings, func(ctx context.Context, err error) (interface{}, error) {
		logger.Get().Error("gift card api circuit breaker open",
			zap.String("group", name),
			zap.Error(err),
		)
		return resilience.NoopFallback(ctx, err)
	})

	retryConfig.RetryableChecker = isTransientError

	return &transport{
		client: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
		retry:   retryConfig,
		name:    name,
	}
}

// doRequest executes an HTTP request with circuit breaker and retry protection
func (t *transport) doRequest(ctx context.Context, req *http.Request) (*http.Response, []byte, error) {
	operationName := fmt.Sprintf("%s-%s", t.name, req.Method)

	result, err := resilience.RetryWithName(ctx, t.retry, func(ctx context.Context) (interface{}, error) {
		return t.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
			// Clone the request for retry safety
			reqClone := req.Clone(ctx)
			if req.Body != nil {
				bodyBytes, _ := io.ReadAll(req.Body)
				req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
				reqClone.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}

			resp, err := t.client.Do(reqClone)
			if err != nil {
				return nil, err
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, err
			}

			if resilience.IsRetryableHTTPStatus(resp.StatusCode) {
				return nil, &httpError{
					statusCode: resp.StatusCode,
					body:       string(body),
				}
			}

			return &httpResult{
				response: resp,
				body:     body,
			}, nil
		})
	}, operationName)

	if err != nil {
		logger.Get().Error("gift card api request failed",
			zap.String("group", t.name),
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err),
		)
		return nil, nil, err
	}

	hr := result.(*httpResult)
	return hr.response, hr.body, nil
}

// post performs a POST request with JSON body
func (t *transport) post(ctx context.Context, url string, body interface{}, headers map[string]string) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, respBody, err := t.doRequest(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	return respBody, resp.StatusCode, nil
}

// get performs a GET request
func (t *transport) get(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, respBody, err := t.doRequest(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	return respBody, resp.StatusCode, nil
}

// httpResult holds successful HTTP response data
type httpResult struct {
	response *http.Response
	body     []byte
}

// httpError represents an HTTP error that might be retryable
type httpError struct {
	statusCode int
	body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.statusCode, e.body)
}

// isTransientError classifies transport-level failures worth retrying.
// Definitive API rejections must not be replayed, purchases cost money.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())

	retryablePatterns := []string{
		"timeout",
		"connection",
		"network",
		"temporary",
		"503",
		"502",
		"504",
		"429",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
		"too many requests",
		"econnrefused",
		"econnreset",
		"etimedout",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	nonRetryablePatterns := []string{
		"circuit breaker",
		"400",
		"401",
		"403",
		"404",
		"invalid",
		"unauthorized",
		"forbidden",
		"not found",
		"bad request",
		"unprocessable",
	}

	for _, pattern := range nonRetryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return false
		}
	}

	return true
}
