package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cardora/giftcard-market/pkg/logger"
	"github.com/cardora/giftcard-market/pkg/models"
	"github.com/cardora/giftcard-market/pkg/resilience"
	"go.uber.org/zap"
)

// ErrAmbiguousResponse is returned when an order submission succeeds at the
// envelope level but carries neither a payment URL nor an order id. The old
// behavior of regex-scanning the raw body for something URL-shaped was a
// defect; ambiguous responses are now hard errors with the envelope logged
// for triage.
var ErrAmbiguousResponse = errors.New("upstream response carries neither payment url nor order id")

// BreakerSettings tunes the circuit breaker of a single transport.
type BreakerSettings struct {
	FailureThreshold uint32
	SuccessThreshold uint32
	Interval         time.Duration
	Timeout          time.Duration
}

func (b BreakerSettings) settings(name string) resilience.Settings {
	return resilience.Settings{
		Name:             name,
		Interval:         b.Interval,
		Timeout:          b.Timeout,
		FailureThreshold: b.FailureThreshold,
		SuccessThreshold: b.SuccessThreshold,
	}
}

// Config holds the settings needed to talk to the gift card API.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// The transports keep independent breaker instances, tuned separately,
	// so a storm of failing reads cannot block purchases and vice versa.
	ReadBreaker  BreakerSettings
	WriteBreaker BreakerSettings
}

// Client is the single boundary to the remote gift card API. All payload
// normalization happens here; callers receive canonical models only.
type Client struct {
	baseURL string
	apiKey  string

	// reads retries freely; writes carry money and get one cautious retry.
	reads  *transport
	writes *transport
}

// NewClient constructs an API client with separate read and write transports.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		reads:   newTransport("giftcard-reads", timeout, cfg.ReadBreaker.settings("giftcard-reads"), resilience.DefaultRetryConfig()),
		writes:  newTransport("giftcard-writes", timeout, cfg.WriteBreaker.settings("giftcard-writes"), resilience.ConservativeRetryConfig()),
	}
}

// headers builds the per-request header set: caller identity, service API
// key and the correlation id for cross-service tracing.
func (c *Client) headers(ctx context.Context, session models.Session) map[string]string {
	headers := map[string]string{
		"Accept": "application/json",
	}
	if c.apiKey != "" {
		headers["X-API-Key"] = c.apiKey
	}
	if session.Token != "" {
		headers["Authorization"] = "Bearer " + session.Token
	}
	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		headers["X-Request-ID"] = correlationID
	}
	return headers
}

// getData performs a GET and unwraps the envelope.
func (c *Client) getData(ctx context.Context, session models.Session, path string) (json.RawMessage, string, error) {
	body, status, err := c.reads.get(ctx, c.baseURL+path, c.headers(ctx, session))
	if err != nil {
		return nil, "", err
	}
	return c.unwrap(ctx, path, body, status)
}

// postData performs a POST through the write transport and unwraps the envelope.
func (c *Client) postData(ctx context.Context, session models.Session, path string, payload interface{}) (json.RawMessage, string, error) {
	body, status, err := c.writes.post(ctx, c.baseURL+path, payload, c.headers(ctx, session))
	if err != nil {
		return nil, "", err
	}
	return c.unwrap(ctx, path, body, status)
}

func (c *Client) unwrap(ctx context.Context, path string, body []byte, httpStatus int) (json.RawMessage, string, error) {
	data, message, err := decodeEnvelope(body)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) && httpStatus >= 400 {
			return nil, "", fmt.Errorf("gift card api returned HTTP %d with unreadable body", httpStatus)
		}
		logger.WarnContext(ctx, "gift card api rejected request",
			zap.String("path", path),
			zap.Int("http_status", httpStatus),
			zap.Error(err),
		)
		return nil, "", err
	}
	return data, message, nil
}
