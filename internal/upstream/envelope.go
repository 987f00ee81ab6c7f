package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the wire format every gift card API endpoint responds with.
// status carries the API-level verdict independently of the HTTP status.
type Envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OK reports whether the envelope represents a successful call. The API is
// inconsistent here: some endpoints signal success only through the message
// text, so both channels are honored.
func (e Envelope) OK() bool {
	if e.Status == 200 {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "success")
}

// APIError is a definitive rejection from the gift card API: the request
// reached the provider and it said no. Transport failures and breaker trips
// are ordinary errors, never APIErrors.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gift card api error (status %d): %s", e.StatusCode, e.Message)
}

// decodeEnvelope parses a response body and returns the inner data payload,
// or an APIError when the envelope signals failure.
func decodeEnvelope(body []byte) (json.RawMessage, string, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, "", fmt.Errorf("malformed api response: %w", err)
	}

	if !env.OK() {
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		return nil, "", &APIError{StatusCode: env.Status, Message: msg}
	}

	return env.Data, env.Message, nil
}
