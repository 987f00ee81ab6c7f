package checkout

import (
	"github.com/cardora/giftcard-market/internal/orders"
)

// SubmitRequest is the checkout form payload. Field-level validation is
// collected by the service so one round trip reports every problem; binding
// here only rejects bodies that are not JSON at all.
type SubmitRequest struct {
	ProductID      string  `json:"product_id"`
	Amount         float64 `json:"amount"`
	Quantity       int     `json:"quantity"`
	RecipientEmail string  `json:"recipient_email"`
	RecipientName  string  `json:"recipient_name"`
	CardID         string  `json:"card_id"`
}

// ValidationError carries the full per-field error map for one submission.
type ValidationError struct {
	Fields map[string]string

	// OpenAddCard tells the client to open the add-card flow because the
	// submission needs a payment method the account does not have selected.
	OpenAddCard bool
}

func (e *ValidationError) Error() string {
	return "checkout validation failed"
}

// Outcome is the result of exactly one submission. Exactly one of
// RedirectURL or Tracker is set: a hosted-payment redirect never opens a
// tracker, and a tracked order never redirects.
type Outcome struct {
	RedirectURL string          `json:"redirect_url,omitempty"`
	Tracker     *orders.Tracker `json:"tracker,omitempty"`
}
