package orders

import (
	"strings"

	"github.com/cardora/giftcard-market/pkg/models"
)

// DetailView is the presentation of one order: which affordances apply given
// its status, with credentials pre-masked. Reveal of the full secret happens
// through the dedicated credentials endpoint, never through this view.
type DetailView struct {
	Order models.Order `json:"order"`

	HasCredentials bool   `json:"has_credentials"`
	MaskedCode     string `json:"masked_code,omitempty"`
	MaskedPIN      string `json:"masked_pin,omitempty"`
	CanResend      bool   `json:"can_resend"`

	// CompletePaymentURL is set only while both the order and its payment
	// are pending and the upstream gave us somewhere to send the buyer.
	CompletePaymentURL string `json:"complete_payment_url,omitempty"`

	ShowFailureNotice bool `json:"show_failure_notice"`
	CanRefresh        bool `json:"can_refresh"`
	Refreshing        bool `json:"refreshing"`

	TransactionRef string `json:"transaction_ref,omitempty"`
}

// BuildDetailView derives the affordances for an order. The refreshing flag
// is advisory and only affects presentation.
func BuildDetailView(order models.Order, refreshing bool) DetailView {
	view := DetailView{
		Order:          order,
		Refreshing:     refreshing,
		TransactionRef: order.TransactionRef,
	}

	if order.Status == models.OrderCompleted && order.Credentials != nil {
		view.HasCredentials = true
		view.MaskedCode = maskKeepLast4(order.Credentials.Code)
		view.MaskedPIN = maskKeepLast4(order.Credentials.PIN)
		view.CanResend = true
	}

	if order.Status == models.OrderPending && order.PaymentStatus == models.PaymentPending && order.PaymentURL != "" {
		view.CompletePaymentURL = order.PaymentURL
	}

	if order.Status == models.OrderFailed {
		view.ShowFailureNotice = true
	}

	view.CanRefresh = !order.Terminal()

	return view
}

// maskKeepLast4 masks a secret keeping only the last four characters.
// Secrets of four characters or fewer are masked entirely.
func maskKeepLast4(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
