package upstream

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cardora/giftcard-market/pkg/models"
)

// flexID decodes identifier fields the API emits as either JSON strings or
// bare numbers (numeric order ids and reference numbers show up in the wild).
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// rawOrder mirrors every shape the gift card API has been observed emitting
// for an order. Endpoints disagree on the payment URL field, the transaction
// reference field and status casing, so all known candidates are captured
// here and collapsed into the canonical models.Order before anything else
// sees the payload.
type rawOrder struct {
	ID      flexID `json:"id"`
	OrderID flexID `json:"orderId"`

	GiftCardID   string `json:"giftCardId"`
	GiftCardName string `json:"giftCardName"`
	BrandName    string `json:"brandName"`

	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	Currency    string  `json:"currency"`
	Discount    float64 `json:"discount"`
	Fee         float64 `json:"fee"`
	FinalAmount float64 `json:"finalAmount"`
	TotalAmount float64 `json:"totalAmount"`

	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`

	Email string `json:"email"`
	Name  string `json:"name"`

	// Payment URL candidates, first non-empty wins in this order.
	PaymentFormURL string `json:"paymentFormUrl"`
	PaymentURL     string `json:"paymentUrl"`
	RedirectURL    string `json:"redirectUrl"`
	CheckoutURL    string `json:"checkoutUrl"`
	PaymentLink    string `json:"paymentLink"`

	// Transaction reference candidates, same rule.
	TransactionID    flexID `json:"transactionId"`
	TxnID            flexID `json:"txnId"`
	PaymentReference flexID `json:"paymentReference"`
	ReferenceNo      flexID `json:"referenceNo"`

	Code string `json:"code"`
	PIN  string `json:"pin"`

	CreatedAt   string `json:"createdAt"`
	CompletedAt string `json:"completedAt"`
}

// paymentURL collapses the URL candidates with first-non-empty precedence.
func (r rawOrder) paymentURL() string {
	return firstNonEmpty(r.PaymentFormURL, r.PaymentURL, r.RedirectURL, r.CheckoutURL, r.PaymentLink)
}

// transactionRef collapses the transaction id candidates.
func (r rawOrder) transactionRef() string {
	return firstNonEmpty(string(r.TransactionID), string(r.TxnID), string(r.PaymentReference), string(r.ReferenceNo))
}

func (r rawOrder) orderID() string {
	return firstNonEmpty(string(r.ID), string(r.OrderID))
}

// normalizeOrder converts a raw upstream order into the canonical model.
func normalizeOrder(raw rawOrder) models.Order {
	order := models.Order{
		ID:             raw.orderID(),
		ProductID:      raw.GiftCardID,
		ProductName:    raw.GiftCardName,
		BrandName:      raw.BrandName,
		UnitPrice:      raw.UnitPrice,
		Quantity:       raw.Quantity,
		CurrencyCode:   raw.Currency,
		Discount:       raw.Discount,
		Fee:            raw.Fee,
		FinalAmount:    firstNonZero(raw.FinalAmount, raw.TotalAmount),
		Status:         normalizeOrderStatus(raw.Status),
		PaymentStatus:  normalizePaymentStatus(raw.PaymentStatus),
		RecipientEmail: raw.Email,
		RecipientName:  raw.Name,
		PaymentURL:     raw.paymentURL(),
		TransactionRef: raw.transactionRef(),
	}

	if raw.Code != "" {
		order.Credentials = &models.Credentials{Code: raw.Code, PIN: raw.PIN}
	}

	if ts, ok := parseTimestamp(raw.CreatedAt); ok {
		order.CreatedAt = ts
	}
	if ts, ok := parseTimestamp(raw.CompletedAt); ok {
		order.CompletedAt = &ts
	}

	return order
}

// normalizeOrderStatus maps the status spellings seen in the wild onto the
// canonical lifecycle. Unknown values degrade to PENDING rather than failing
// the whole decode.
func normalizeOrderStatus(status string) models.OrderStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "SUCCESS", "SUCCEEDED", "COMPLETE", "COMPLETED", "DONE", "FULFILLED":
		return models.OrderCompleted
	case "FAIL", "FAILED", "DECLINED", "REJECTED", "ERROR":
		return models.OrderFailed
	case "CANCELLED", "CANCELED", "VOID", "VOIDED":
		return models.OrderCancelled
	case "REFUND", "REFUNDED":
		return models.OrderRefunded
	case "PROCESSING", "IN_PROGRESS", "INPROGRESS":
		return models.OrderProcessing
	default:
		return models.OrderPending
	}
}

func normalizePaymentStatus(status string) models.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "SUCCESS", "SUCCEEDED", "COMPLETE", "COMPLETED", "PAID", "CAPTURED":
		return models.PaymentCompleted
	case "FAIL", "FAILED", "DECLINED", "REJECTED", "ERROR", "CANCELLED", "CANCELED", "VOID", "VOIDED":
		return models.PaymentFailed
	case "REFUND", "REFUNDED":
		return models.PaymentRefunded
	case "PROCESSING", "IN_PROGRESS", "INPROGRESS":
		return models.PaymentProcessing
	default:
		return models.PaymentPending
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
