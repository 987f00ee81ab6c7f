package models

import "time"

// OrderStatus represents the order lifecycle
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderFailed     OrderStatus = "FAILED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

// PaymentStatus represents the payment lifecycle, tracked separately from the
// order lifecycle. The two may disagree transiently until a refresh
// reconciles them.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

// Credentials holds the fulfilled gift card secret, present only once the
// upstream order has completed.
type Credentials struct {
	Code string `json:"code"`
	PIN  string `json:"pin,omitempty"`
}

// Order is the canonical view of one purchase attempt. All heterogeneous
// upstream shapes (candidate URL fields, candidate transaction ids, mixed
// status casings) are normalized into this type at the API client boundary;
// nothing above that layer sees raw upstream payloads.
type Order struct {
	ID             string        `json:"id"`
	ProductID      string        `json:"product_id"`
	ProductName    string        `json:"product_name"`
	BrandName      string        `json:"brand_name,omitempty"`
	UnitPrice      float64       `json:"unit_price"`
	Quantity       int           `json:"quantity"`
	CurrencyCode   string        `json:"currency_code"`
	Discount       float64       `json:"discount,omitempty"`
	Fee            float64       `json:"fee,omitempty"`
	FinalAmount    float64       `json:"final_amount"`
	Status         OrderStatus   `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	RecipientEmail string        `json:"recipient_email,omitempty"`
	RecipientName  string        `json:"recipient_name,omitempty"`
	PaymentURL     string        `json:"payment_url,omitempty"`     // normalized hosted-payment redirect, if any
	TransactionRef string        `json:"transaction_ref,omitempty"` // normalized, first-non-empty upstream candidate
	Credentials    *Credentials  `json:"credentials,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// Terminal reports whether either lifecycle has reached a final state.
func (o Order) Terminal() bool {
	switch o.Status {
	case OrderCompleted, OrderFailed, OrderCancelled, OrderRefunded:
		return true
	}
	switch o.PaymentStatus {
	case PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Succeeded reports whether a terminal order ended in fulfillment.
func (o Order) Succeeded() bool {
	if o.Status == OrderCompleted {
		return true
	}
	return o.PaymentStatus == PaymentCompleted && o.Status != OrderFailed && o.Status != OrderCancelled
}
