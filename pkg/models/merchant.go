package models

import (
	"time"

	"github.com/google/uuid"
)

// ChargeType determines how API-driven merchant purchases are billed
type ChargeType string

const (
	ChargePrepaid  ChargeType = "PREPAID"  // drawn from the merchant balance
	ChargePostpaid ChargeType = "POSTPAID" // invoiced after the fact
)

// Profile is a merchant's API credential and billing configuration.
// The authoritative copy lives upstream; we keep a redis-cached copy per
// user with a staleness window (see internal/merchant).
type Profile struct {
	UserID       uuid.UUID  `json:"user_id"`
	APIKey       string     `json:"api_key"`
	ChargeType   ChargeType `json:"charge_type"`
	Balance      float64    `json:"balance"`
	CurrencyCode string     `json:"currency_code"`
	IsActive     bool       `json:"is_active"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SavedCard is a tokenized payment method reference owned by a merchant
// account. The list is read-only per checkout session; cards are created
// through the upstream add-card flow.
type SavedCard struct {
	CardID    string `json:"card_id"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	IsDefault bool   `json:"is_default"`
}
