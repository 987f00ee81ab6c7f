package models

import "github.com/google/uuid"

// AccountType represents the storefront account type
type AccountType string

const (
	AccountConsumer AccountType = "CONSUMER"
	AccountMerchant AccountType = "MERCHANT"
	AccountAdmin    AccountType = "ADMIN"
)

// Session carries the authenticated caller's identity into every upstream
// API call. It replaces any notion of globally cached auth state: handlers
// build it from the verified JWT and pass it down explicitly.
type Session struct {
	UserID      uuid.UUID   `json:"user_id"`
	Email       string      `json:"email"`
	AccountType AccountType `json:"account_type"`
	Token       string      `json:"-"` // bearer token forwarded to the upstream API
}

// IsMerchant reports whether the session belongs to a merchant-class account
// (merchants and admins share the synchronous purchase path).
func (s Session) IsMerchant() bool {
	return s.AccountType == AccountMerchant || s.AccountType == AccountAdmin
}
