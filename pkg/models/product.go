package models

// DenominationType classifies how a gift card product prices itself
type DenominationType string

const (
	DenominationFixed DenominationType = "FIXED" // enumerated face values only
	DenominationRange DenominationType = "RANGE" // any amount within [min, max]
)

// Product represents a purchasable gift card product from the catalog
type Product struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Brand            string           `json:"brand,omitempty"`
	CurrencyCode     string           `json:"currency_code"`
	DenominationType DenominationType `json:"denomination_type"`
	Denominations    []float64        `json:"denominations,omitempty"` // FIXED only
	MinAmount        float64          `json:"min_amount,omitempty"`    // RANGE only
	MaxAmount        float64          `json:"max_amount,omitempty"`    // RANGE only
	IsActive         bool             `json:"is_active"`
}
