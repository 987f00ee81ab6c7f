package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cardora/giftcard-market/pkg/models"
)

type rawProduct struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Brand            string    `json:"brand"`
	Currency         string    `json:"currency"`
	DenominationType string    `json:"denominationType"`
	Denominations    []float64 `json:"denominations"`
	MinAmount        float64   `json:"minAmount"`
	MaxAmount        float64   `json:"maxAmount"`
	IsActive         bool      `json:"isActive"`
}

func normalizeProduct(raw rawProduct) models.Product {
	denomType := models.DenominationFixed
	if strings.EqualFold(raw.DenominationType, string(models.DenominationRange)) {
		denomType = models.DenominationRange
	}

	return models.Product{
		ID:               raw.ID,
		Name:             raw.Name,
		Brand:            raw.Brand,
		CurrencyCode:     raw.Currency,
		DenominationType: denomType,
		Denominations:    raw.Denominations,
		MinAmount:        raw.MinAmount,
		MaxAmount:        raw.MaxAmount,
		IsActive:         raw.IsActive,
	}
}

// GetProduct fetches one gift card product.
func (c *Client) GetProduct(ctx context.Context, session models.Session, productID string) (models.Product, error) {
	data, _, err := c.getData(ctx, session, "/giftcards/"+productID)
	if err != nil {
		return models.Product{}, err
	}

	var raw rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Product{}, fmt.Errorf("malformed product payload: %w", err)
	}

	return normalizeProduct(raw), nil
}

// ListProducts returns a catalog page.
func (c *Client) ListProducts(ctx context.Context, session models.Session, page, limit int) ([]models.Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	data, _, err := c.getData(ctx, session, fmt.Sprintf("/giftcards?page=%d&limit=%d", page, limit))
	if err != nil {
		return nil, err
	}

	var raws []rawProduct
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("malformed product list payload: %w", err)
	}

	products := make([]models.Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, normalizeProduct(raw))
	}
	return products, nil
}
