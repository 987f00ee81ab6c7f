package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cardora/giftcard-market/pkg/models"
	"github.com/google/uuid"
)

// rawProfile captures the merchant API profile shapes the upstream emits.
// The credential arrives as either "apiKey" or "token" depending on the
// endpoint.
type rawProfile struct {
	UserID     string  `json:"userId"`
	APIKey     string  `json:"apiKey"`
	Token      string  `json:"token"`
	ChargeType string  `json:"chargeType"`
	Balance    float64 `json:"balance"`
	Currency   string  `json:"currency"`
	IsActive   bool    `json:"isActive"`
	UpdatedAt  string  `json:"updatedAt"`
}

func normalizeProfile(raw rawProfile) models.Profile {
	profile := models.Profile{
		APIKey:       firstNonEmpty(raw.APIKey, raw.Token),
		ChargeType:   normalizeChargeType(raw.ChargeType),
		Balance:      raw.Balance,
		CurrencyCode: raw.Currency,
		IsActive:     raw.IsActive,
	}

	if id, err := uuid.Parse(raw.UserID); err == nil {
		profile.UserID = id
	}
	if ts, ok := parseTimestamp(raw.UpdatedAt); ok {
		profile.UpdatedAt = ts
	}

	return profile
}

func normalizeChargeType(value string) models.ChargeType {
	if models.ChargeType(value) == models.ChargePostpaid {
		return models.ChargePostpaid
	}
	return models.ChargePrepaid
}

type rawCard struct {
	ID        string `json:"id"`
	CardID    string `json:"cardId"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	MaskedPan string `json:"maskedPan"`
	IsDefault bool   `json:"isDefault"`
}

func normalizeCard(raw rawCard) models.SavedCard {
	last4 := raw.Last4
	if last4 == "" && len(raw.MaskedPan) >= 4 {
		last4 = raw.MaskedPan[len(raw.MaskedPan)-4:]
	}
	return models.SavedCard{
		CardID:    firstNonEmpty(raw.CardID, raw.ID),
		Brand:     raw.Brand,
		Last4:     last4,
		IsDefault: raw.IsDefault,
	}
}

// ListSavedCards returns the caller's tokenized payment methods.
func (c *Client) ListSavedCards(ctx context.Context, session models.Session) ([]models.SavedCard, error) {
	data, _, err := c.getData(ctx, session, "/cards")
	if err != nil {
		return nil, err
	}

	var raws []rawCard
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("malformed card list payload: %w", err)
	}

	cards := make([]models.SavedCard, 0, len(raws))
	for _, raw := range raws {
		cards = append(cards, normalizeCard(raw))
	}
	return cards, nil
}

// AddCardRequest proxies the upstream tokenized add-card flow; raw PANs
// never transit this service.
type AddCardRequest struct {
	Token      string `json:"token"`
	SetDefault bool   `json:"setDefault,omitempty"`
}

// AddCard registers a tokenized card with the upstream.
func (c *Client) AddCard(ctx context.Context, session models.Session, req AddCardRequest) (models.SavedCard, error) {
	data, _, err := c.postData(ctx, session, "/cards", req)
	if err != nil {
		return models.SavedCard{}, err
	}

	var raw rawCard
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.SavedCard{}, fmt.Errorf("malformed card payload: %w", err)
	}

	return normalizeCard(raw), nil
}

// GetProfile fetches the caller's merchant API profile.
func (c *Client) GetProfile(ctx context.Context, session models.Session) (models.Profile, error) {
	data, _, err := c.getData(ctx, session, "/merchant/profile")
	if err != nil {
		return models.Profile{}, err
	}

	var raw rawProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Profile{}, fmt.Errorf("malformed profile payload: %w", err)
	}

	return normalizeProfile(raw), nil
}

// CreateProfileRequest provisions a merchant API profile.
type CreateProfileRequest struct {
	ChargeType models.ChargeType `json:"chargeType"`
}

// CreateProfile provisions the caller's merchant API profile upstream.
func (c *Client) CreateProfile(ctx context.Context, session models.Session, req CreateProfileRequest) (models.Profile, error) {
	data, _, err := c.postData(ctx, session, "/merchant/profile", req)
	if err != nil {
		return models.Profile{}, err
	}

	var raw rawProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Profile{}, fmt.Errorf("malformed profile payload: %w", err)
	}

	return normalizeProfile(raw), nil
}

// RegenerateToken rotates the merchant API credential and returns the
// updated profile.
func (c *Client) RegenerateToken(ctx context.Context, session models.Session) (models.Profile, error) {
	data, _, err := c.postData(ctx, session, "/merchant/profile/regenerate", nil)
	if err != nil {
		return models.Profile{}, err
	}

	var raw rawProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Profile{}, fmt.Errorf("malformed profile payload: %w", err)
	}

	return normalizeProfile(raw), nil
}
