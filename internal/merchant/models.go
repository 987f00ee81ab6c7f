package merchant

import (
	"strings"
	"time"

	"github.com/cardora/giftcard-market/pkg/models"
)

// cachedProfile is the redis representation of a merchant profile. Version
// is bumped whenever the credential changes so a stale background reconcile
// can never clobber a newer write.
type cachedProfile struct {
	Profile   models.Profile `json:"profile"`
	Version   int            `json:"version"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// ProfileView is what reads return: the API key is masked because the full
// credential is only revealed once, when it is created or regenerated.
type ProfileView struct {
	UserID       string            `json:"user_id"`
	MaskedAPIKey string            `json:"masked_api_key"`
	ChargeType   models.ChargeType `json:"charge_type"`
	Balance      float64           `json:"balance"`
	CurrencyCode string            `json:"currency_code"`
	IsActive     bool              `json:"is_active"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Stale        bool              `json:"stale"`
}

func newProfileView(profile models.Profile, stale bool) *ProfileView {
	return &ProfileView{
		UserID:       profile.UserID.String(),
		MaskedAPIKey: maskKeepLast4(profile.APIKey),
		ChargeType:   profile.ChargeType,
		Balance:      profile.Balance,
		CurrencyCode: profile.CurrencyCode,
		IsActive:     profile.IsActive,
		UpdatedAt:    profile.UpdatedAt,
		Stale:        stale,
	}
}

// ProfileSecret is the create/regenerate response: the one place the full
// API key crosses the wire.
type ProfileSecret struct {
	APIKey     string            `json:"api_key"`
	ChargeType models.ChargeType `json:"charge_type"`
	IsActive   bool              `json:"is_active"`
}

func maskKeepLast4(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
