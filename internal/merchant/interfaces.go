package merchant

import (
	"context"
	"time"

	"github.com/cardora/giftcard-market/internal/upstream"
	"github.com/cardora/giftcard-market/pkg/models"
)

// UpstreamAPI is the slice of the gift card API client this package uses.
type UpstreamAPI interface {
	GetProfile(ctx context.Context, session models.Session) (models.Profile, error)
	CreateProfile(ctx context.Context, session models.Session, req upstream.CreateProfileRequest) (models.Profile, error)
	RegenerateToken(ctx context.Context, session models.Session) (models.Profile, error)
	ListSavedCards(ctx context.Context, session models.Session) ([]models.SavedCard, error)
	AddCard(ctx context.Context, session models.Session, req upstream.AddCardRequest) (models.SavedCard, error)
}

// Cache is the slice of the cache manager this package uses.
type Cache interface {
	Get(ctx context.Context, key string, result interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error
}
