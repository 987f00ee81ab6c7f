package catalog

import (
	"context"
	"time"

	"github.com/cardora/giftcard-market/pkg/models"
)

// UpstreamAPI is the slice of the gift card API client the catalog needs.
type UpstreamAPI interface {
	GetProduct(ctx context.Context, session models.Session, productID string) (models.Product, error)
	ListProducts(ctx context.Context, session models.Session, page, limit int) ([]models.Product, error)
}

// ProductCache is the read-through cache surface, satisfied by cache.Manager.
type ProductCache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error
}
