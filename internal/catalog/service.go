package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/cardora/giftcard-market/internal/upstream"
	"github.com/cardora/giftcard-market/pkg/cache"
	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/models"
)

// Service serves gift card products through a redis read-through cache so
// checkout validation does not hammer the upstream catalog.
type Service struct {
	api   UpstreamAPI
	cache ProductCache
	ttl   time.Duration
}

// NewService creates a catalog service with the given product cache TTL.
func NewService(api UpstreamAPI, productCache ProductCache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = cache.TTL.Short()
	}
	return &Service{api: api, cache: productCache, ttl: ttl}
}

// GetProduct returns one product, cached. A cache read failure counts as a
// miss and degrades to a direct upstream read.
func (s *Service) GetProduct(ctx context.Context, session models.Session, productID string) (*models.Product, error) {
	if productID == "" {
		return nil, common.NewBadRequestError("product id is required", nil)
	}

	var product models.Product
	err := s.cache.GetOrSet(ctx, cache.Keys.Product(productID), s.ttl, &product, func() (interface{}, error) {
		return s.api.GetProduct(ctx, session, productID)
	})
	if err != nil {
		return nil, mapUpstreamError(err, "product not found")
	}

	return &product, nil
}

// ListProducts returns one catalog page, cached per page/limit pair.
func (s *Service) ListProducts(ctx context.Context, session models.Session, page, limit int) ([]models.Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var products []models.Product
	err := s.cache.GetOrSet(ctx, cache.Keys.ProductList(page, limit), s.ttl, &products, func() (interface{}, error) {
		return s.api.ListProducts(ctx, session, page, limit)
	})
	if err != nil {
		return nil, mapUpstreamError(err, "failed to list products")
	}

	return products, nil
}

// mapUpstreamError converts API-level rejections into coded app errors so
// handlers can render them without inspecting the upstream package.
func mapUpstreamError(err error, fallback string) error {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 404 {
			return common.NewNotFoundError(fallback, err)
		}
		return common.NewUpstreamError(apiErr.Message, err)
	}
	return common.NewUpstreamError(fallback, err)
}
