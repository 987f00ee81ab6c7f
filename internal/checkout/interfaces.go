package checkout

import (
	"context"

	"github.com/cardora/giftcard-market/internal/upstream"
	"github.com/cardora/giftcard-market/pkg/models"
)

// ProductSource resolves the product being bought, normally the cached
// catalog service.
type ProductSource interface {
	GetProduct(ctx context.Context, session models.Session, productID string) (*models.Product, error)
}

// CardSource lists the caller's saved payment methods, normally the merchant
// service.
type CardSource interface {
	ListSavedCards(ctx context.Context, session models.Session) ([]models.SavedCard, error)
}

// OrderAPI is the slice of the gift card API client checkout submits through.
type OrderAPI interface {
	CreateOrder(ctx context.Context, session models.Session, req upstream.CreateOrderRequest) (models.Order, error)
	Purchase(ctx context.Context, session models.Session, req upstream.PurchaseRequest) (upstream.PurchaseResult, error)
}
