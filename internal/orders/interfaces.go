package orders

import (
	"context"

	"github.com/cardora/giftcard-market/pkg/models"
)

// UpstreamAPI is the slice of the gift card API client the orders domain needs.
type UpstreamAPI interface {
	GetOrder(ctx context.Context, session models.Session, orderID string) (models.Order, error)
	ListOrders(ctx context.Context, session models.Session, page, limit int) ([]models.Order, error)
	RefundOrder(ctx context.Context, session models.Session, orderID string) (models.Order, error)
	VoidOrder(ctx context.Context, session models.Session, orderID string) (models.Order, error)
	GetCredentials(ctx context.Context, session models.Session, orderID string) (models.Credentials, error)
	ResendCredentials(ctx context.Context, session models.Session, orderID string) error
}
