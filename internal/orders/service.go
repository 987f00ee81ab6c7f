package orders

import (
	"context"
	"errors"

	"github.com/cardora/giftcard-market/internal/upstream"
	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/models"
)

// Service exposes order history, the detail presenter and per-order actions.
type Service struct {
	api UpstreamAPI
}

// NewService creates an orders service
func NewService(api UpstreamAPI) *Service {
	return &Service{api: api}
}

// List returns a page of the caller's order history.
func (s *Service) List(ctx context.Context, session models.Session, page, limit int) ([]models.Order, error) {
	orders, err := s.api.ListOrders(ctx, session, page, limit)
	if err != nil {
		return nil, mapUpstreamError(err, "failed to list orders")
	}
	return orders, nil
}

// Detail fetches one order and builds its presentation.
func (s *Service) Detail(ctx context.Context, session models.Session, orderID string) (*DetailView, error) {
	order, err := s.api.GetOrder(ctx, session, orderID)
	if err != nil {
		return nil, mapUpstreamError(err, "order not found")
	}

	view := BuildDetailView(order, false)
	return &view, nil
}

// Credentials returns the full card secret for a completed order.
func (s *Service) Credentials(ctx context.Context, session models.Session, orderID string) (*models.Credentials, error) {
	creds, err := s.api.GetCredentials(ctx, session, orderID)
	if err != nil {
		return nil, mapUpstreamError(err, "credentials not available")
	}
	return &creds, nil
}

// Resend asks the upstream to re-deliver credentials. A failure here is
// isolated to the resend action: the order and its other affordances are
// untouched.
func (s *Service) Resend(ctx context.Context, session models.Session, orderID string) error {
	if err := s.api.ResendCredentials(ctx, session, orderID); err != nil {
		return mapUpstreamError(err, "failed to resend credentials")
	}
	return nil
}

// Refund refunds a settled order and returns the refreshed presentation.
func (s *Service) Refund(ctx context.Context, session models.Session, orderID string) (*DetailView, error) {
	order, err := s.api.RefundOrder(ctx, session, orderID)
	if err != nil {
		return nil, mapUpstreamError(err, "failed to refund order")
	}

	view := BuildDetailView(order, false)
	return &view, nil
}

// Void cancels an unsettled order and returns the refreshed presentation.
func (s *Service) Void(ctx context.Context, session models.Session, orderID string) (*DetailView, error) {
	order, err := s.api.VoidOrder(ctx, session, orderID)
	if err != nil {
		return nil, mapUpstreamError(err, "failed to void order")
	}

	view := BuildDetailView(order, false)
	return &view, nil
}

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
