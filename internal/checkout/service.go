package checkout

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/cardora/giftcard-market/internal/orders"
	"github.com/cardora/giftcard-market/internal/upstream"
	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/logger"
	"github.com/cardora/giftcard-market/pkg/models"
	"go.uber.org/zap"
)

// Service runs the checkout flow: validate the form, dispatch exactly one
// purchase per submission, and translate the upstream outcome into either a
// redirect or an opened order tracker.
type Service struct {
	catalog ProductSource
	cards   CardSource
	api     OrderAPI

	successURL string
	failureURL string
}

// NewService creates a checkout service. successURL and failureURL are where
// the hosted payment page sends the buyer afterwards.
func NewService(catalog ProductSource, cards CardSource, api OrderAPI, successURL, failureURL string) *Service {
	return &Service{
		catalog:    catalog,
		cards:      cards,
		api:        api,
		successURL: successURL,
		failureURL: failureURL,
	}
}

// Submit validates and dispatches one checkout submission.
//
// Merchants purchase synchronously: the tracker opens directly terminal with
// the server's outcome message. Consumers go through the hosted payment
// flow: a payment URL becomes a redirect outcome (no tracker), a bare order
// id opens a processing tracker.
func (s *Service) Submit(ctx context.Context, session models.Session, req SubmitRequest) (*Outcome, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	var product *models.Product
	if req.ProductID != "" {
		p, err := s.catalog.GetProduct(ctx, session, req.ProductID)
		if err != nil {
			return nil, err
		}
		product = p
	}

	var cards []models.SavedCard
	if session.IsMerchant() {
		list, err := s.cards.ListSavedCards(ctx, session)
		if err != nil {
			return nil, err
		}
		cards = list
	}

	if verr := validateSubmission(req, product, session, cards); verr != nil {
		return nil, verr
	}

	if session.IsMerchant() {
		return s.submitMerchant(ctx, session, req)
	}
	return s.submitConsumer(ctx, session, req)
}

// submitMerchant runs the synchronous purchase path. A definitive upstream
// rejection opens the tracker in failed with the rejection message; only
// transport-level failures surface as errors.
func (s *Service) submitMerchant(ctx context.Context, session models.Session, req SubmitRequest) (*Outcome, error) {
	result, err := s.api.Purchase(ctx, session, upstream.PurchaseRequest{
		GiftCardID: req.ProductID,
		Quantity:   req.Quantity,
		UnitPrice:  req.Amount,
		Email:      req.RecipientEmail,
		Name:       req.RecipientName,
		CardID:     req.CardID,
	})
	if err != nil {
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			logger.WarnContext(ctx, "merchant purchase rejected",
				zap.String("product_id", req.ProductID),
				zap.String("reason", apiErr.Message),
			)
			return &Outcome{Tracker: orders.OpenFailed("", prettifyMessage(apiErr.Message))}, nil
		}
		return nil, common.NewUpstreamError("purchase could not be submitted", err)
	}

	tracker := orders.OpenSuccess(result.Order.ID, prettifyMessage(result.Message))
	if result.Order.ID != "" || result.Order.Status != "" {
		order := result.Order
		tracker.Order = &order
	}
	return &Outcome{Tracker: tracker}, nil
}

// submitConsumer runs the hosted-payment path.
func (s *Service) submitConsumer(ctx context.Context, session models.Session, req SubmitRequest) (*Outcome, error) {
	order, err := s.api.CreateOrder(ctx, session, upstream.CreateOrderRequest{
		GiftCardID: req.ProductID,
		Quantity:   req.Quantity,
		UnitPrice:  req.Amount,
		SuccessURL: s.successURL,
		FailureURL: s.failureURL,
	})
	if err != nil {
		if errors.Is(err, upstream.ErrAmbiguousResponse) {
			return nil, common.NewUpstreamError("order could not be confirmed", err)
		}
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			return nil, common.NewUpstreamError(prettifyMessage(apiErr.Message), err)
		}
		return nil, common.NewUpstreamError("order could not be submitted", err)
	}

	// A hosted payment redirect and a tracked order are mutually exclusive
	// outcomes; the URL wins when both arrive.
	if order.PaymentURL != "" {
		return &Outcome{RedirectURL: order.PaymentURL}, nil
	}

	return &Outcome{Tracker: orders.OpenProcessing(order.ID)}, nil
}

// prettifyMessage turns a raw upstream message into displayable copy:
// capitalized first letter and a closing period.
func prettifyMessage(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return ""
	}

	runes := []rune(message)
	runes[0] = unicode.ToUpper(runes[0])
	message = string(runes)

	if !strings.HasSuffix(message, ".") && !strings.HasSuffix(message, "!") && !strings.HasSuffix(message, "?") {
		message += "."
	}
	return message
}
