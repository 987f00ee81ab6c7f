package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cardora/giftcard-market/pkg/logger"
	"github.com/cardora/giftcard-market/pkg/models"
	"go.uber.org/zap"
)

// CreateOrderRequest starts a consumer checkout. The upstream responds with
// either a hosted payment page URL or a bare order id to poll.
type CreateOrderRequest struct {
	GiftCardID string  `json:"giftCardId"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	SuccessURL string  `json:"successUrl"`
	FailureURL string  `json:"failureUrl"`
}

// PurchaseRequest is the merchant-path submission: the purchase settles
// synchronously against the merchant's API profile.
type PurchaseRequest struct {
	GiftCardID string  `json:"giftCardId"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	CardID     string  `json:"cardId,omitempty"`
}

// PurchaseResult pairs the settled order with the envelope message, which is
// the only human-readable outcome text the API provides.
type PurchaseResult struct {
	Order   models.Order
	Message string
}

// CreateOrder submits a consumer checkout. The returned order carries a
// normalized PaymentURL when the upstream wants a hosted-payment redirect,
// otherwise an order id to track. A response with neither is a hard error.
func (c *Client) CreateOrder(ctx context.Context, session models.Session, req CreateOrderRequest) (models.Order, error) {
	data, _, err := c.postData(ctx, session, "/orders", req)
	if err != nil {
		return models.Order{}, err
	}

	var raw rawOrder
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Order{}, fmt.Errorf("malformed order payload: %w", err)
	}

	order := normalizeOrder(raw)
	if order.PaymentURL == "" && order.ID == "" {
		logger.ErrorContext(ctx, "ambiguous create-order response",
			zap.String("gift_card_id", req.GiftCardID),
			zap.ByteString("data", data),
		)
		return models.Order{}, ErrAmbiguousResponse
	}

	return order, nil
}

// Purchase executes the synchronous merchant purchase path.
func (c *Client) Purchase(ctx context.Context, session models.Session, req PurchaseRequest) (PurchaseResult, error) {
	data, message, err := c.postData(ctx, session, "/orders/purchase", req)
	if err != nil {
		return PurchaseResult{}, err
	}

	var raw rawOrder
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return PurchaseResult{}, fmt.Errorf("malformed purchase payload: %w", err)
		}
	}

	return PurchaseResult{
		Order:   normalizeOrder(raw),
		Message: message,
	}, nil
}

// GetOrder re-reads one order. The tracker's refresh and the detail view
// both resolve through this call.
func (c *Client) GetOrder(ctx context.Context, session models.Session, orderID string) (models.Order, error) {
	data, _, err := c.getData(ctx, session, "/orders/"+orderID)
	if err != nil {
		return models.Order{}, err
	}

	var raw rawOrder
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Order{}, fmt.Errorf("malformed order payload: %w", err)
	}

	return normalizeOrder(raw), nil
}

// ListOrders returns a page of the caller's order history.
func (c *Client) ListOrders(ctx context.Context, session models.Session, page, limit int) ([]models.Order, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	data, _, err := c.getData(ctx, session, fmt.Sprintf("/orders?page=%d&limit=%d", page, limit))
	if err != nil {
		return nil, err
	}

	var raws []rawOrder
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("malformed order list payload: %w", err)
	}

	orders := make([]models.Order, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, normalizeOrder(raw))
	}
	return orders, nil
}

// RefundOrder asks the upstream to refund a settled order (admin action).
func (c *Client) RefundOrder(ctx context.Context, session models.Session, orderID string) (models.Order, error) {
	return c.orderAction(ctx, session, orderID, "refund")
}

// VoidOrder cancels an order that has not settled yet (admin action).
func (c *Client) VoidOrder(ctx context.Context, session models.Session, orderID string) (models.Order, error) {
	return c.orderAction(ctx, session, orderID, "void")
}

func (c *Client) orderAction(ctx context.Context, session models.Session, orderID, action string) (models.Order, error) {
	data, _, err := c.postData(ctx, session, fmt.Sprintf("/orders/%s/%s", orderID, action), nil)
	if err != nil {
		return models.Order{}, err
	}

	var raw rawOrder
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Order{}, fmt.Errorf("malformed order payload: %w", err)
	}

	return normalizeOrder(raw), nil
}

// GetCredentials fetches the fulfilled card secret for a completed order.
func (c *Client) GetCredentials(ctx context.Context, session models.Session, orderID string) (models.Credentials, error) {
	data, _, err := c.getData(ctx, session, fmt.Sprintf("/orders/%s/credentials", orderID))
	if err != nil {
		return models.Credentials{}, err
	}

	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return models.Credentials{}, fmt.Errorf("malformed credentials payload: %w", err)
	}

	return creds, nil
}

// ResendCredentials asks the upstream to re-deliver card credentials to the
// recipient email on file.
func (c *Client) ResendCredentials(ctx context.Context, session models.Session, orderID string) error {
	_, _, err := c.postData(ctx, session, fmt.Sprintf("/orders/%s/resend", orderID), nil)
	return err
}
