package orders

import (
	"context"
	"errors"
	"time"

	"github.com/cardora/giftcard-market/pkg/logger"
	"github.com/cardora/giftcard-market/pkg/models"
	"go.uber.org/zap"
)

// TrackerState is the tri-state lifecycle of a submitted order: it enters in
// processing and ends in exactly one of success or failed.
type TrackerState string

const (
	TrackerProcessing TrackerState = "processing"
	TrackerSuccess    TrackerState = "success"
	TrackerFailed     TrackerState = "failed"
)

// ErrTrackerClosed is returned when a refresh is attempted on a closed tracker.
var ErrTrackerClosed = errors.New("tracker is closed")

// Tracker follows one order through its lifecycle. Opening and closing a
// tracker are purely local operations; only an explicit Refresh or Await
// talks to the upstream.
type Tracker struct {
	OrderID string        `json:"order_id,omitempty"`
	State   TrackerState  `json:"state,omitempty"`
	Message string        `json:"message,omitempty"`
	Order   *models.Order `json:"order,omitempty"`

	// Refreshing is advisory, mirroring a disabled refresh control. It is
	// not a lock: concurrent refreshes are allowed and last-write-wins.
	Refreshing bool `json:"refreshing"`

	open bool
}

// OpenProcessing opens a tracker in the processing state for an order that
// will settle asynchronously.
func OpenProcessing(orderID string) *Tracker {
	return &Tracker{OrderID: orderID, State: TrackerProcessing, open: true}
}

// OpenSuccess opens a tracker directly in the success terminal state, used
// by the synchronous merchant purchase path.
func OpenSuccess(orderID, message string) *Tracker {
	return &Tracker{OrderID: orderID, State: TrackerSuccess, Message: message, open: true}
}

// OpenFailed opens a tracker directly in the failed terminal state.
func OpenFailed(orderID, message string) *Tracker {
	return &Tracker{OrderID: orderID, State: TrackerFailed, Message: message, open: true}
}

// Terminal reports whether the tracker has reached a final state.
func (t *Tracker) Terminal() bool {
	return t.State == TrackerSuccess || t.State == TrackerFailed
}

// Open reports whether the tracker still holds state.
func (t *Tracker) Open() bool {
	return t != nil && t.open
}

// Close discards tracker state. It cancels nothing in flight: an order that
// is still settling upstream keeps settling.
func (t *Tracker) Close() {
	*t = Tracker{}
}

// Refresh re-reads the tracked order once and transitions the tracker if
// either lifecycle reached a terminal state. The upstream error is returned
// untouched so callers can distinguish transient failures from rejections;
// the tracker is left unchanged on error.
func (s *Service) Refresh(ctx context.Context, session models.Session, t *Tracker) error {
	if !t.Open() {
		return ErrTrackerClosed
	}

	t.Refreshing = true
	defer func() { t.Refreshing = false }()

	order, err := s.api.GetOrder(ctx, session, t.OrderID)
	if err != nil {
		return err
	}

	t.Order = &order
	if !order.Terminal() {
		return nil
	}

	if order.Succeeded() {
		t.State = TrackerSuccess
		if t.Message == "" {
			t.Message = "Order completed successfully."
		}
	} else {
		t.State = TrackerFailed
		if t.Message == "" {
			t.Message = "Order failed."
		}
	}

	logger.InfoContext(ctx, "order tracker settled",
		zap.String("order_id", t.OrderID),
		zap.String("state", string(t.State)),
	)
	return nil
}

// Await polls the upstream on the given interval until the tracker reaches a
// terminal state or the context expires. It is the server-side analog of a
// user repeatedly pressing refresh.
func (s *Service) Await(ctx context.Context, session models.Session, t *Tracker, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.Refresh(ctx, session, t); err != nil {
			return err
		}
		if t.Terminal() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
