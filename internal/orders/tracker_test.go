package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cardora/giftcard-market/internal/upstream"
	"github.com/cardora/giftcard-market/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetOrder(ctx context.Context, session models.Session, orderID string) (models.Order, error) {
	args := m.Called(ctx, session, orderID)
	return args.Get(0).(models.Order), args.Error(1)
}

func (m *mockAPI) ListOrders(ctx context.Context, session models.Session, page, limit int) ([]models.Order, error) {
	args := m.Called(ctx, session, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockAPI) RefundOrder(ctx context.Context, session models.Session, orderID string) (models.Order, error) {
	args := m.Called(ctx, session, orderID)
	return args.Get(0).(models.Order), args.Error(1)
}

func (m *mockAPI) VoidOrder(ctx context.Context, session models.Session, orderID string) (models.Order, error) {
	args := m.Called(ctx, session, orderID)
	return args.Get(0).(models.Order), args.Error(1)
}

func (m *mockAPI) GetCredentials(ctx context.Context, session models.Session, orderID string) (models.Credentials, error) {
	args := m.Called(ctx, session, orderID)
	return args.Get(0).(models.Credentials), args.Error(1)
}

func (m *mockAPI) ResendCredentials(ctx context.Context, session models.Session, orderID string) error {
	args := m.Called(ctx, session, orderID)
	return args.Error(0)
}

func TestTrackerOpenAndCloseIssueNoNetworkCalls(t *testing.T) {
	api := new(mockAPI)

	tracker := OpenProcessing("ord-1")
	assert.True(t, tracker.Open())
	assert.Equal(t, TrackerProcessing, tracker.State)
	tracker.Close()
	assert.False(t, tracker.Open())

	// Open and close again with the same order id.
	tracker = OpenProcessing("ord-1")
	tracker.Close()

	api.AssertNotCalled(t, "GetOrder")
}

func TestTrackerOpensDirectlyTerminal(t *testing.T) {
	success := OpenSuccess("ord-1", "Order completed successfully.")
	assert.Equal(t, TrackerSuccess, success.State)
	assert.True(t, success.Terminal())
	assert.Equal(t, "Order completed successfully.", success.Message)

	failed := OpenFailed("", "Card declined.")
	assert.Equal(t, TrackerFailed, failed.State)
	assert.True(t, failed.Terminal())
}

func TestRefreshTransitionsToSuccess(t *testing.T) {
	api := new(mockAPI)
	service := NewService(api)
	session := models.Session{AccountType: models.AccountConsumer}

	api.On("GetOrder", mock.Anything, session, "ord-1").
		Return(models.Order{ID: "ord-1", Status: models.OrderCompleted}, nil).Once()

	tracker := OpenProcessing("ord-1")
	require.NoError(t, service.Refresh(context.Background(), session, tracker))

	assert.Equal(t, TrackerSuccess, tracker.State)
	require.NotNil(t, tracker.Order)
	assert.Equal(t, models.OrderCompleted, tracker.Order.Status)
	assert.False(t, tracker.Refreshing)
	api.AssertExpectations(t)
}

func TestRefreshTransitionsToFailed(t *testing.T) {
	api := new(mockAPI)
	service := NewService(api)
	session := models.Session{}

	api.On("GetOrder", mock.Anything, session, "ord-1").
		Return(models.Order{ID: "ord-1", Status: models.OrderFailed}, nil).Once()

	tracker := OpenProcessing("ord-1")
	require.NoError(t, service.Refresh(context.Background(), session, tracker))

	assert.Equal(t, TrackerFailed, tracker.State)
}

func TestRefreshStaysProcessingWhileNotTerminal(t *testing.T) {
	api := new(mockAPI)
	service := NewService(api)
	session := models.Session{}

	api.On("GetOrder", mock.Anything, session, "ord-1").
		Return(models.Order{ID: "ord-1", Status: models.OrderProcessing}, nil).Once()

	tracker := OpenProcessing("ord-1")
	require.NoError(t, service.Refresh(context.Background(), session, tracker))

	assert.Equal(t, TrackerProcessing, tracker.State)
	assert.False(t, tracker.Terminal())
}

func TestRefreshLeavesTrackerUntouchedOnError(t *testing.T) {
	api := new(mockAPI)
	service := NewService(api)
	session := models.Session{}

	api.On("GetOrder", mock.Anything, session, "ord-1").
		Return(models.Order{}, errors.New("connection refused")).Once()

	tracker := OpenProcessing("ord-1")
	err := service.Refresh(context.Background(), session, tracker)

	require.Error(t, err)
	assert.Equal(t, TrackerProcessing, tracker.State)
	assert.Nil(t, tracker.Order)
}

func TestRefreshClosedTracker(t *testing.T) {
	api := new(mockAPI)
	service := NewService(api)

	tracker := OpenProcessing("ord-1")
	tracker.Close()

	err := service.Refresh(context.Background(), models.Session{}, tracker)
	assert.ErrorIs(t, err, ErrTrackerClosed)
	api.AssertNotCalled(t, "GetOrder")
}

func TestAwaitPollsUntilTerminal(t *testing.T) {
	api := new(mockAPI)
	service := NewService(api)
	session := models.Session{}

	api.On("GetOrder", mock.Anything, session, "ord-1").
		Return(models.Order{ID: "ord-1", Status: models.OrderProcessing}, nil).Twice()
	api.On("GetOrder", mock.Anything, session, "ord-1").
		Return(models.Order{ID: "ord-1", Status: models.OrderCompleted}, nil).Once()

	tracker := OpenProcessing("ord-1")
	err := service.Await(context.Background(), session, tracker, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, TrackerSuccess, tracker.State)
	api.AssertExpectations(t)
}

func TestAwaitStopsOnContextCancel(t *testing.T) {
	api := new(mockAPI)
	service := NewService(api)
	session := models.Session{}

	api.On("GetOrder", mock.Anything, session, "ord-1").
		Return(models.Order{ID: "ord-1", Status: models.OrderProcessing}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	tracker := OpenProcessing("ord-1")
	err := service.Await(ctx, session, tracker, 5*time.Millisecond)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, TrackerProcessing, tracker.State)
}

func TestResendFailureIsIsolated(t *testing.T) {
	api := new(mockAPI)
	service := NewService(api)
	session := models.Session{}

	completed := models.Order{
		ID:          "ord-1",
		Status:      models.OrderCompleted,
		Credentials: &models.Credentials{Code: "GIFT-1234-5678"},
	}
	api.On("ResendCredentials", mock.Anything, session, "ord-1").
		Return(&upstream.APIError{StatusCode: 500, Message: "mail gateway unavailable"}).Once()
	api.On("GetOrder", mock.Anything, session, "ord-1").Return(completed, nil).Once()

	err := service.Resend(context.Background(), session, "ord-1")
	require.Error(t, err)

	// The order's other affordances are unaffected by the resend failure.
	view, derr := service.Detail(context.Background(), session, "ord-1")
	require.NoError(t, derr)
	assert.True(t, view.HasCredentials)
	assert.True(t, view.CanResend)
	assert.False(t, view.ShowFailureNotice)
}
