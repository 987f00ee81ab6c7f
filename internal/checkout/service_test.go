package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/cardora/giftcard-market/internal/orders"
	"github.com/cardora/giftcard-market/internal/upstream"
	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetProduct(ctx context.Context, session models.Session, productID string) (*models.Product, error) {
	args := m.Called(ctx, session, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type mockCards struct {
	mock.Mock
}

func (m *mockCards) ListSavedCards(ctx context.Context, session models.Session) ([]models.SavedCard, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SavedCard), args.Error(1)
}

type mockOrderAPI struct {
	mock.Mock
}

func (m *mockOrderAPI) CreateOrder(ctx context.Context, session models.Session, req upstream.CreateOrderRequest) (models.Order, error) {
	args := m.Called(ctx, session, req)
	return args.Get(0).(models.Order), args.Error(1)
}

func (m *mockOrderAPI) Purchase(ctx context.Context, session models.Session, req upstream.PurchaseRequest) (upstream.PurchaseResult, error) {
	args := m.Called(ctx, session, req)
	return args.Get(0).(upstream.PurchaseResult), args.Error(1)
}

func rangeProduct() *models.Product {
	return &models.Product{
		ID:               "gc-range",
		Name:             "Range Card",
		DenominationType: models.DenominationRange,
		MinAmount:        10,
		MaxAmount:        100,
		IsActive:         true,
	}
}

func fixedProduct() *models.Product {
	return &models.Product{
		ID:               "gc-fixed",
		Name:             "Fixed Card",
		DenominationType: models.DenominationFixed,
		Denominations:    []float64{25, 50, 100},
		IsActive:         true,
	}
}

func consumerSession() models.Session {
	return models.Session{AccountType: models.AccountConsumer, Email: "buyer@example.com"}
}

func merchantSession() models.Session {
	return models.Session{AccountType: models.AccountMerchant, Email: "shop@example.com"}
}

func newTestService(catalog *mockCatalog, cards *mockCards, api *mockOrderAPI) *Service {
	return NewService(catalog, cards, api, "https://store.example.com/success", "https://store.example.com/failure")
}

func validConsumerRequest() SubmitRequest {
	return SubmitRequest{
		ProductID:      "gc-range",
		Amount:         50,
		Quantity:       1,
		RecipientEmail: "friend@example.com",
	}
}

func TestSubmitRangeAmountValidation(t *testing.T) {
	cases := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"below minimum", 9.99, true},
		{"at minimum", 10, false},
		{"inside range", 55, false},
		{"at maximum", 100, false},
		{"above maximum", 100.01, true},
		{"zero", 0, true},
		{"negative", -5, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			catalog := new(mockCatalog)
			api := new(mockOrderAPI)
			service := newTestService(catalog, new(mockCards), api)
			session := consumerSession()

			catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
			if !tc.wantErr {
				api.On("CreateOrder", mock.Anything, session, mock.Anything).
					Return(models.Order{ID: "ord-1"}, nil)
			}

			req := validConsumerRequest()
			req.Amount = tc.amount
			_, err := service.Submit(context.Background(), session, req)

			if tc.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, "amount")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubmitFixedAmountValidation(t *testing.T) {
	cases := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"listed denomination", 50, false},
		{"unlisted denomination", 30, true},
		{"near miss", 49.99, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			catalog := new(mockCatalog)
			api := new(mockOrderAPI)
			service := newTestService(catalog, new(mockCards), api)
			session := consumerSession()

			catalog.On("GetProduct", mock.Anything, session, "gc-fixed").Return(fixedProduct(), nil)
			if !tc.wantErr {
				api.On("CreateOrder", mock.Anything, session, mock.Anything).
					Return(models.Order{ID: "ord-1"}, nil)
			}

			req := validConsumerRequest()
			req.ProductID = "gc-fixed"
			req.Amount = tc.amount
			_, err := service.Submit(context.Background(), session, req)

			if tc.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, "amount")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubmitCollectsAllFieldErrors(t *testing.T) {
	catalog := new(mockCatalog)
	cards := new(mockCards)
	service := newTestService(catalog, cards, new(mockOrderAPI))
	session := merchantSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	cards.On("ListSavedCards", mock.Anything, session).
		Return([]models.SavedCard{{CardID: "card-1", Brand: "VISA", Last4: "4242"}}, nil)

	_, err := service.Submit(context.Background(), session, SubmitRequest{
		ProductID:      "gc-range",
		Amount:         0,
		Quantity:       1,
		RecipientEmail: "not-an-email",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "amount")
	assert.Contains(t, verr.Fields, "recipient_email")
	assert.Contains(t, verr.Fields, "recipient_name")
	assert.Contains(t, verr.Fields, "card_id")
	assert.True(t, verr.OpenAddCard)
}

func TestSubmitMerchantCardNotRequiredWithoutSavedCards(t *testing.T) {
	catalog := new(mockCatalog)
	cards := new(mockCards)
	api := new(mockOrderAPI)
	service := newTestService(catalog, cards, api)
	session := merchantSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	cards.On("ListSavedCards", mock.Anything, session).Return([]models.SavedCard{}, nil)
	api.On("Purchase", mock.Anything, session, mock.Anything).
		Return(upstream.PurchaseResult{Order: models.Order{ID: "ord-1"}, Message: "ok"}, nil)

	req := validConsumerRequest()
	req.RecipientName = "A Friend"
	_, err := service.Submit(context.Background(), session, req)
	assert.NoError(t, err)
}

func TestSubmitConsumerRedirectOutcome(t *testing.T) {
	catalog := new(mockCatalog)
	api := new(mockOrderAPI)
	service := newTestService(catalog, new(mockCards), api)
	session := consumerSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	api.On("CreateOrder", mock.Anything, session, mock.MatchedBy(func(req upstream.CreateOrderRequest) bool {
		return req.SuccessURL == "https://store.example.com/success" &&
			req.FailureURL == "https://store.example.com/failure"
	})).Return(models.Order{ID: "ord-1", PaymentURL: "https://pay.example.com/form/abc"}, nil)

	outcome, err := service.Submit(context.Background(), session, validConsumerRequest())

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/form/abc", outcome.RedirectURL)
	assert.Nil(t, outcome.Tracker, "redirect outcome must not open a tracker")
}

func TestSubmitConsumerProcessingTrackerOutcome(t *testing.T) {
	catalog := new(mockCatalog)
	api := new(mockOrderAPI)
	service := newTestService(catalog, new(mockCards), api)
	session := consumerSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	api.On("CreateOrder", mock.Anything, session, mock.Anything).
		Return(models.Order{ID: "ord-42"}, nil)

	outcome, err := service.Submit(context.Background(), session, validConsumerRequest())

	require.NoError(t, err)
	assert.Empty(t, outcome.RedirectURL)
	require.NotNil(t, outcome.Tracker)
	assert.Equal(t, orders.TrackerProcessing, outcome.Tracker.State)
	assert.Equal(t, "ord-42", outcome.Tracker.OrderID)
}

func TestSubmitConsumerAmbiguousResponse(t *testing.T) {
	catalog := new(mockCatalog)
	api := new(mockOrderAPI)
	service := newTestService(catalog, new(mockCards), api)
	session := consumerSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	api.On("CreateOrder", mock.Anything, session, mock.Anything).
		Return(models.Order{}, upstream.ErrAmbiguousResponse)

	_, err := service.Submit(context.Background(), session, validConsumerRequest())

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 502, appErr.Code)
}

func TestSubmitMerchantSuccessTracker(t *testing.T) {
	catalog := new(mockCatalog)
	cards := new(mockCards)
	api := new(mockOrderAPI)
	service := newTestService(catalog, cards, api)
	session := merchantSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	cards.On("ListSavedCards", mock.Anything, session).
		Return([]models.SavedCard{{CardID: "card-1"}}, nil)
	api.On("Purchase", mock.Anything, session, mock.MatchedBy(func(req upstream.PurchaseRequest) bool {
		return req.CardID == "card-1" && req.Email == "friend@example.com"
	})).Return(upstream.PurchaseResult{
		Order:   models.Order{ID: "ord-7", Status: models.OrderCompleted},
		Message: "order completed successfully",
	}, nil)

	req := validConsumerRequest()
	req.RecipientName = "A Friend"
	req.CardID = "card-1"
	outcome, err := service.Submit(context.Background(), session, req)

	require.NoError(t, err)
	require.NotNil(t, outcome.Tracker)
	assert.Equal(t, orders.TrackerSuccess, outcome.Tracker.State)
	assert.Equal(t, "Order completed successfully.", outcome.Tracker.Message)
	assert.Empty(t, outcome.RedirectURL)
}

func TestSubmitMerchantRejectionOpensFailedTracker(t *testing.T) {
	catalog := new(mockCatalog)
	cards := new(mockCards)
	api := new(mockOrderAPI)
	service := newTestService(catalog, cards, api)
	session := merchantSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	cards.On("ListSavedCards", mock.Anything, session).Return([]models.SavedCard{}, nil)
	api.On("Purchase", mock.Anything, session, mock.Anything).
		Return(upstream.PurchaseResult{}, &upstream.APIError{StatusCode: 402, Message: "insufficient balance"})

	req := validConsumerRequest()
	req.RecipientName = "A Friend"
	outcome, err := service.Submit(context.Background(), session, req)

	require.NoError(t, err, "a definitive rejection is a tracker outcome, not an error")
	require.NotNil(t, outcome.Tracker)
	assert.Equal(t, orders.TrackerFailed, outcome.Tracker.State)
	assert.Equal(t, "Insufficient balance.", outcome.Tracker.Message)
}

func TestSubmitMerchantTransportErrorIsError(t *testing.T) {
	catalog := new(mockCatalog)
	cards := new(mockCards)
	api := new(mockOrderAPI)
	service := newTestService(catalog, cards, api)
	session := merchantSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	cards.On("ListSavedCards", mock.Anything, session).Return([]models.SavedCard{}, nil)
	api.On("Purchase", mock.Anything, session, mock.Anything).
		Return(upstream.PurchaseResult{}, errors.New("connection reset"))

	req := validConsumerRequest()
	req.RecipientName = "A Friend"
	_, err := service.Submit(context.Background(), session, req)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 502, appErr.Code)
}

func TestSubmitDispatchesExactlyOnce(t *testing.T) {
	catalog := new(mockCatalog)
	api := new(mockOrderAPI)
	service := newTestService(catalog, new(mockCards), api)
	session := consumerSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	api.On("CreateOrder", mock.Anything, session, mock.Anything).
		Return(models.Order{ID: "ord-1"}, nil).Once()

	_, err := service.Submit(context.Background(), session, validConsumerRequest())
	require.NoError(t, err)
	api.AssertNumberOfCalls(t, "CreateOrder", 1)
	api.AssertNotCalled(t, "Purchase")
}

func TestPrettifyMessage(t *testing.T) {
	assert.Equal(t, "Order completed successfully.", prettifyMessage("order completed successfully"))
	assert.Equal(t, "Card declined.", prettifyMessage("  card declined  "))
	assert.Equal(t, "Already ends.", prettifyMessage("already ends."))
	assert.Equal(t, "Really?", prettifyMessage("really?"))
	assert.Equal(t, "", prettifyMessage("   "))
}
