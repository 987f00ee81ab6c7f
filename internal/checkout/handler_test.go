package checkout

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cardora/giftcard-market/internal/upstream"
	"github.com/cardora/giftcard-market/pkg/middleware"
	"github.com/cardora/giftcard-market/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func checkoutRouter(service *Service, session models.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetSession(c, session)
		c.Next()
	})
	handler := NewHandler(service)
	r.POST("/api/v1/checkout", handler.Submit)
	return r
}

func postCheckout(t *testing.T, r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitHandlerRedirectOutcome(t *testing.T) {
	catalog := new(mockCatalog)
	api := new(mockOrderAPI)
	service := newTestService(catalog, new(mockCards), api)
	session := consumerSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	api.On("CreateOrder", mock.Anything, session, mock.Anything).
		Return(models.Order{ID: "ord-1", PaymentURL: "https://pay.example.com/form/abc"}, nil)

	w := postCheckout(t, checkoutRouter(service, session), validConsumerRequest())

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			RedirectURL string          `json:"redirect_url"`
			Tracker     json.RawMessage `json:"tracker"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "https://pay.example.com/form/abc", resp.Data.RedirectURL)
	assert.Empty(t, resp.Data.Tracker)
}

func TestSubmitHandlerValidationErrorShape(t *testing.T) {
	catalog := new(mockCatalog)
	cards := new(mockCards)
	service := newTestService(catalog, cards, new(mockOrderAPI))
	session := merchantSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	cards.On("ListSavedCards", mock.Anything, session).
		Return([]models.SavedCard{{CardID: "card-1"}}, nil)

	w := postCheckout(t, checkoutRouter(service, session), SubmitRequest{
		ProductID:      "gc-range",
		Amount:         5000,
		Quantity:       1,
		RecipientEmail: "friend@example.com",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			OpenAddCard bool `json:"open_add_card"`
		} `json:"data"`
		Error struct {
			Code    int               `json:"code"`
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.True(t, resp.Data.OpenAddCard)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Error.Code)
	assert.Equal(t, "checkout validation failed", resp.Error.Message)
	assert.Contains(t, resp.Error.Fields, "amount")
	assert.Contains(t, resp.Error.Fields, "recipient_name")
	assert.Contains(t, resp.Error.Fields, "card_id")
}

func TestSubmitHandlerMalformedBody(t *testing.T) {
	service := newTestService(new(mockCatalog), new(mockCards), new(mockOrderAPI))
	r := checkoutRouter(service, consumerSession())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitHandlerMissingSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := newTestService(new(mockCatalog), new(mockCards), new(mockOrderAPI))
	r := gin.New()
	r.POST("/api/v1/checkout", NewHandler(service).Submit)

	w := postCheckout(t, r, validConsumerRequest())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitHandlerUpstreamFailure(t *testing.T) {
	catalog := new(mockCatalog)
	api := new(mockOrderAPI)
	service := newTestService(catalog, new(mockCards), api)
	session := consumerSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	api.On("CreateOrder", mock.Anything, session, mock.Anything).
		Return(models.Order{}, upstream.ErrAmbiguousResponse)

	w := postCheckout(t, checkoutRouter(service, session), validConsumerRequest())
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSubmitHandlerDefaultsQuantity(t *testing.T) {
	catalog := new(mockCatalog)
	api := new(mockOrderAPI)
	service := newTestService(catalog, new(mockCards), api)
	session := consumerSession()

	catalog.On("GetProduct", mock.Anything, session, "gc-range").Return(rangeProduct(), nil)
	api.On("CreateOrder", mock.Anything, session, mock.MatchedBy(func(req upstream.CreateOrderRequest) bool {
		return req.Quantity == 1
	})).Return(models.Order{ID: "ord-1"}, nil)

	body := validConsumerRequest()
	body.Quantity = 0
	w := postCheckout(t, checkoutRouter(service, session), body)

	assert.Equal(t, http.StatusOK, w.Code)
	api.AssertExpectations(t)
}
