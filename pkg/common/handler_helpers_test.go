package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleServiceError_Nil(t *testing.T) {
	c, _ := setupTestContext()
	assert.False(t, HandleServiceError(c, nil, "fallback"))
}

func TestHandleServiceError_AppError(t *testing.T) {
	c, w := setupTestContext()

	handled := HandleServiceError(c, NewBadRequestError("amount must be positive", nil), "fallback")
	require.True(t, handled)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "amount must be positive", resp.Error.Message)
}

func TestHandleServiceError_WrappedAppError(t *testing.T) {
	c, w := setupTestContext()

	wrapped := NewUpstreamError("order refresh failed", errors.New("boom"))
	handled := HandleServiceError(c, wrapped, "fallback")
	require.True(t, handled)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleServiceError_Unknown(t *testing.T) {
	c, w := setupTestContext()

	handled := HandleServiceError(c, errors.New("connection reset"), "failed to submit checkout")
	require.True(t, handled)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "failed to submit checkout", resp.Error.Message)
}

func TestParseUUIDParam(t *testing.T) {
	c, _ := setupTestContext()
	id := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	got, ok := ParseUUIDParam(c, "id", "order ID")
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestParseUUIDParam_Invalid(t *testing.T) {
	c, w := setupTestContext()
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	_, ok := ParseUUIDParam(c, "id", "order ID")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFieldErrorResponse(t *testing.T) {
	c, w := setupTestContext()

	FieldErrorResponse(c, "validation failed", map[string]string{"recipient_email": "invalid email address"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid email address", resp.Error.Fields["recipient_email"])
}
