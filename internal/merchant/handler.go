package merchant

import (
	"net/http"

	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/middleware"
	"github.com/cardora/giftcard-market/pkg/models"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for merchant accounts
type Handler struct {
	service *Service
}

// NewHandler creates a new merchant handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateProfileRequest is the provisioning payload.
type CreateProfileRequest struct {
	ChargeType models.ChargeType `json:"charge_type" binding:"required,oneof=PREPAID POSTPAID"`
}

// AddCardRequest carries the tokenized card reference from the payment form.
type AddCardRequest struct {
	Token      string `json:"token" binding:"required"`
	SetDefault bool   `json:"set_default"`
}

// GetProfile returns the caller's merchant profile with a masked credential
// GET /api/v1/merchant/profile
func (h *Handler) GetProfile(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.service.GetProfile(c.Request.Context(), session)
	if common.HandleServiceError(c, err, "failed to get merchant profile") {
		return
	}

	common.SuccessResponse(c, view)
}

// CreateProfile provisions an API profile and returns the credential once
// POST /api/v1/merchant/profile
func (h *Handler) CreateProfile(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateProfileRequest
	if !common.BindJSON(c, &req) {
		return
	}

	secret, err := h.service.CreateProfile(c.Request.Context(), session, req.ChargeType)
	if common.HandleServiceError(c, err, "failed to create merchant profile") {
		return
	}

	common.CreatedResponse(c, secret)
}

// RegenerateToken rotates the credential and returns the new one once
// POST /api/v1/merchant/profile/regenerate
func (h *Handler) RegenerateToken(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	secret, err := h.service.RegenerateToken(c.Request.Context(), session)
	if common.HandleServiceError(c, err, "failed to regenerate credential") {
		return
	}

	common.SuccessResponse(c, secret)
}

// ListCards returns the caller's saved payment methods
// GET /api/v1/merchant/cards
func (h *Handler) ListCards(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	cards, err := h.service.ListSavedCards(c.Request.Context(), session)
	if common.HandleServiceError(c, err, "failed to list saved cards") {
		return
	}

	common.SuccessResponse(c, cards)
}

// AddCard registers a tokenized payment method
// POST /api/v1/merchant/cards
func (h *Handler) AddCard(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddCardRequest
	if !common.BindJSON(c, &req) {
		return
	}

	card, err := h.service.AddCard(c.Request.Context(), session, req.Token, req.SetDefault)
	if common.HandleServiceError(c, err, "failed to add card") {
		return
	}

	common.CreatedResponse(c, card)
}

// RegisterRoutes registers merchant routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	group := r.Group("/api/v1/merchant")
	group.Use(middleware.AuthMiddleware(jwtSecret))
	group.Use(middleware.RequireAccountType(models.AccountMerchant, models.AccountAdmin))
	{
		group.GET("/profile", h.GetProfile)
		group.POST("/profile", h.CreateProfile)
		group.POST("/profile/regenerate", h.RegenerateToken)
		group.GET("/cards", h.ListCards)
		group.POST("/cards", h.AddCard)
	}
}
