package checkout

import (
	"errors"
	"net/http"

	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for checkout
type Handler struct {
	service *Service
}

// NewHandler creates a new checkout handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit processes one checkout form submission
// POST /api/v1/checkout
func (h *Handler) Submit(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.service.Submit(c.Request.Context(), session, req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, common.Response{
				Success: false,
				Data:    gin.H{"open_add_card": verr.OpenAddCard},
				Error: &common.ErrorInfo{
					Code:    http.StatusUnprocessableEntity,
					Message: "checkout validation failed",
					Fields:  verr.Fields,
				},
			})
			return
		}
		common.HandleServiceError(c, err, "checkout submission failed")
		return
	}

	common.SuccessResponse(c, outcome)
}

// RegisterRoutes registers checkout routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	checkout := r.Group("/api/v1/checkout")
	checkout.Use(middleware.AuthMiddleware(jwtSecret))
	{
		checkout.POST("", h.Submit)
	}
}
