package orders

import (
	"net/http"
	"strconv"

	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/middleware"
	"github.com/cardora/giftcard-market/pkg/models"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for orders
type Handler struct {
	service *Service
}

// NewHandler creates a new orders handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns the caller's order history
// GET /api/v1/orders
func (h *Handler) List(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	orders, err := h.service.List(c.Request.Context(), session, page, limit)
	if common.HandleServiceError(c, err, "failed to list orders") {
		return
	}

	common.SuccessResponseWithMeta(c, orders, &common.Meta{Page: page, PerPage: limit})
}

// Detail returns one order with its affordances
// GET /api/v1/orders/:id
func (h *Handler) Detail(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, ok := common.RequireParam(c, "id", "order id")
	if !ok {
		return
	}

	view, err := h.service.Detail(c.Request.Context(), session, orderID)
	if common.HandleServiceError(c, err, "failed to get order") {
		return
	}

	common.SuccessResponse(c, view)
}

// Refresh re-reads the order once and returns the tracker outcome
// POST /api/v1/orders/:id/refresh
func (h *Handler) Refresh(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, ok := common.RequireParam(c, "id", "order id")
	if !ok {
		return
	}

	tracker := OpenProcessing(orderID)
	if err := h.service.Refresh(c.Request.Context(), session, tracker); err != nil {
		common.HandleServiceError(c, mapUpstreamError(err, "failed to refresh order"), "failed to refresh order")
		return
	}

	common.SuccessResponse(c, tracker)
}

// Credentials reveals the full card secret for a completed order
// GET /api/v1/orders/:id/credentials
func (h *Handler) Credentials(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, ok := common.RequireParam(c, "id", "order id")
	if !ok {
		return
	}

	creds, err := h.service.Credentials(c.Request.Context(), session, orderID)
	if common.HandleServiceError(c, err, "failed to get credentials") {
		return
	}

	common.SuccessResponse(c, creds)
}

// Resend re-delivers credentials to the recipient on file
// POST /api/v1/orders/:id/resend
func (h *Handler) Resend(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, ok := common.RequireParam(c, "id", "order id")
	if !ok {
		return
	}

	if err := h.service.Resend(c.Request.Context(), session, orderID); err != nil {
		common.HandleServiceError(c, err, "failed to resend credentials")
		return
	}

	common.SuccessResponse(c, gin.H{"message": "Credentials resent successfully"})
}

// Refund refunds a settled order
// POST /api/v1/admin/orders/:id/refund
func (h *Handler) Refund(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, ok := common.RequireParam(c, "id", "order id")
	if !ok {
		return
	}

	view, err := h.service.Refund(c.Request.Context(), session, orderID)
	if common.HandleServiceError(c, err, "failed to refund order") {
		return
	}

	common.SuccessResponse(c, view)
}

// Void cancels an unsettled order
// POST /api/v1/admin/orders/:id/void
func (h *Handler) Void(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, ok := common.RequireParam(c, "id", "order id")
	if !ok {
		return
	}

	view, err := h.service.Void(c.Request.Context(), session, orderID)
	if common.HandleServiceError(c, err, "failed to void order") {
		return
	}

	common.SuccessResponse(c, view)
}

// RegisterRoutes registers order routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	orders := r.Group("/api/v1/orders")
	orders.Use(middleware.AuthMiddleware(jwtSecret))
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Detail)
		orders.POST("/:id/refresh", h.Refresh)
		orders.GET("/:id/credentials", h.Credentials)
		orders.POST("/:id/resend", h.Resend)
	}

	admin := r.Group("/api/v1/admin/orders")
	admin.Use(middleware.AuthMiddleware(jwtSecret))
	admin.Use(middleware.RequireAccountType(models.AccountAdmin))
	{
		admin.POST("/:id/refund", h.Refund)
		admin.POST("/:id/void", h.Void)
	}
}
