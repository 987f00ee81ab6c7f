package catalog

import (
	"net/http"
	"strconv"

	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the gift card catalog
type Handler struct {
	service *Service
}

// NewHandler creates a new catalog handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns a catalog page
// GET /api/v1/products
func (h *Handler) List(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	products, err := h.service.ListProducts(c.Request.Context(), session, page, limit)
	if common.HandleServiceError(c, err, "failed to list products") {
		return
	}

	common.SuccessResponseWithMeta(c, products, &common.Meta{
		Page:    page,
		PerPage: limit,
	})
}

// Get returns one product
// GET /api/v1/products/:id
func (h *Handler) Get(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, ok := common.RequireParam(c, "id", "product id")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), session, productID)
	if common.HandleServiceError(c, err, "failed to get product") {
		return
	}

	common.SuccessResponse(c, product)
}

// RegisterRoutes registers catalog routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	products := r.Group("/api/v1/products")
	products.Use(middleware.AuthMiddleware(jwtSecret))
	{
		products.GET("", h.List)
		products.GET("/:id", h.Get)
	}
}
