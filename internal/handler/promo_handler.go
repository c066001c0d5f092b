package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/arena-tix/service-booking/internal/application"
)

// PromoHandler handles advisory promo code queries.
type PromoHandler struct {
	service *application.PromoService
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(service *application.PromoService) *PromoHandler {
	return &PromoHandler{service: service}
}

// RegisterRoutes registers all promo routes on the given router group.
func (h *PromoHandler) RegisterRoutes(r *gin.RouterGroup) {
	promos := r.Group("/promos")
	{
		promos.GET("/validate", h.ValidatePromo)
	}
}

// ValidatePromo handles GET /api/v1/promos/validate?code=...
func (h *PromoHandler) ValidatePromo(c *gin.Context) {
	code := c.Query("code")

	status, err := h.service.ValidatePromo(c.Request.Context(), code)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, status)
}
