package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arena-tix/service-booking/internal/application"
	"github.com/arena-tix/service-booking/internal/domain/catalog"
)

// CatalogHandler serves the public catalog, currency list and conversion
// previews.
type CatalogHandler struct {
	catalog catalog.Reader
	fx      *application.FxService
}

// NewCatalogHandler creates a new CatalogHandler. The reader is expected to
// be the cached one.
func NewCatalogHandler(cat catalog.Reader, fx *application.FxService) *CatalogHandler {
	return &CatalogHandler{catalog: cat, fx: fx}
}

// RegisterRoutes registers all catalog routes on the given router group.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/catalog", h.ListShows)
	r.GET("/currencies", h.ListCurrencies)
	r.GET("/fx/convert", h.PreviewConversion)
}

// ListShows handles GET /api/v1/catalog
func (h *CatalogHandler) ListShows(c *gin.Context) {
	shows, err := h.catalog.ListShows(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, shows)
}

// ListCurrencies handles GET /api/v1/currencies
func (h *CatalogHandler) ListCurrencies(c *gin.Context) {
	currencies, err := h.fx.ListCurrencies(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, currencies)
}

// PreviewConversion handles GET /api/v1/fx/convert?amountRsd=...&to=...
func (h *CatalogHandler) PreviewConversion(c *gin.Context) {
	amount, err := strconv.ParseInt(c.Query("amountRsd"), 10, 64)
	if err != nil {
		BadRequest(c, "amountRsd must be an integer")
		return
	}

	preview, err := h.fx.PreviewTotal(c.Request.Context(), amount, c.Query("to"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, preview)
}
