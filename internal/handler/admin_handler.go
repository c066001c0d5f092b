package handler

import (
	"crypto/subtle"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arena-tix/service-booking/internal/application"
)

const adminSessionTTL = 12 * time.Hour

// AdminHandler handles admin login and the sales reports.
type AdminHandler struct {
	reports *application.ReportService
	secret  string
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reports *application.ReportService, secret string) *AdminHandler {
	return &AdminHandler{reports: reports, secret: secret}
}

// RegisterRoutes registers the admin routes. The reports group is gated by
// RequireAdmin; login itself is open.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.POST("/login", h.Login)

	reports := admin.Group("/reports")
	reports.Use(RequireAdmin(h.secret))
	{
		reports.GET("/by-show", h.SalesByShow)
		reports.GET("/by-venue", h.SalesByVenue)
	}
}

// Login handles POST /api/v1/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Secret string `json:"secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if h.secret == "" || subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.secret)) != 1 {
		Unauthorized(c, "invalid admin secret")
		return
	}

	c.SetCookie(adminCookieName, h.secret, int(adminSessionTTL.Seconds()), "/", "", false, true)
	Success(c, gin.H{"logged_in": true})
}

// SalesByShow handles GET /api/v1/admin/reports/by-show?from=...&to=...
func (h *AdminHandler) SalesByShow(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	rows, err := h.reports.SalesByShow(c.Request.Context(), from, to)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, rows)
}

// SalesByVenue handles GET /api/v1/admin/reports/by-venue?from=...&to=...
func (h *AdminHandler) SalesByVenue(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	rows, err := h.reports.SalesByVenue(c.Request.Context(), from, to)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, rows)
}

// parseDateRange reads optional from/to query params in YYYY-MM-DD form.
func parseDateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}
