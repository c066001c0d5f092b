package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/arena-tix/service-booking/internal/application"
)

// ReservationHandler handles HTTP requests for the reservation workflow.
type ReservationHandler struct {
	service *application.BookingService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(service *application.BookingService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// RegisterRoutes registers all reservation routes on the given router group.
func (h *ReservationHandler) RegisterRoutes(r *gin.RouterGroup) {
	reservations := r.Group("/reservations")
	{
		reservations.POST("", h.CreateReservation)
		reservations.POST("/lookup", h.LookupReservation)
		reservations.POST("/modify", h.ModifyReservation)
		reservations.POST("/cancel", h.CancelReservation)
	}
}

// CreateReservation handles POST /api/v1/reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req application.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateReservation(c.Request.Context(), req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, result)
}

// LookupReservation handles POST /api/v1/reservations/lookup. Lookup is a
// POST so the access code never lands in URL logs.
func (h *ReservationHandler) LookupReservation(c *gin.Context) {
	var req application.SelfServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.LookupReservation(c.Request.Context(), req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, dto)
}

// ModifyReservation handles POST /api/v1/reservations/modify
func (h *ReservationHandler) ModifyReservation(c *gin.Context) {
	var req application.ModifyReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.ModifyReservation(c.Request.Context(), req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, dto)
}

// CancelReservation handles POST /api/v1/reservations/cancel
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	var req application.SelfServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.CancelReservation(c.Request.Context(), req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, dto)
}
