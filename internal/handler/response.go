package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arena-tix/service-booking/internal/domain"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success writes a 200 with the payload.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 with the payload.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Error: msg})
}

// Unauthorized writes a 401 with the given message.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, envelope{Success: false, Error: msg})
}

// Error maps a domain error to its HTTP status. Unknown errors become a 500
// with a generic message so internals never leak.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindPromoInvalid, domain.KindCurrencyNotAllowed:
		status = http.StatusBadRequest
		msg = err.Error()
	case domain.KindNotFound:
		status = http.StatusNotFound
		msg = err.Error()
	case domain.KindCapacityExceeded, domain.KindConflict:
		status = http.StatusConflict
		msg = err.Error()
	case domain.KindRateUnavailable:
		status = http.StatusBadGateway
		msg = err.Error()
	}

	c.JSON(status, envelope{Success: false, Error: msg})
}
