package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error into one of the stable categories that the
// HTTP layer maps to status codes. The set is closed; callers switch on it.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindCapacityExceeded   Kind = "capacity_exceeded"
	KindPromoInvalid       Kind = "promo_invalid"
	KindCurrencyNotAllowed Kind = "currency_not_allowed"
	KindRateUnavailable    Kind = "rate_unavailable"
	KindConflict           Kind = "conflict"
	KindPersistence        Kind = "persistence"
)

// Error is the domain error type carried through every layer of the service.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindPersistence when err is not a domain
// error. It unwraps through fmt.Errorf("%w") chains.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindPersistence
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

// NewCapacityExceededError reports an admission rejection. shortfall is the
// number of seats by which the request overshoots the region's capacity.
func NewCapacityExceededError(regionName string, shortfall int) *Error {
	return &Error{
		Kind:    KindCapacityExceeded,
		Message: fmt.Sprintf("region %q is short %d seat(s) for this request", regionName, shortfall),
	}
}

func NewPromoInvalidError(reason string) *Error {
	return &Error{Kind: KindPromoInvalid, Message: reason}
}

func NewCurrencyNotAllowedError(code string) *Error {
	return &Error{Kind: KindCurrencyNotAllowed, Message: fmt.Sprintf("currency %q is not enabled", code)}
}

func NewRateUnavailableError(err error) *Error {
	return &Error{Kind: KindRateUnavailable, Message: "exchange rate unavailable", Err: err}
}

func NewConflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewPersistenceError(err error) *Error {
	return &Error{Kind: KindPersistence, Message: "storage operation failed", Err: err}
}
