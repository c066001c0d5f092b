package promo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for promo codes.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*PromoCode, error)

	// Consume transitions a code UNUSED -> USED in one conditional write. It
	// is the authoritative redemption point: when the code is missing or was
	// already consumed by the time the write runs, it fails with a
	// PromoInvalid domain error and the surrounding transaction rolls back.
	Consume(ctx context.Context, code string, reservationID uuid.UUID, at time.Time) error

	// Save persists a freshly issued code.
	Save(ctx context.Context, p *PromoCode) error
}
