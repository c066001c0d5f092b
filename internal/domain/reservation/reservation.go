package reservation

import (
	"time"

	"github.com/arena-tix/service-booking/internal/domain"
	"github.com/google/uuid"
)

// Status represents the lifecycle state of a reservation.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

// Item is one line of a reservation: a quantity of seats in one region.
type Item struct {
	ID           uuid.UUID
	RegionID     uuid.UUID
	Qty          int
	UnitPriceRsd int64
	LineTotalRsd int64
}

// NewItem builds an item with its line total derived from qty and unit price.
func NewItem(regionID uuid.UUID, qty int, unitPriceRsd int64) Item {
	return Item{
		ID:           uuid.New(),
		RegionID:     regionID,
		Qty:          qty,
		UnitPriceRsd: unitPriceRsd,
		LineTotalRsd: unitPriceRsd * int64(qty),
	}
}

// Reservation is the aggregate root for a customer booking. The access code
// is the customer-facing bearer token; together with the email it gates all
// self-service operations.
type Reservation struct {
	id              uuid.UUID
	accessCode      string
	showID          uuid.UUID
	status          Status
	fullName        string
	email           string
	totalRsd        int64
	currencyCode    string
	fxRateUsed      *float64
	totalInCurrency *float64
	promoCodeUsed   *string
	items           []Item
	createdAt       time.Time
	updatedAt       time.Time
}

// New creates an ACTIVE reservation with a freshly generated access code.
// uuid.NewString draws from crypto/rand, which is what makes the code an
// acceptable bearer secret.
func New(showID uuid.UUID, fullName, email string, items []Item, totalRsd int64) *Reservation {
	now := time.Now().UTC()
	return &Reservation{
		id:         uuid.New(),
		accessCode: uuid.NewString(),
		showID:     showID,
		status:     StatusActive,
		fullName:   fullName,
		email:      email,
		totalRsd:   totalRsd,
		items:      items,
		createdAt:  now,
		updatedAt:  now,
	}
}

// Reconstruct rebuilds a Reservation from persistence.
func Reconstruct(
	id uuid.UUID, accessCode string, showID uuid.UUID, status Status,
	fullName, email string, totalRsd int64,
	currencyCode string, fxRateUsed, totalInCurrency *float64, promoCodeUsed *string,
	items []Item, createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id: id, accessCode: accessCode, showID: showID, status: status,
		fullName: fullName, email: email, totalRsd: totalRsd,
		currencyCode: currencyCode, fxRateUsed: fxRateUsed,
		totalInCurrency: totalInCurrency, promoCodeUsed: promoCodeUsed,
		items: items, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Getters.
func (r *Reservation) ID() uuid.UUID             { return r.id }
func (r *Reservation) AccessCode() string        { return r.accessCode }
func (r *Reservation) ShowID() uuid.UUID         { return r.showID }
func (r *Reservation) Status() Status            { return r.status }
func (r *Reservation) FullName() string          { return r.fullName }
func (r *Reservation) Email() string             { return r.email }
func (r *Reservation) TotalRsd() int64           { return r.totalRsd }
func (r *Reservation) CurrencyCode() string      { return r.currencyCode }
func (r *Reservation) FxRateUsed() *float64      { return r.fxRateUsed }
func (r *Reservation) TotalInCurrency() *float64 { return r.totalInCurrency }
func (r *Reservation) PromoCodeUsed() *string    { return r.promoCodeUsed }
func (r *Reservation) Items() []Item             { return r.items }
func (r *Reservation) CreatedAt() time.Time      { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time      { return r.updatedAt }

// AttachPromo records the promo code this reservation redeemed.
func (r *Reservation) AttachPromo(code string) {
	r.promoCodeUsed = &code
}

// AttachCurrency records the display currency computed at creation time.
func (r *Reservation) AttachCurrency(code string, rate, totalInCurrency float64) {
	r.currencyCode = code
	r.fxRateUsed = &rate
	r.totalInCurrency = &totalInCurrency
}

// ReplaceItems swaps all items and the base total on an ACTIVE reservation.
// When a display currency was recorded at creation, its total is recomputed
// with the stored rate so the pair stays comparable.
func (r *Reservation) ReplaceItems(items []Item, totalRsd int64) error {
	if r.status == StatusCancelled {
		return domain.NewConflictError("reservation %s is cancelled and cannot be modified", r.accessCode)
	}
	r.items = items
	r.totalRsd = totalRsd
	if r.fxRateUsed != nil {
		converted := round2(float64(totalRsd) * *r.fxRateUsed)
		r.totalInCurrency = &converted
	}
	r.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions ACTIVE -> CANCELLED. CANCELLED is terminal; a repeat
// cancellation is a Conflict, never a silent success.
func (r *Reservation) Cancel() error {
	if r.status == StatusCancelled {
		return domain.NewConflictError("reservation %s is already cancelled", r.accessCode)
	}
	r.status = StatusCancelled
	r.updatedAt = time.Now().UTC()
	return nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
