package reservation

import (
	"context"
	"time"

	"github.com/arena-tix/service-booking/internal/domain/promo"
	"github.com/google/uuid"
)

// Repository defines persistence operations for reservations. All methods are
// safe to call inside a Store transaction; SoldQuantity in particular is only
// meaningful there.
type Repository interface {
	Save(ctx context.Context, r *Reservation) error

	// Update persists the aggregate's status, totals and items. The write
	// only applies while the stored row is still ACTIVE; when a concurrent
	// transaction cancelled the reservation after this one read it, Update
	// fails with a Conflict domain error and nothing is written.
	Update(ctx context.Context, r *Reservation) error

	FindByAccessCode(ctx context.Context, accessCode, email string) (*Reservation, error)

	// SoldQuantity returns the committed ACTIVE demand for (showID, regionID),
	// excluding items of excludeReservationID when non-nil. Implementations
	// must first acquire a lock that serializes concurrent admissions on the
	// same pair for the remainder of the transaction.
	SoldQuantity(ctx context.Context, showID, regionID uuid.UUID, excludeReservationID *uuid.UUID) (int, error)
}

// Tx bundles the repositories scoped to one transaction.
type Tx interface {
	Reservations() Repository
	Promos() promo.Repository
}

// Store is the unit of work over the transactional store. fn runs inside a
// single transaction; any error rolls everything back.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// ShowSales is one aggregated report row for a show.
type ShowSales struct {
	ShowID     uuid.UUID `json:"show_id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	VenueName  string    `json:"venue_name"`
	StartsAt   time.Time `json:"starts_at"`
	SoldQty    int64     `json:"sold_qty"`
	RevenueRsd int64     `json:"revenue_rsd"`
}

// VenueSales is one aggregated report row for a venue.
type VenueSales struct {
	VenueID    uuid.UUID `json:"venue_id"`
	VenueName  string    `json:"venue_name"`
	City       string    `json:"city"`
	SoldQty    int64     `json:"sold_qty"`
	RevenueRsd int64     `json:"revenue_rsd"`
}

// Reporter aggregates committed ACTIVE sales for the admin reports. The date
// range is inclusive; either bound may be nil.
type Reporter interface {
	SalesByShow(ctx context.Context, from, to *time.Time) ([]ShowSales, error)
	SalesByVenue(ctx context.Context, from, to *time.Time) ([]VenueSales, error)
}
