package repository

import (
	"context"
	"errors"
	"time"

	"github.com/arena-tix/service-booking/internal/domain"
	reservationDomain "github.com/arena-tix/service-booking/internal/domain/reservation"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReservationRepository implements reservation.Repository using GORM.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GORM-based reservation repository.
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

var _ reservationDomain.Repository = (*GormReservationRepository)(nil)

// WithTx returns a copy of the repository bound to the given transaction.
func (r *GormReservationRepository) WithTx(tx *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: tx}
}

// Save persists a new reservation and its items.
func (r *GormReservationRepository) Save(ctx context.Context, res *reservationDomain.Reservation) error {
	model := toReservationModel(res)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.NewPersistenceError(err)
	}
	return nil
}

// Update persists status, totals and the current item set of an existing
// reservation. The write is conditional on the row still being ACTIVE: a
// cancel that committed after this transaction's read leaves zero rows to
// update, which surfaces as Conflict instead of silently overwriting the
// terminal status. Items are replaced wholesale; the caller runs this inside
// a Store transaction.
func (r *GormReservationRepository) Update(ctx context.Context, res *reservationDomain.Reservation) error {
	model := toReservationModel(res)

	result := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ? AND status = ?", model.ID, string(reservationDomain.StatusActive)).
		Updates(map[string]any{
			"status":            model.Status,
			"total_rsd":         model.TotalRsd,
			"total_in_currency": model.TotalInCurrency,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return domain.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("reservation %s is no longer active", model.AccessCode)
	}

	if err := r.db.WithContext(ctx).
		Where("reservation_id = ?", model.ID).
		Delete(&ReservationItemModel{}).Error; err != nil {
		return domain.NewPersistenceError(err)
	}
	if len(model.Items) > 0 {
		if err := r.db.WithContext(ctx).Create(&model.Items).Error; err != nil {
			return domain.NewPersistenceError(err)
		}
	}
	return nil
}

// FindByAccessCode retrieves a reservation by its bearer pair. Both values
// must match; a miss on either is indistinguishable from a missing record.
func (r *GormReservationRepository) FindByAccessCode(ctx context.Context, accessCode, email string) (*reservationDomain.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("access_code = ? AND email = ?", accessCode, email).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reservation", accessCode)
		}
		return nil, domain.NewPersistenceError(err)
	}
	return toReservationDomain(&model), nil
}

// SoldQuantity returns the committed ACTIVE demand on (showID, regionID).
//
// It first takes a FOR UPDATE lock on the pair's show_prices row, so every
// concurrent admission for the same pair serializes behind this transaction
// until commit. Without the lock two transactions could both read a sold
// count below capacity and both insert.
func (r *GormReservationRepository) SoldQuantity(ctx context.Context, showID, regionID uuid.UUID, excludeReservationID *uuid.UUID) (int, error) {
	var lockRow ShowPriceModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("show_id = ? AND region_id = ?", showID, regionID).
		First(&lockRow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.NewNotFoundError("ShowPrice", showID.String()+"/"+regionID.String())
		}
		return 0, domain.NewPersistenceError(err)
	}

	q := r.db.WithContext(ctx).
		Table("reservation_items").
		Joins("JOIN reservations ON reservations.id = reservation_items.reservation_id").
		Where("reservations.show_id = ?", showID).
		Where("reservation_items.region_id = ?", regionID).
		Where("reservations.status = ?", string(reservationDomain.StatusActive))
	if excludeReservationID != nil {
		q = q.Where("reservation_items.reservation_id <> ?", *excludeReservationID)
	}

	var sold int64
	if err := q.Select("COALESCE(SUM(reservation_items.qty), 0)").Scan(&sold).Error; err != nil {
		return 0, domain.NewPersistenceError(err)
	}
	return int(sold), nil
}

// SalesByShow aggregates ACTIVE sales per show within the optional inclusive
// date range.
func (r *GormReservationRepository) SalesByShow(ctx context.Context, from, to *time.Time) ([]reservationDomain.ShowSales, error) {
	q := r.db.WithContext(ctx).
		Table("reservations").
		Select(`shows.id AS show_id,
			events.title AS title,
			events.artist AS artist,
			venues.name AS venue_name,
			shows.starts_at AS starts_at,
			COALESCE(SUM(item_totals.qty), 0) AS sold_qty,
			COALESCE(SUM(reservations.total_rsd), 0) AS revenue_rsd`).
		Joins("JOIN shows ON shows.id = reservations.show_id").
		Joins("JOIN events ON events.id = shows.event_id").
		Joins("JOIN venues ON venues.id = shows.venue_id").
		Joins(`LEFT JOIN (
			SELECT reservation_id, SUM(qty) AS qty
			FROM reservation_items GROUP BY reservation_id
		) item_totals ON item_totals.reservation_id = reservations.id`).
		Where("reservations.status = ?", string(reservationDomain.StatusActive))
	q = applyDateRange(q, from, to)

	var rows []reservationDomain.ShowSales
	if err := q.Group("shows.id, events.title, events.artist, venues.name, shows.starts_at").
		Order("shows.starts_at asc").
		Scan(&rows).Error; err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return rows, nil
}

// SalesByVenue aggregates ACTIVE sales per venue within the optional
// inclusive date range.
func (r *GormReservationRepository) SalesByVenue(ctx context.Context, from, to *time.Time) ([]reservationDomain.VenueSales, error) {
	q := r.db.WithContext(ctx).
		Table("reservations").
		Select(`venues.id AS venue_id,
			venues.name AS venue_name,
			venues.city AS city,
			COALESCE(SUM(item_totals.qty), 0) AS sold_qty,
			COALESCE(SUM(reservations.total_rsd), 0) AS revenue_rsd`).
		Joins("JOIN shows ON shows.id = reservations.show_id").
		Joins("JOIN venues ON venues.id = shows.venue_id").
		Joins(`LEFT JOIN (
			SELECT reservation_id, SUM(qty) AS qty
			FROM reservation_items GROUP BY reservation_id
		) item_totals ON item_totals.reservation_id = reservations.id`).
		Where("reservations.status = ?", string(reservationDomain.StatusActive))
	q = applyDateRange(q, from, to)

	var rows []reservationDomain.VenueSales
	if err := q.Group("venues.id, venues.name, venues.city").
		Order("venues.name asc").
		Scan(&rows).Error; err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return rows, nil
}

// applyDateRange bounds reservations.created_at. The to bound is extended to
// the end of its day, matching how the reports treat a date-only upper bound.
func applyDateRange(q *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where("reservations.created_at >= ?", *from)
	}
	if to != nil {
		end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), to.Location())
		q = q.Where("reservations.created_at <= ?", end)
	}
	return q
}

func toReservationModel(r *reservationDomain.Reservation) ReservationModel {
	items := make([]ReservationItemModel, len(r.Items()))
	for i, it := range r.Items() {
		items[i] = ReservationItemModel{
			ID:            it.ID,
			ReservationID: r.ID(),
			RegionID:      it.RegionID,
			Qty:           it.Qty,
			UnitPriceRsd:  it.UnitPriceRsd,
			LineTotalRsd:  it.LineTotalRsd,
		}
	}
	return ReservationModel{
		ID:              r.ID(),
		AccessCode:      r.AccessCode(),
		ShowID:          r.ShowID(),
		Status:          string(r.Status()),
		FullName:        r.FullName(),
		Email:           r.Email(),
		TotalRsd:        r.TotalRsd(),
		CurrencyCode:    r.CurrencyCode(),
		FxRateUsed:      r.FxRateUsed(),
		TotalInCurrency: r.TotalInCurrency(),
		PromoCodeUsed:   r.PromoCodeUsed(),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
		Items:           items,
	}
}

func toReservationDomain(m *ReservationModel) *reservationDomain.Reservation {
	items := make([]reservationDomain.Item, len(m.Items))
	for i, it := range m.Items {
		items[i] = reservationDomain.Item{
			ID:           it.ID,
			RegionID:     it.RegionID,
			Qty:          it.Qty,
			UnitPriceRsd: it.UnitPriceRsd,
			LineTotalRsd: it.LineTotalRsd,
		}
	}
	return reservationDomain.Reconstruct(
		m.ID, m.AccessCode, m.ShowID, reservationDomain.Status(m.Status),
		m.FullName, m.Email, m.TotalRsd,
		m.CurrencyCode, m.FxRateUsed, m.TotalInCurrency, m.PromoCodeUsed,
		items, m.CreatedAt, m.UpdatedAt,
	)
}
