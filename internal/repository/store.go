package repository

import (
	"context"
	"errors"

	"github.com/arena-tix/service-booking/internal/domain"
	promoDomain "github.com/arena-tix/service-booking/internal/domain/promo"
	reservationDomain "github.com/arena-tix/service-booking/internal/domain/reservation"
	"gorm.io/gorm"
)

// GormStore implements the reservation.Store unit of work over a GORM
// database handle. Every InTx call runs its function inside one database
// transaction; repositories handed to the function are bound to it.
type GormStore struct {
	db           *gorm.DB
	reservations *GormReservationRepository
	promos       *GormPromoRepository
}

// NewGormStore creates the unit of work.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:           db,
		reservations: NewGormReservationRepository(db),
		promos:       NewGormPromoRepository(db),
	}
}

var _ reservationDomain.Store = (*GormStore)(nil)

type gormTx struct {
	reservations *GormReservationRepository
	promos       *GormPromoRepository
}

func (t gormTx) Reservations() reservationDomain.Repository { return t.reservations }
func (t gormTx) Promos() promoDomain.Repository             { return t.promos }

// InTx runs fn inside a single transaction. Any error rolls the whole unit
// back; domain errors pass through untouched so callers keep their kind.
func (s *GormStore) InTx(ctx context.Context, fn func(tx reservationDomain.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTx{
			reservations: s.reservations.WithTx(tx),
			promos:       s.promos.WithTx(tx),
		})
	})
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.NewPersistenceError(err)
}
