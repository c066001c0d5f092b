package repository

import (
	"context"
	"errors"
	"time"

	"github.com/arena-tix/service-booking/internal/domain"
	promoDomain "github.com/arena-tix/service-booking/internal/domain/promo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPromoRepository implements promo.Repository using GORM.
type GormPromoRepository struct {
	db *gorm.DB
}

// NewGormPromoRepository creates a new GORM-based promo repository.
func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

var _ promoDomain.Repository = (*GormPromoRepository)(nil)

// WithTx returns a copy of the repository bound to the given transaction.
func (r *GormPromoRepository) WithTx(tx *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: tx}
}

// FindByCode returns a promo code by its normalized code string.
func (r *GormPromoRepository) FindByCode(ctx context.Context, code string) (*promoDomain.PromoCode, error) {
	var model PromoCodeModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("PromoCode", code)
		}
		return nil, domain.NewPersistenceError(err)
	}
	return toPromoDomain(&model), nil
}

// Consume performs the authoritative UNUSED -> USED transition as a single
// conditional update. A concurrent transaction that consumed the code first
// leaves zero rows to update here, which is exactly the PromoInvalid case.
func (r *GormPromoRepository) Consume(ctx context.Context, code string, reservationID uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&PromoCodeModel{}).
		Where("code = ? AND status = ?", code, string(promoDomain.StatusUnused)).
		Updates(map[string]any{
			"status":                 string(promoDomain.StatusUsed),
			"used_at":                at,
			"used_by_reservation_id": reservationID,
		})
	if result.Error != nil {
		return domain.NewPersistenceError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewPromoInvalidError("promo code is missing or already used")
	}
	return nil
}

// Save persists a freshly issued promo code.
func (r *GormPromoRepository) Save(ctx context.Context, p *promoDomain.PromoCode) error {
	model := toPromoModel(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.NewPersistenceError(err)
	}
	return nil
}

func toPromoModel(p *promoDomain.PromoCode) PromoCodeModel {
	return PromoCodeModel{
		ID:                    p.ID(),
		Code:                  p.Code(),
		Status:                string(p.Status()),
		DiscountPct:           p.DiscountPct(),
		UsedByReservationID:   p.UsedByReservationID(),
		UsedAt:                p.UsedAt(),
		IssuedByReservationID: p.IssuedByReservationID(),
		CreatedAt:             p.CreatedAt(),
	}
}

func toPromoDomain(m *PromoCodeModel) *promoDomain.PromoCode {
	return promoDomain.Reconstruct(
		m.ID, m.Code, promoDomain.Status(m.Status), m.DiscountPct,
		m.UsedByReservationID, m.UsedAt,
		m.IssuedByReservationID, m.CreatedAt,
	)
}
