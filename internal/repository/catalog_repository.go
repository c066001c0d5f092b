package repository

import (
	"context"
	"errors"

	"github.com/arena-tix/service-booking/internal/domain"
	"github.com/arena-tix/service-booking/internal/domain/catalog"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCatalogRepository implements catalog.Reader over GORM.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a read-only catalog repository.
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

var _ catalog.Reader = (*GormCatalogRepository)(nil)

// GetShow retrieves a show by ID.
func (r *GormCatalogRepository) GetShow(ctx context.Context, id uuid.UUID) (*catalog.Show, error) {
	var model ShowModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Show", id.String())
		}
		return nil, domain.NewPersistenceError(err)
	}
	return &catalog.Show{
		ID:       model.ID,
		EventID:  model.EventID,
		VenueID:  model.VenueID,
		StartsAt: model.StartsAt,
	}, nil
}

// GetRegion retrieves a seating region by ID.
func (r *GormCatalogRepository) GetRegion(ctx context.Context, id uuid.UUID) (*catalog.SeatingRegion, error) {
	var model SeatingRegionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("SeatingRegion", id.String())
		}
		return nil, domain.NewPersistenceError(err)
	}
	return &catalog.SeatingRegion{
		ID:       model.ID,
		VenueID:  model.VenueID,
		Name:     model.Name,
		Capacity: model.Capacity,
	}, nil
}

// GetShowPrice retrieves the price row for a (show, region) pair.
func (r *GormCatalogRepository) GetShowPrice(ctx context.Context, showID, regionID uuid.UUID) (*catalog.ShowPrice, error) {
	var model ShowPriceModel
	if err := r.db.WithContext(ctx).
		Where("show_id = ? AND region_id = ?", showID, regionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ShowPrice", showID.String()+"/"+regionID.String())
		}
		return nil, domain.NewPersistenceError(err)
	}
	return &catalog.ShowPrice{
		ShowID:       model.ShowID,
		RegionID:     model.RegionID,
		UnitPriceRsd: model.UnitPriceRsd,
	}, nil
}

// GetSettings returns the singleton settings row. A missing row yields empty
// settings rather than an error so a fresh database still prices correctly.
func (r *GormCatalogRepository) GetSettings(ctx context.Context) (*catalog.Settings, error) {
	var model AppSettingsModel
	if err := r.db.WithContext(ctx).Where("id = ?", settingsSingletonID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &catalog.Settings{}, nil
		}
		return nil, domain.NewPersistenceError(err)
	}
	return &catalog.Settings{
		BaseCurrencyCode: model.BaseCurrencyCode,
		DiscountUntil:    model.DiscountUntil,
	}, nil
}

// EnabledCurrencies returns enabled currencies ordered by code.
func (r *GormCatalogRepository) EnabledCurrencies(ctx context.Context) ([]catalog.Currency, error) {
	var models []CurrencyModel
	if err := r.db.WithContext(ctx).
		Where("is_enabled = ?", true).
		Order("code asc").
		Find(&models).Error; err != nil {
		return nil, domain.NewPersistenceError(err)
	}

	currencies := make([]catalog.Currency, len(models))
	for i, m := range models {
		currencies[i] = catalog.Currency{Code: m.Code, Name: m.Name, IsEnabled: m.IsEnabled}
	}
	return currencies, nil
}

// ListShows returns the denormalized public listing, soonest show first.
func (r *GormCatalogRepository) ListShows(ctx context.Context) ([]catalog.ShowListing, error) {
	var rows []catalog.ShowListing
	err := r.db.WithContext(ctx).
		Table("shows").
		Select(`shows.id AS show_id,
			events.title AS title,
			events.artist AS artist,
			venues.name AS venue_name,
			venues.city AS venue_city,
			shows.starts_at AS starts_at`).
		Joins("JOIN events ON events.id = shows.event_id").
		Joins("JOIN venues ON venues.id = shows.venue_id").
		Order("shows.starts_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return rows, nil
}
