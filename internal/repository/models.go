package repository

import (
	"time"

	"github.com/google/uuid"
)

// VenueModel is the GORM model for the venues table.
type VenueModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name string    `gorm:"type:varchar(200);not null"`
	City string    `gorm:"type:varchar(100);not null"`
}

func (VenueModel) TableName() string { return "venues" }

// EventModel is the GORM model for the events table.
type EventModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Title  string    `gorm:"type:varchar(200);not null"`
	Artist string    `gorm:"type:varchar(200);not null"`
}

func (EventModel) TableName() string { return "events" }

// ShowModel is the GORM model for the shows table.
type ShowModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	EventID  uuid.UUID `gorm:"type:uuid;not null;index"`
	VenueID  uuid.UUID `gorm:"type:uuid;not null;index"`
	StartsAt time.Time `gorm:"type:timestamptz;not null"`
}

func (ShowModel) TableName() string { return "shows" }

// SeatingRegionModel is the GORM model for the seating_regions table.
// Capacity is fixed; the booking core never writes this table.
type SeatingRegionModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	VenueID  uuid.UUID `gorm:"type:uuid;not null;index:idx_region_venue_name,unique"`
	Name     string    `gorm:"type:varchar(100);not null;index:idx_region_venue_name,unique"`
	Capacity int       `gorm:"not null"`
}

func (SeatingRegionModel) TableName() string { return "seating_regions" }

// ShowPriceModel is the GORM model for the show_prices table. One row per
// (show, region) pair; the capacity admission lock is taken on this row.
type ShowPriceModel struct {
	ShowID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	RegionID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UnitPriceRsd int64     `gorm:"not null"`
}

func (ShowPriceModel) TableName() string { return "show_prices" }

// CurrencyModel is the GORM model for the currencies table.
type CurrencyModel struct {
	Code      string `gorm:"type:varchar(3);primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	IsEnabled bool   `gorm:"not null;default:false"`
}

func (CurrencyModel) TableName() string { return "currencies" }

// AppSettingsModel is the singleton settings row.
type AppSettingsModel struct {
	ID               string     `gorm:"type:varchar(16);primaryKey"`
	BaseCurrencyCode string     `gorm:"type:varchar(3);not null"`
	DiscountUntil    *time.Time `gorm:"type:timestamptz"`
}

func (AppSettingsModel) TableName() string { return "app_settings" }

// settingsSingletonID is the fixed primary key of the one settings row.
const settingsSingletonID = "singleton"

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AccessCode      string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	ShowID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status          string     `gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	FullName        string     `gorm:"type:varchar(200);not null"`
	Email           string     `gorm:"type:varchar(200);not null;index"`
	TotalRsd        int64      `gorm:"not null"`
	CurrencyCode    string     `gorm:"type:varchar(3)"`
	FxRateUsed      *float64   `gorm:"type:double precision"`
	TotalInCurrency *float64   `gorm:"type:double precision"`
	PromoCodeUsed   *string    `gorm:"type:varchar(50)"`
	CreatedAt       time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt       time.Time  `gorm:"type:timestamptz;not null"`

	Items []ReservationItemModel `gorm:"foreignKey:ReservationID"`
}

func (ReservationModel) TableName() string { return "reservations" }

// ReservationItemModel is the GORM model for the reservation_items table.
type ReservationItemModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReservationID uuid.UUID `gorm:"type:uuid;not null;index"`
	RegionID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Qty           int       `gorm:"not null"`
	UnitPriceRsd  int64     `gorm:"not null"`
	LineTotalRsd  int64     `gorm:"not null"`
}

func (ReservationItemModel) TableName() string { return "reservation_items" }

// PromoCodeModel is the GORM model for the promo_codes table.
type PromoCodeModel struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code                  string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	Status                string     `gorm:"type:varchar(16);not null;default:'UNUSED'"`
	DiscountPct           int        `gorm:"not null"`
	UsedByReservationID   *uuid.UUID `gorm:"type:uuid"`
	UsedAt                *time.Time `gorm:"type:timestamptz"`
	IssuedByReservationID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt             time.Time  `gorm:"type:timestamptz;not null"`
}

func (PromoCodeModel) TableName() string { return "promo_codes" }

// AllModels lists every model for dev auto-migration.
func AllModels() []any {
	return []any{
		&VenueModel{}, &EventModel{}, &ShowModel{}, &SeatingRegionModel{},
		&ShowPriceModel{}, &CurrencyModel{}, &AppSettingsModel{},
		&ReservationModel{}, &ReservationItemModel{}, &PromoCodeModel{},
	}
}
