package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ShowListing is a denormalized row for the public catalog listing.
type ShowListing struct {
	ShowID    uuid.UUID `json:"show_id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	VenueName string    `json:"venue_name"`
	VenueCity string    `json:"venue_city"`
	StartsAt  time.Time `json:"starts_at"`
}

// Reader is the narrow read-only contract the booking core consumes.
type Reader interface {
	GetShow(ctx context.Context, id uuid.UUID) (*Show, error)
	GetRegion(ctx context.Context, id uuid.UUID) (*SeatingRegion, error)
	GetShowPrice(ctx context.Context, showID, regionID uuid.UUID) (*ShowPrice, error)
	GetSettings(ctx context.Context) (*Settings, error)
	EnabledCurrencies(ctx context.Context) ([]Currency, error)
	ListShows(ctx context.Context) ([]ShowListing, error)
}
