// Package catalog holds the read-only entities the booking core prices
// reservations against: shows, seating regions, per-pair prices, enabled
// currencies and the global settings row. The core never mutates any of them.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Venue is a physical location hosting shows.
type Venue struct {
	ID   uuid.UUID
	Name string
	City string
}

// Event is the act a show belongs to.
type Event struct {
	ID     uuid.UUID
	Title  string
	Artist string
}

// Show is one scheduled occurrence of an event at a venue.
type Show struct {
	ID       uuid.UUID
	EventID  uuid.UUID
	VenueID  uuid.UUID
	StartsAt time.Time
}

// SeatingRegion is a capacity-bounded subdivision of a venue. Capacity is
// fixed for the lifetime of the booking core.
type SeatingRegion struct {
	ID       uuid.UUID
	VenueID  uuid.UUID
	Name     string
	Capacity int
}

// ShowPrice is the unit price, in minor currency units, for one
// (show, region) pair. There is exactly one row per pair.
type ShowPrice struct {
	ShowID       uuid.UUID
	RegionID     uuid.UUID
	UnitPriceRsd int64
}

// Currency is a display currency that may be offered alongside the base one.
type Currency struct {
	Code      string
	Name      string
	IsEnabled bool
}

// Settings is the application-wide singleton settings row.
type Settings struct {
	BaseCurrencyCode string
	DiscountUntil    *time.Time
}
