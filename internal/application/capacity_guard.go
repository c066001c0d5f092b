package application

import (
	"context"

	"github.com/arena-tix/service-booking/internal/domain"
	"github.com/arena-tix/service-booking/internal/domain/catalog"
	"github.com/arena-tix/service-booking/internal/domain/reservation"
	"github.com/google/uuid"
)

// CapacityGuard decides whether a requested quantity fits into a region's
// fixed capacity. It must be called through a repository bound to the same
// transaction as the subsequent reservation write: the repository's sold
// count acquires the per-(show, region) admission lock, which is what makes
// admit-and-reserve atomic.
type CapacityGuard struct{}

// NewCapacityGuard creates a CapacityGuard.
func NewCapacityGuard() CapacityGuard { return CapacityGuard{} }

// Admit checks sold + requestedQty against the region capacity. When
// excludeReservationID is non-nil that reservation's existing items are not
// counted, so a modification does not collide with its own prior allocation.
func (CapacityGuard) Admit(
	ctx context.Context,
	repo reservation.Repository,
	region *catalog.SeatingRegion,
	showID uuid.UUID,
	requestedQty int,
	excludeReservationID *uuid.UUID,
) error {
	sold, err := repo.SoldQuantity(ctx, showID, region.ID, excludeReservationID)
	if err != nil {
		return err
	}
	if sold+requestedQty > region.Capacity {
		return domain.NewCapacityExceededError(region.Name, sold+requestedQty-region.Capacity)
	}
	return nil
}
