package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arena-tix/service-booking/internal/domain"
	reservationDomain "github.com/arena-tix/service-booking/internal/domain/reservation"
)

// ReportService serves the admin sales aggregations. Only ACTIVE reservations
// count toward the numbers; cancellations drop out immediately.
type ReportService struct {
	reporter reservationDomain.Reporter
	logger   *zap.Logger
}

func NewReportService(reporter reservationDomain.Reporter, logger *zap.Logger) *ReportService {
	return &ReportService{reporter: reporter, logger: logger}
}

func (s *ReportService) SalesByShow(ctx context.Context, from, to *time.Time) ([]reservationDomain.ShowSales, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.reporter.SalesByShow(ctx, from, to)
}

func (s *ReportService) SalesByVenue(ctx context.Context, from, to *time.Time) ([]reservationDomain.VenueSales, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.reporter.SalesByVenue(ctx, from, to)
}

func validateRange(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return domain.NewValidationError("date range end precedes its start")
	}
	return nil
}
