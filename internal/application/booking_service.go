package application

import (
	"context"
	"strings"
	"time"

	"github.com/arena-tix/service-booking/internal/domain"
	"github.com/arena-tix/service-booking/internal/domain/catalog"
	promoDomain "github.com/arena-tix/service-booking/internal/domain/promo"
	reservationDomain "github.com/arena-tix/service-booking/internal/domain/reservation"
	"github.com/arena-tix/service-booking/internal/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minQty = 1
	maxQty = 20
)

// EventPublisher publishes reservation lifecycle events after commit.
// Publishing is best effort; a broker outage never fails a booking.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, data any) error
}

// RateProvider is the slice of the FX adapter the workflow needs.
type RateProvider interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// CreateReservationRequest is the DTO for creating a reservation.
type CreateReservationRequest struct {
	ShowID       uuid.UUID `json:"show_id" binding:"required"`
	RegionID     uuid.UUID `json:"region_id" binding:"required"`
	FullName     string    `json:"full_name" binding:"required"`
	Email        string    `json:"email" binding:"required,email"`
	Qty          int       `json:"qty" binding:"required"`
	PromoCode    string    `json:"promo_code"`
	CurrencyCode string    `json:"currency_code"`
}

// ModifyReservationRequest is the DTO for changing region or quantity.
type ModifyReservationRequest struct {
	AccessCode string    `json:"access_code" binding:"required"`
	Email      string    `json:"email" binding:"required,email"`
	RegionID   uuid.UUID `json:"region_id" binding:"required"`
	Qty        int       `json:"qty" binding:"required"`
}

// SelfServiceRequest identifies a reservation by its bearer pair.
type SelfServiceRequest struct {
	AccessCode string `json:"access_code" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
}

// CreateReservationResult is returned on a successful booking.
type CreateReservationResult struct {
	AccessCode      string   `json:"access_code"`
	TotalRsd        int64    `json:"total_rsd"`
	CurrencyCode    string   `json:"currency_code,omitempty"`
	FxRateUsed      *float64 `json:"fx_rate_used,omitempty"`
	TotalInCurrency *float64 `json:"total_in_currency,omitempty"`
	IssuedPromoCode string   `json:"issued_promo_code"`
}

// ReservationItemDTO is the API representation of one reservation line.
type ReservationItemDTO struct {
	RegionID     uuid.UUID `json:"region_id"`
	Qty          int       `json:"qty"`
	UnitPriceRsd int64     `json:"unit_price_rsd"`
	LineTotalRsd int64     `json:"line_total_rsd"`
}

// ReservationDTO is the API representation of a reservation.
type ReservationDTO struct {
	AccessCode      string               `json:"access_code"`
	ShowID          uuid.UUID            `json:"show_id"`
	Status          string               `json:"status"`
	FullName        string               `json:"full_name"`
	Email           string               `json:"email"`
	TotalRsd        int64                `json:"total_rsd"`
	CurrencyCode    string               `json:"currency_code,omitempty"`
	FxRateUsed      *float64             `json:"fx_rate_used,omitempty"`
	TotalInCurrency *float64             `json:"total_in_currency,omitempty"`
	PromoCodeUsed   *string              `json:"promo_code_used,omitempty"`
	Items           []ReservationItemDTO `json:"items"`
	CreatedAt       time.Time            `json:"created_at"`
}

// BookingService orchestrates the reservation workflow. Validation, pricing
// and currency conversion happen up front; capacity admission, the insert and
// promo consumption/issuance share one transaction.
type BookingService struct {
	catalog       catalog.Reader
	store         reservationDomain.Store
	reservations  reservationDomain.Repository
	promos        promoDomain.Repository
	fx            RateProvider
	publisher     EventPublisher
	guard         CapacityGuard
	baseCurrency  string
	promoIssuePct int
	logger        *zap.Logger
}

// NewBookingService creates a BookingService. reservations and promos are
// the non-transactional read handles; publisher may be nil when no broker is
// configured.
func NewBookingService(
	cat catalog.Reader,
	store reservationDomain.Store,
	reservations reservationDomain.Repository,
	promos promoDomain.Repository,
	fx RateProvider,
	publisher EventPublisher,
	baseCurrency string,
	promoIssuePct int,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		catalog:       cat,
		store:         store,
		reservations:  reservations,
		promos:        promos,
		fx:            fx,
		publisher:     publisher,
		guard:         NewCapacityGuard(),
		baseCurrency:  strings.ToUpper(baseCurrency),
		promoIssuePct: promoIssuePct,
		logger:        logger,
	}
}

// CreateReservation runs the full booking workflow and returns the access
// code of the committed reservation. Any failure leaves no observable state
// change.
func (s *BookingService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*CreateReservationResult, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	if _, err := s.catalog.GetShow(ctx, req.ShowID); err != nil {
		return nil, err
	}
	region, err := s.catalog.GetRegion(ctx, req.RegionID)
	if err != nil {
		return nil, err
	}
	price, err := s.catalog.GetShowPrice(ctx, req.ShowID, req.RegionID)
	if err != nil {
		return nil, err
	}

	// Advisory promo pre-check. The authoritative check is the conditional
	// consume inside the transaction below.
	promoCode, promoPct, err := s.precheckPromo(ctx, req.PromoCode)
	if err != nil {
		return nil, err
	}

	settings, err := s.catalog.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	subtotal := price.UnitPriceRsd * int64(req.Qty)
	totalRsd := pricing.ComputeTotal(subtotal, settings.DiscountUntil, promoPct, now)

	item := reservationDomain.NewItem(req.RegionID, req.Qty, price.UnitPriceRsd)
	res := reservationDomain.New(req.ShowID, strings.TrimSpace(req.FullName), normalizeEmail(req.Email), []reservationDomain.Item{item}, totalRsd)

	currencyCode := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currencyCode != "" && currencyCode != s.baseCurrency {
		if err := s.ensureCurrencyEnabled(ctx, currencyCode); err != nil {
			return nil, err
		}
		rate, err := s.fx.GetRate(ctx, s.baseCurrency, currencyCode)
		if err != nil {
			// Fail closed: a booking must always carry a comparable converted
			// price when one was requested.
			return nil, err
		}
		res.AttachCurrency(currencyCode, rate, roundCurrency(float64(totalRsd)*rate))
	}
	if promoCode != "" {
		res.AttachPromo(promoCode)
	}

	var issuedCode string
	err = s.store.InTx(ctx, func(tx reservationDomain.Tx) error {
		if err := s.guard.Admit(ctx, tx.Reservations(), region, req.ShowID, req.Qty, nil); err != nil {
			return err
		}
		if err := tx.Reservations().Save(ctx, res); err != nil {
			return err
		}
		if promoCode != "" {
			if err := tx.Promos().Consume(ctx, promoCode, res.ID(), now); err != nil {
				return err
			}
		}
		issued, err := promoDomain.Issue(res.ID(), s.promoIssuePct)
		if err != nil {
			return err
		}
		if err := tx.Promos().Save(ctx, issued); err != nil {
			return err
		}
		issuedCode = issued.Code()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation created",
		zap.String("reservation_id", res.ID().String()),
		zap.String("show_id", req.ShowID.String()),
		zap.Int("qty", req.Qty),
		zap.Int64("total_rsd", totalRsd),
		zap.Bool("promo_redeemed", promoCode != ""),
	)
	s.publish(ctx, "reservation.created", res)

	return &CreateReservationResult{
		AccessCode:      res.AccessCode(),
		TotalRsd:        res.TotalRsd(),
		CurrencyCode:    res.CurrencyCode(),
		FxRateUsed:      res.FxRateUsed(),
		TotalInCurrency: res.TotalInCurrency(),
		IssuedPromoCode: issuedCode,
	}, nil
}

// ModifyReservation changes region and/or quantity of an ACTIVE reservation.
// The capacity check excludes the reservation's own current allocation, and
// the item swap plus re-priced total commit atomically.
func (s *BookingService) ModifyReservation(ctx context.Context, req ModifyReservationRequest) (*ReservationDTO, error) {
	if req.Qty < minQty || req.Qty > maxQty {
		return nil, domain.NewValidationError("quantity must be between %d and %d", minQty, maxQty)
	}

	region, err := s.catalog.GetRegion(ctx, req.RegionID)
	if err != nil {
		return nil, err
	}

	var res *reservationDomain.Reservation
	err = s.store.InTx(ctx, func(tx reservationDomain.Tx) error {
		var err error
		res, err = tx.Reservations().FindByAccessCode(ctx, req.AccessCode, normalizeEmail(req.Email))
		if err != nil {
			return err
		}
		if res.Status() == reservationDomain.StatusCancelled {
			return domain.NewConflictError("reservation %s is cancelled and cannot be modified", req.AccessCode)
		}

		price, err := s.catalog.GetShowPrice(ctx, res.ShowID(), req.RegionID)
		if err != nil {
			return err
		}
		settings, err := s.catalog.GetSettings(ctx)
		if err != nil {
			return err
		}

		promoPct := s.redeemedPct(ctx, tx, res)
		now := time.Now().UTC()
		subtotal := price.UnitPriceRsd * int64(req.Qty)
		totalRsd := pricing.ComputeTotal(subtotal, settings.DiscountUntil, promoPct, now)

		excludeID := res.ID()
		if err := s.guard.Admit(ctx, tx.Reservations(), region, res.ShowID(), req.Qty, &excludeID); err != nil {
			return err
		}

		item := reservationDomain.NewItem(req.RegionID, req.Qty, price.UnitPriceRsd)
		if err := res.ReplaceItems([]reservationDomain.Item{item}, totalRsd); err != nil {
			return err
		}
		return tx.Reservations().Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation modified",
		zap.String("reservation_id", res.ID().String()),
		zap.String("region_id", req.RegionID.String()),
		zap.Int("qty", req.Qty),
		zap.Int64("total_rsd", res.TotalRsd()),
	)
	s.publish(ctx, "reservation.modified", res)

	dto := toReservationDTO(res)
	return &dto, nil
}

// CancelReservation transitions ACTIVE -> CANCELLED. The freed quantity is
// visible to admission checks as soon as the transaction commits. A repeat
// cancellation is a Conflict.
func (s *BookingService) CancelReservation(ctx context.Context, req SelfServiceRequest) (*ReservationDTO, error) {
	var res *reservationDomain.Reservation
	err := s.store.InTx(ctx, func(tx reservationDomain.Tx) error {
		var err error
		res, err = tx.Reservations().FindByAccessCode(ctx, req.AccessCode, normalizeEmail(req.Email))
		if err != nil {
			return err
		}
		if err := res.Cancel(); err != nil {
			return err
		}
		return tx.Reservations().Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation cancelled",
		zap.String("reservation_id", res.ID().String()),
	)
	s.publish(ctx, "reservation.cancelled", res)

	dto := toReservationDTO(res)
	return &dto, nil
}

// LookupReservation returns the reservation identified by the bearer pair.
func (s *BookingService) LookupReservation(ctx context.Context, req SelfServiceRequest) (*ReservationDTO, error) {
	res, err := s.reservations.FindByAccessCode(ctx, req.AccessCode, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	dto := toReservationDTO(res)
	return &dto, nil
}

func (s *BookingService) validateCreate(req CreateReservationRequest) error {
	if req.ShowID == uuid.Nil {
		return domain.NewValidationError("show id is required")
	}
	if req.RegionID == uuid.Nil {
		return domain.NewValidationError("region id is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return domain.NewValidationError("full name is required")
	}
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.NewValidationError("a valid email is required")
	}
	if req.Qty < minQty || req.Qty > maxQty {
		return domain.NewValidationError("quantity must be between %d and %d", minQty, maxQty)
	}
	return nil
}

// precheckPromo normalizes and advisorily validates a supplied promo code.
// Returns the normalized code and its discount percentage, or ("", 0) when
// no code was supplied.
func (s *BookingService) precheckPromo(ctx context.Context, raw string) (string, int, error) {
	if strings.TrimSpace(raw) == "" {
		return "", 0, nil
	}
	code := promoDomain.Normalize(raw)
	if !promoDomain.IsWellFormed(code) {
		return "", 0, domain.NewPromoInvalidError("promo code format is invalid")
	}
	p, err := s.catalogPromo(ctx, code)
	if err != nil {
		return "", 0, err
	}
	if !p.IsRedeemable() {
		return "", 0, domain.NewPromoInvalidError("promo code is already used")
	}
	return code, p.DiscountPct(), nil
}

// catalogPromo reads a promo outside any transaction, mapping a missing code
// to PromoInvalid.
func (s *BookingService) catalogPromo(ctx context.Context, code string) (*promoDomain.PromoCode, error) {
	found, err := s.promos.FindByCode(ctx, code)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.NewPromoInvalidError("promo code does not exist")
		}
		return nil, err
	}
	return found, nil
}

// redeemedPct resolves the discount percentage the reservation redeemed at
// creation, 0 when it used no code.
func (s *BookingService) redeemedPct(ctx context.Context, tx reservationDomain.Tx, res *reservationDomain.Reservation) int {
	if res.PromoCodeUsed() == nil {
		return 0
	}
	p, err := tx.Promos().FindByCode(ctx, *res.PromoCodeUsed())
	if err != nil {
		return 0
	}
	return p.DiscountPct()
}

func (s *BookingService) ensureCurrencyEnabled(ctx context.Context, code string) error {
	enabled, err := s.catalog.EnabledCurrencies(ctx)
	if err != nil {
		return err
	}
	for _, c := range enabled {
		if c.Code == code {
			return nil
		}
	}
	return domain.NewCurrencyNotAllowedError(code)
}

func (s *BookingService) publish(ctx context.Context, eventType string, res *reservationDomain.Reservation) {
	if s.publisher == nil {
		return
	}
	payload := struct {
		ReservationID uuid.UUID `json:"reservation_id"`
		ShowID        uuid.UUID `json:"show_id"`
		Status        string    `json:"status"`
		TotalRsd      int64     `json:"total_rsd"`
		OccurredAt    time.Time `json:"occurred_at"`
	}{
		ReservationID: res.ID(),
		ShowID:        res.ShowID(),
		Status:        string(res.Status()),
		TotalRsd:      res.TotalRsd(),
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, eventType, res.ID().String(), payload); err != nil {
		s.logger.Warn("failed to publish reservation event",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func roundCurrency(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func toReservationDTO(r *reservationDomain.Reservation) ReservationDTO {
	items := make([]ReservationItemDTO, len(r.Items()))
	for i, it := range r.Items() {
		items[i] = ReservationItemDTO{
			RegionID:     it.RegionID,
			Qty:          it.Qty,
			UnitPriceRsd: it.UnitPriceRsd,
			LineTotalRsd: it.LineTotalRsd,
		}
	}
	return ReservationDTO{
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
		Items:           items,
		CreatedAt:       r.CreatedAt(),
	}
}
