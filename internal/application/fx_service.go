package application

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/arena-tix/service-booking/internal/domain"
	"github.com/arena-tix/service-booking/internal/domain/catalog"
)

// CurrencyDTO is one enabled settlement currency.
type CurrencyDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ConversionPreview is a quoted conversion of a base-currency amount.
type ConversionPreview struct {
	AmountRsd    int64   `json:"amountRsd"`
	CurrencyCode string  `json:"currencyCode"`
	Rate         float64 `json:"rate"`
	Converted    float64 `json:"converted"`
}

// FxService quotes display conversions against the enabled currency list.
// Quotes are advisory; the rate a reservation settles at is the one fetched
// inside CreateReservation.
type FxService struct {
	catalog      catalog.Reader
	fx           RateProvider
	baseCurrency string
	logger       *zap.Logger
}

func NewFxService(cat catalog.Reader, fx RateProvider, baseCurrency string, logger *zap.Logger) *FxService {
	return &FxService{
		catalog:      cat,
		fx:           fx,
		baseCurrency: strings.ToUpper(baseCurrency),
		logger:       logger,
	}
}

// ListCurrencies returns the enabled currencies, base first is not guaranteed;
// ordering follows the catalog.
func (s *FxService) ListCurrencies(ctx context.Context) ([]CurrencyDTO, error) {
	currencies, err := s.catalog.EnabledCurrencies(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CurrencyDTO, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, CurrencyDTO{Code: c.Code, Name: c.Name})
	}
	return out, nil
}

// PreviewTotal converts a base-currency amount into the requested currency.
func (s *FxService) PreviewTotal(ctx context.Context, amountRsd int64, toCurrency string) (*ConversionPreview, error) {
	if amountRsd < 0 {
		return nil, domain.NewValidationError("amount must not be negative")
	}
	to := strings.ToUpper(strings.TrimSpace(toCurrency))
	if to == "" {
		return nil, domain.NewValidationError("target currency is required")
	}

	if to == s.baseCurrency {
		return &ConversionPreview{
			AmountRsd:    amountRsd,
			CurrencyCode: to,
			Rate:         1,
			Converted:    float64(amountRsd),
		}, nil
	}

	currencies, err := s.catalog.EnabledCurrencies(ctx)
	if err != nil {
		return nil, err
	}
	enabled := false
	for _, c := range currencies {
		if c.Code == to {
			enabled = true
			break
		}
	}
	if !enabled {
		return nil, domain.NewCurrencyNotAllowedError(to)
	}

	rate, err := s.fx.GetRate(ctx, s.baseCurrency, to)
	if err != nil {
		return nil, err
	}

	return &ConversionPreview{
		AmountRsd:    amountRsd,
		CurrencyCode: to,
		Rate:         rate,
		Converted:    roundCurrency(float64(amountRsd) * rate),
	}, nil
}
