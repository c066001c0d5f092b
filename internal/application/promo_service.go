package application

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/arena-tix/service-booking/internal/domain"
	promoDomain "github.com/arena-tix/service-booking/internal/domain/promo"
)

// PromoStatus describes a promo code without consuming it.
type PromoStatus struct {
	Code        string `json:"code"`
	Exists      bool   `json:"exists"`
	Valid       bool   `json:"valid"`
	DiscountPct int    `json:"discountPct"`
}

// PromoService answers advisory promo code queries. Redemption itself happens
// inside the booking transaction, never here.
type PromoService struct {
	promos promoDomain.Repository
	logger *zap.Logger
}

func NewPromoService(promos promoDomain.Repository, logger *zap.Logger) *PromoService {
	return &PromoService{promos: promos, logger: logger}
}

// ValidatePromo reports whether a code exists and is still redeemable. A
// malformed code is rejected on format alone, without a lookup.
func (s *PromoService) ValidatePromo(ctx context.Context, raw string) (*PromoStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.NewValidationError("promo code is required")
	}
	code := promoDomain.Normalize(raw)
	if !promoDomain.IsWellFormed(code) {
		return &PromoStatus{Code: code}, nil
	}

	p, err := s.promos.FindByCode(ctx, code)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return &PromoStatus{Code: code}, nil
		}
		return nil, err
	}

	return &PromoStatus{
		Code:        code,
		Exists:      true,
		Valid:       p.IsRedeemable(),
		DiscountPct: p.DiscountPct(),
	}, nil
}
