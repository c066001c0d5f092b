package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arena-tix/service-booking/internal/domain"
	"go.uber.org/zap"
)

// RateProvider is the Anti-Corruption Layer interface for the external
// exchange-rate service. The adapter is stateless and fails closed: any
// transport error, non-success payload or missing rate surfaces as a
// RateUnavailable domain error. Retry and caching belong to callers.
type RateProvider interface {
	// GetRate returns the multiplicative rate from one currency to another.
	// GetRate(X, X) is always 1 and never hits the provider.
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// erAPIResponse mirrors the open.er-api.com /v6/latest payload.
type erAPIResponse struct {
	Result   string             `json:"result"`
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

// ERAPIProvider fetches live rates from an open.er-api.com compatible
// endpoint. The client timeout bounds how long a rate lookup may block; it is
// deliberately shorter than the server's request timeout so a slow provider
// cannot hold a booking transaction open.
type ERAPIProvider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewERAPIProvider creates a rate provider against baseURL with the given
// per-call timeout.
func NewERAPIProvider(baseURL string, timeout time.Duration, logger *zap.Logger) *ERAPIProvider {
	return &ERAPIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// GetRate implements RateProvider.
func (p *ERAPIProvider) GetRate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return 1, nil
	}

	reqURL := fmt.Sprintf("%s/v6/latest/%s", p.baseURL, url.PathEscape(from))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, domain.NewRateUnavailableError(err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("fx provider request failed",
			zap.String("base", from),
			zap.Error(err),
		)
		return 0, domain.NewRateUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("fx provider returned non-success status",
			zap.String("base", from),
			zap.Int("status", resp.StatusCode),
		)
		return 0, domain.NewRateUnavailableError(fmt.Errorf("fx provider status %d", resp.StatusCode))
	}

	var payload erAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, domain.NewRateUnavailableError(fmt.Errorf("decode fx payload: %w", err))
	}

	if payload.Result != "success" {
		return 0, domain.NewRateUnavailableError(fmt.Errorf("fx provider result %q for base %s", payload.Result, from))
	}

	rate, ok := payload.Rates[to]
	if !ok || math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0, domain.NewRateUnavailableError(fmt.Errorf("fx rate missing for %s->%s", from, to))
	}

	return rate, nil
}

// MockRateProvider is a development/testing implementation of RateProvider
// with a fixed rate table.
type MockRateProvider struct {
	rates  map[string]float64
	logger *zap.Logger
}

// NewMockRateProvider creates a mock provider. Keys are "FROM->TO".
func NewMockRateProvider(rates map[string]float64, logger *zap.Logger) *MockRateProvider {
	return &MockRateProvider{rates: rates, logger: logger}
}

// GetRate returns the fixed rate for the pair, or RateUnavailable when the
// table has no entry.
func (m *MockRateProvider) GetRate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return 1, nil
	}

	rate, ok := m.rates[from+"->"+to]
	if !ok {
		return 0, domain.NewRateUnavailableError(fmt.Errorf("no mock rate for %s->%s", from, to))
	}

	m.logger.Info("[MOCK FX] rate served",
		zap.String("from", from),
		zap.String("to", to),
		zap.Float64("rate", rate),
	)
	return rate, nil
}
