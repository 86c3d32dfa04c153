package usecase

import (
	"context"
	"time"

	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/adapter"
	"genesis-admin/internal/domain/ports/repository"
	"genesis-admin/internal/infra/metrics"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// fallbackBaseRate is the documented degraded quote used whenever the
// external source is unavailable. Checkout must never block on exchange
// rate availability, so GetRate always succeeds.
var fallbackBaseRate = decimal.NewFromFloat(5.53)

const fallbackSource = "fallback"

// RateCache stores live base-rate quotes between fetches. Fallback quotes
// are never cached.
type RateCache interface {
	Get(ctx context.Context) (adapter.RateQuote, bool)
	Set(ctx context.Context, q adapter.RateQuote)
}

// RateUseCase resolves the spread-adjusted USD->BRL rate.
type RateUseCase interface {
	// GetRate never returns an error: a failed fetch degrades to the
	// fallback base rate. A nil spreadOverride uses the configured
	// checkout spread.
	GetRate(ctx context.Context, spreadOverride *decimal.Decimal) model.ExchangeRateSample
}

var _ RateUseCase = (*rateUC)(nil)

type rateUC struct {
	source   adapter.ExchangeRateSource
	settings repository.SettingsRepository
	cache    RateCache // optional
	log      *zerolog.Logger
}

func NewRateUseCase(source adapter.ExchangeRateSource, settings repository.SettingsRepository, cache RateCache, logger *zerolog.Logger) *rateUC {
	l := logger.With().Str("component", "RateUC").Logger()
	return &rateUC{source: source, settings: settings, cache: cache, log: &l}
}

func (u *rateUC) GetRate(ctx context.Context, spreadOverride *decimal.Decimal) model.ExchangeRateSample {
	spread := u.defaultSpread(ctx)
	if spreadOverride != nil {
		spread = *spreadOverride
	}

	if u.cache != nil {
		if q, ok := u.cache.Get(ctx); ok {
			metrics.IncRateFetch("cached")
			return model.NewExchangeRateSample(q.BaseRate, spread, q.Source, time.Now())
		}
	}

	start := time.Now()
	q, err := u.source.FetchBaseRate(ctx)
	metrics.ObserveRateFetchLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		// Availability over accuracy: log, count, degrade.
		u.log.Warn().Err(err).Msg("exchange rate fetch failed; using fallback")
		metrics.IncRateFetch(fallbackSource)
		return model.NewExchangeRateSample(fallbackBaseRate, spread, fallbackSource, time.Now())
	}

	if u.cache != nil {
		u.cache.Set(ctx, q)
	}
	metrics.IncRateFetch("live")
	return model.NewExchangeRateSample(q.BaseRate, spread, q.Source, time.Now())
}

func (u *rateUC) defaultSpread(ctx context.Context) decimal.Decimal {
	cfg, err := u.settings.GetCheckoutConfig(ctx)
	if err != nil {
		u.log.Warn().Err(err).Msg("checkout config unavailable; using default spread")
		return model.DefaultCheckoutConfig().CheckoutSpread
	}
	return cfg.CheckoutSpread
}
