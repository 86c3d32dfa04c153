package usecase

import (
	"context"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CheckoutPreview is everything the dashboard needs to render a checkout
// quote for one plan and payment method.
type CheckoutPreview struct {
	Plan           *model.CreditPlan
	PricePerCredit decimal.Decimal
	Rate           model.ExchangeRateSample
	PriceBRL       decimal.Decimal
	Fee            decimal.Decimal
	Total          decimal.Decimal
}

// CheckoutUseCase quotes fees and converts plan prices for checkout.
type CheckoutUseCase struct {
	plans    repository.CreditPlanRepository
	settings repository.SettingsRepository
	rates    RateUseCase
	log      *zerolog.Logger
}

func NewCheckoutUseCase(plans repository.CreditPlanRepository, settings repository.SettingsRepository, rates RateUseCase, logger *zerolog.Logger) *CheckoutUseCase {
	l := logger.With().Str("component", "CheckoutUC").Logger()
	return &CheckoutUseCase{plans: plans, settings: settings, rates: rates, log: &l}
}

// QuoteFee computes the processing fee for an arbitrary BRL amount.
func (uc *CheckoutUseCase) QuoteFee(ctx context.Context, amountBRL decimal.Decimal, method model.PaymentMethod) (model.FeeQuote, error) {
	cfg, err := uc.settings.GetCheckoutConfig(ctx)
	if err != nil {
		return model.FeeQuote{}, err
	}
	return model.CalculateFee(amountBRL, method, cfg)
}

// Preview converts a plan's USD price to BRL at the spread-adjusted rate
// and quotes the fee for the chosen method.
func (uc *CheckoutUseCase) Preview(ctx context.Context, planID string, method model.PaymentMethod, spreadOverride *decimal.Decimal) (*CheckoutPreview, error) {
	plan, err := uc.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	ppc, err := plan.PricePerCredit()
	if err != nil {
		return nil, err
	}
	cfg, err := uc.settings.GetCheckoutConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.MethodEnabled(method) {
		return nil, domain.ErrInvalidArgument
	}

	sample := uc.rates.GetRate(ctx, spreadOverride)
	priceBRL := plan.PriceUSD.Mul(sample.Rate).Round(2)
	quote, err := model.CalculateFee(priceBRL, method, cfg)
	if err != nil {
		return nil, err
	}
	return &CheckoutPreview{
		Plan:           plan,
		PricePerCredit: ppc,
		Rate:           sample,
		PriceBRL:       priceBRL,
		Fee:            quote.Fee,
		Total:          quote.Total,
	}, nil
}
