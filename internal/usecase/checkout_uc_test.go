package usecase

import (
	"context"
	"errors"
	"testing"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"

	"github.com/shopspring/decimal"
)

func newCheckoutFixture(t *testing.T) (*CheckoutUseCase, *memSettingsRepo) {
	t.Helper()
	plans := newMemPlanRepo()
	seedCatalog(t, plans)
	settings := newMemSettingsRepo()
	rates := NewRateUseCase(&fakeRateSource{base: decimal.NewFromFloat(5.00)}, settings, nil, testLogger())
	return NewCheckoutUseCase(plans, settings, rates, testLogger()), settings
}

func TestCheckoutUseCase_QuoteFee(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, _ := newCheckoutFixture(t)

	quote, err := uc.QuoteFee(ctx, decimal.NewFromFloat(100.00), model.PaymentMethodPix)
	if err != nil {
		t.Fatalf("QuoteFee: %v", err)
	}
	if got := quote.Fee.StringFixed(2); got != "2.48" {
		t.Fatalf("expected fee 2.48, got %s", got)
	}
	if got := quote.Total.StringFixed(2); got != "102.48" {
		t.Fatalf("expected total 102.48, got %s", got)
	}
}

func TestCheckoutUseCase_Preview(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, _ := newCheckoutFixture(t)

	preview, err := uc.Preview(ctx, "plan_3", model.PaymentMethodCreditCard, nil)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	// base 5.00, default spread 2% -> rate 5.10; 25.99 USD -> 132.55 BRL.
	if got := preview.PriceBRL.StringFixed(2); got != "132.55" {
		t.Fatalf("expected BRL price 132.55, got %s", got)
	}
	wantFee := preview.PriceBRL.Mul(decimal.NewFromFloat(2.99)).Div(decimal.NewFromInt(100)).Add(decimal.NewFromFloat(0.49)).Round(2)
	if !preview.Fee.Equal(wantFee) {
		t.Fatalf("expected fee %s, got %s", wantFee, preview.Fee)
	}
	if !preview.Total.Equal(preview.PriceBRL.Add(preview.Fee)) {
		t.Fatalf("total must equal price + fee")
	}
	if preview.Plan.ID != "plan_3" {
		t.Fatalf("expected plan_3, got %s", preview.Plan.ID)
	}
}

func TestCheckoutUseCase_PreviewDisabledMethod(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, settings := newCheckoutFixture(t)

	cfg, _ := settings.GetCheckoutConfig(ctx)
	cfg.BoletoEnabled = false
	if err := settings.SaveCheckoutConfig(ctx, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	if _, err := uc.Preview(ctx, "plan_1", model.PaymentMethodBoleto, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for disabled method, got %v", err)
	}
}

func TestCheckoutUseCase_PreviewUnknownPlan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc, _ := newCheckoutFixture(t)

	if _, err := uc.Preview(ctx, "plan_99", model.PaymentMethodPix, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
