package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRateUseCase_FallbackOnFetchError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := &fakeRateSource{err: fmt.Errorf("bcb: connection refused")}
	uc := NewRateUseCase(source, newMemSettingsRepo(), nil, testLogger())

	sample := uc.GetRate(ctx, nil)
	if !sample.BaseRate.Equal(decimal.NewFromFloat(5.53)) {
		t.Fatalf("expected fallback base rate 5.53, got %s", sample.BaseRate)
	}
	// default spread 2.0 -> 5.53 * 1.02
	want := decimal.NewFromFloat(5.6406)
	if !sample.Rate.Equal(want) {
		t.Fatalf("expected rate %s, got %s", want, sample.Rate)
	}
	if sample.Source != "fallback" {
		t.Fatalf("expected fallback source, got %q", sample.Source)
	}
}

func TestRateUseCase_LiveRateAndSpreadOverride(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := &fakeRateSource{base: decimal.NewFromFloat(5.00)}
	uc := NewRateUseCase(source, newMemSettingsRepo(), nil, testLogger())

	sample := uc.GetRate(ctx, nil)
	if !sample.BaseRate.Equal(decimal.NewFromFloat(5.00)) {
		t.Fatalf("expected live base rate 5.00, got %s", sample.BaseRate)
	}
	if !sample.Rate.Equal(decimal.NewFromFloat(5.10)) {
		t.Fatalf("expected 2%% spread applied, got %s", sample.Rate)
	}

	override := decimal.NewFromFloat(10.0)
	sample = uc.GetRate(ctx, &override)
	if !sample.Rate.Equal(decimal.NewFromFloat(5.50)) {
		t.Fatalf("expected override spread rate 5.50, got %s", sample.Rate)
	}
	if !sample.Spread.Equal(override) {
		t.Fatalf("expected spread %s recorded, got %s", override, sample.Spread)
	}
}

func TestRateUseCase_CachesLiveQuotes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := &fakeRateSource{base: decimal.NewFromFloat(5.20)}
	cache := &fakeRateCache{}
	uc := NewRateUseCase(source, newMemSettingsRepo(), cache, testLogger())

	uc.GetRate(ctx, nil)
	uc.GetRate(ctx, nil)
	if source.calls != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", source.calls)
	}
}

func TestRateUseCase_FallbackNotCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := &fakeRateSource{err: fmt.Errorf("bcb: 503")}
	cache := &fakeRateCache{}
	uc := NewRateUseCase(source, newMemSettingsRepo(), cache, testLogger())

	uc.GetRate(ctx, nil)
	if cache.quote != nil {
		t.Fatalf("fallback quote must not be cached")
	}
}
