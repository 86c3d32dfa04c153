package adapter

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateQuote is a raw base rate as reported by an external source, before
// any spread is applied.
type RateQuote struct {
	BaseRate  decimal.Decimal
	Source    string
	FetchedAt time.Time
}

// ExchangeRateSource fetches the USD->BRL base rate. Implementations must
// honor the context deadline; callers decide the fallback policy.
type ExchangeRateSource interface {
	FetchBaseRate(ctx context.Context) (RateQuote, error)
}
