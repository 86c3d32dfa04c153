package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRateSample is a derived USD->BRL quote with the checkout spread
// applied. It is recomputed on demand and never persisted.
type ExchangeRateSample struct {
	Rate      decimal.Decimal `json:"rate"`
	BaseRate  decimal.Decimal `json:"base_rate"`
	Spread    decimal.Decimal `json:"spread"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewExchangeRateSample derives the spread-adjusted rate from a base quote.
func NewExchangeRateSample(base, spread decimal.Decimal, source string, at time.Time) ExchangeRateSample {
	return ExchangeRateSample{
		Rate:      RateWithSpread(base, spread),
		BaseRate:  base,
		Spread:    spread,
		Source:    source,
		Timestamp: at,
	}
}
