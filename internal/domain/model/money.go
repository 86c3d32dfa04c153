package model

import (
	"genesis-admin/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FeeQuote is the outcome of a fee computation for a charge amount.
type FeeQuote struct {
	Fee   decimal.Decimal // percentage fee plus fixed fee, rounded to cents
	Total decimal.Decimal // amount + fee
}

// CalculateFee computes the processing fee for a BRL amount under the given
// checkout configuration: fee = amount*pct/100 + fixedFee, total = amount + fee.
// Amounts must be positive. Rounding to two decimals happens only at the
// boundary so repeated computations do not accumulate drift.
func CalculateFee(amount decimal.Decimal, method PaymentMethod, cfg *CheckoutConfig) (FeeQuote, error) {
	if cfg == nil || !amount.IsPositive() {
		return FeeQuote{}, domain.ErrInvalidArgument
	}
	pct, err := cfg.FeeFor(method)
	if err != nil {
		return FeeQuote{}, err
	}
	fee := amount.Mul(pct).Div(hundred).Add(cfg.FixedFee).Round(2)
	return FeeQuote{
		Fee:   fee,
		Total: amount.Add(fee).Round(2),
	}, nil
}

// RateWithSpread applies a percentage spread over a base exchange rate:
// rate = base * (1 + spread/100).
func RateWithSpread(base, spread decimal.Decimal) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(1).Add(spread.Div(hundred)))
}
