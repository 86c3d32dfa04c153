package model

import (
	"genesis-admin/internal/domain"

	"github.com/shopspring/decimal"
)

// CheckoutConfig is the singleton checkout configuration edited from the
// admin panel. Updates are last-write-wins; no history is kept.
type CheckoutConfig struct {
	PixEnabled        bool
	CreditCardEnabled bool
	BoletoEnabled     bool
	PixFee            decimal.Decimal // percent, 0-100
	CreditCardFee     decimal.Decimal // percent, 0-100
	BoletoFee         decimal.Decimal // percent, 0-100
	FixedFee          decimal.Decimal // flat BRL amount added on top of the percentage fee
	UsdToBrlRate      decimal.Decimal
	CheckoutSpread    decimal.Decimal // percent margin applied over the base exchange rate
	WebhookSecret     string
}

// DefaultCheckoutConfig mirrors the launch defaults of the dashboard.
func DefaultCheckoutConfig() *CheckoutConfig {
	return &CheckoutConfig{
		PixEnabled:        true,
		CreditCardEnabled: true,
		BoletoEnabled:     true,
		PixFee:            decimal.NewFromFloat(1.99),
		CreditCardFee:     decimal.NewFromFloat(2.99),
		BoletoFee:         decimal.NewFromFloat(1.99),
		FixedFee:          decimal.NewFromFloat(0.49),
		UsdToBrlRate:      decimal.NewFromFloat(5.53),
		CheckoutSpread:    decimal.NewFromFloat(2.0),
	}
}

// FeeFor returns the percentage fee configured for a payment method.
func (c *CheckoutConfig) FeeFor(method PaymentMethod) (decimal.Decimal, error) {
	switch method {
	case PaymentMethodPix:
		return c.PixFee, nil
	case PaymentMethodCreditCard:
		return c.CreditCardFee, nil
	case PaymentMethodBoleto:
		return c.BoletoFee, nil
	default:
		return decimal.Zero, domain.ErrInvalidArgument
	}
}

// MethodEnabled reports whether a payment method is switched on.
func (c *CheckoutConfig) MethodEnabled(method PaymentMethod) bool {
	switch method {
	case PaymentMethodPix:
		return c.PixEnabled
	case PaymentMethodCreditCard:
		return c.CreditCardEnabled
	case PaymentMethodBoleto:
		return c.BoletoEnabled
	}
	return false
}

func (c *CheckoutConfig) Validate() error {
	hundred := decimal.NewFromInt(100)
	for _, pct := range []decimal.Decimal{c.PixFee, c.CreditCardFee, c.BoletoFee} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return domain.ErrInvalidArgument
		}
	}
	if c.FixedFee.IsNegative() {
		return domain.ErrInvalidArgument
	}
	if !c.UsdToBrlRate.IsPositive() {
		return domain.ErrInvalidArgument
	}
	return nil
}

// AsaasConfig holds the gateway account credentials configured by the admin.
type AsaasConfig struct {
	APIKey      string
	WebhookURL  string
	Environment string // sandbox | production
	CpfCnpj     string
	AccountName string
}

func DefaultAsaasConfig() *AsaasConfig {
	return &AsaasConfig{
		Environment: "sandbox",
		AccountName: "Gênesis",
	}
}
