package model

import (
	"time"

	"genesis-admin/internal/domain"

	"github.com/shopspring/decimal"
)

// CreditPlan is a purchasable credit bundle. Plans referenced by
// transactions are treated as immutable on the referencing side; the
// catalog itself is admin-editable.
type CreditPlan struct {
	ID        string
	Name      string
	Credits   int64
	PriceUSD  decimal.Decimal
	CreatedAt time.Time
}

func (p *CreditPlan) IsZero() bool { return p == nil || p.ID == "" }

// NewCreditPlan validates and constructs a plan.
func NewCreditPlan(id, name string, credits int64, priceUSD decimal.Decimal) (*CreditPlan, error) {
	if id == "" || name == "" || credits <= 0 || !priceUSD.IsPositive() {
		return nil, domain.ErrInvalidArgument
	}
	return &CreditPlan{
		ID:        id,
		Name:      name,
		Credits:   credits,
		PriceUSD:  priceUSD,
		CreatedAt: time.Now(),
	}, nil
}

// PricePerCredit is derived on read and never stored. A zero-credit plan is
// an error condition, not an infinity.
func (p *CreditPlan) PricePerCredit() (decimal.Decimal, error) {
	if p.Credits <= 0 {
		return decimal.Zero, domain.ErrZeroCredits
	}
	return p.PriceUSD.Div(decimal.NewFromInt(p.Credits)), nil
}
