package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodPix        PaymentMethod = "pix"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodBoleto     PaymentMethod = "boleto"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodPix, PaymentMethodCreditCard, PaymentMethodBoleto:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"    // created; awaiting gateway processing
	PaymentStatusProcessing PaymentStatus = "processing" // gateway accepted the charge
	PaymentStatusCompleted  PaymentStatus = "completed"  // settled; CompletedAt is set
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses are immutable: once a transaction completes, fails or
// is cancelled, no further transition is accepted.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// PaymentTransaction is one checkout attempt recorded in the ledger.
type PaymentTransaction struct {
	ID             string // ULID, assigned at creation
	UserID         string
	PlanID         string
	Amount         decimal.Decimal // BRL
	Currency       string
	Status         PaymentStatus
	PaymentMethod  PaymentMethod
	CreatedAt      time.Time
	CompletedAt    *time.Time // set iff status is completed
	AsaasPaymentID string     // gateway reference
}

// CanTransitionTo reports whether moving to next is allowed. Transitions are
// forward-only and nothing leaves a terminal status.
func (t *PaymentTransaction) CanTransitionTo(next PaymentStatus) bool {
	if !next.Valid() || t.Status.Terminal() {
		return false
	}
	switch t.Status {
	case PaymentStatusPending:
		return next != PaymentStatusPending
	case PaymentStatusProcessing:
		return next != PaymentStatusPending && next != PaymentStatusProcessing
	}
	return false
}
