package adapter

import (
	"context"

	"genesis-admin/internal/domain/model"

	"github.com/shopspring/decimal"
)

// ConnectionTestResult reports the outcome of a gateway credential check.
type ConnectionTestResult struct {
	Success bool
	Message string
}

// PaymentGateway is the port for the payment provider (Asaas). The ledger
// records the gateway reference returned by CreatePayment; the full charge
// lifecycle is driven by provider webhooks outside this system.
type PaymentGateway interface {
	Name() string

	// CreatePayment registers a charge intent with the provider and returns
	// the provider's payment id.
	CreatePayment(ctx context.Context, userID string, amount decimal.Decimal, method model.PaymentMethod) (string, error)

	// TestConnection verifies the configured credentials.
	TestConnection(ctx context.Context) (ConnectionTestResult, error)
}
