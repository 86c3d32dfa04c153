package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway is a simple in-memory gateway to use in tests and local
// development without Asaas credentials.
type NoopGateway struct {
	mu  sync.Mutex
	seq int64
}

func NewNoopGateway() *NoopGateway {
	return &NoopGateway{}
}

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) CreatePayment(ctx context.Context, userID string, amount decimal.Decimal, method model.PaymentMethod) (string, error) {
	if !amount.IsPositive() {
		return "", fmt.Errorf("noop: non-positive amount %s", amount)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("noop_%09d", g.seq), nil
}

func (g *NoopGateway) TestConnection(ctx context.Context) (adapter.ConnectionTestResult, error) {
	return adapter.ConnectionTestResult{Success: true, Message: "noop gateway"}, nil
}
