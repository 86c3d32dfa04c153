package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/adapter"
	"genesis-admin/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockTxManager runs the body without a real transaction.
type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

//
// ---------------- in-memory repositories ----------------
//

type memPlanRepo struct {
	mu    sync.Mutex
	plans []*model.CreditPlan
}

func newMemPlanRepo() *memPlanRepo { return &memPlanRepo{} }

func (m *memPlanRepo) Save(ctx context.Context, plan *model.CreditPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.plans {
		if p.ID == plan.ID {
			cp := *plan
			m.plans[i] = &cp
			return nil
		}
	}
	cp := *plan
	m.plans = append(m.plans, &cp)
	return nil
}

func (m *memPlanRepo) FindByID(ctx context.Context, id string) (*model.CreditPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPlanRepo) ListAll(ctx context.Context) ([]*model.CreditPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.CreditPlan, 0, len(m.plans))
	for _, p := range m.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPlanRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.plans {
		if p.ID == id {
			m.plans = append(m.plans[:i], m.plans[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memPaymentRepo struct {
	mu   sync.Mutex
	txns []*model.PaymentTransaction
}

func newMemPaymentRepo() *memPaymentRepo { return &memPaymentRepo{} }

func (m *memPaymentRepo) Save(ctx context.Context, tx repository.Tx, t *model.PaymentTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.txns = append(m.txns, &cp)
	return nil
}

func (m *memPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txns {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPaymentRepo) FindByAsaasID(ctx context.Context, tx repository.Tx, asaasID string) (*model.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txns {
		if t.AsaasPaymentID == asaasID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPaymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, completedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txns {
		if t.ID == id {
			t.Status = status
			if completedAt != nil {
				t.CompletedAt = completedAt
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentTransaction
	for _, t := range m.txns {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPaymentRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.PaymentTransaction, 0, len(m.txns))
	for _, t := range m.txns {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPaymentRepo) SumCompletedSince(ctx context.Context, tx repository.Tx, since time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, t := range m.txns {
		if t.Status == model.PaymentStatusCompleted && !t.CreatedAt.Before(since) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (m *memPaymentRepo) CountByPlan(ctx context.Context, tx repository.Tx, planID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.txns {
		if t.PlanID == planID {
			n++
		}
	}
	return n, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users []*model.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{} }

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.users {
		if x.ID == u.ID {
			cp := *u
			m.users[i] = &cp
			return nil
		}
	}
	cp := *u
	m.users = append(m.users, &cp)
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset >= len(m.users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.users) {
		end = len(m.users)
	}
	var out []*model.User
	for _, u := range m.users[offset:end] {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *memUserRepo) CountByActivationMode(ctx context.Context, tx repository.Tx, mode model.ActivationMode) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if u.Subscription.ActivationMode == mode {
			n++
		}
	}
	return n, nil
}

func (m *memUserRepo) ListByActivationMode(ctx context.Context, tx repository.Tx, mode model.ActivationMode) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.Subscription.ActivationMode == mode {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memSettingsRepo struct {
	mu       sync.Mutex
	checkout *model.CheckoutConfig
	asaas    *model.AsaasConfig
	errGet   error
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{
		checkout: model.DefaultCheckoutConfig(),
		asaas:    model.DefaultAsaasConfig(),
	}
}

func (m *memSettingsRepo) GetCheckoutConfig(ctx context.Context) (*model.CheckoutConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errGet != nil {
		return nil, m.errGet
	}
	cp := *m.checkout
	return &cp, nil
}

func (m *memSettingsRepo) SaveCheckoutConfig(ctx context.Context, cfg *model.CheckoutConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cfg
	m.checkout = &cp
	return nil
}

func (m *memSettingsRepo) GetAsaasConfig(ctx context.Context) (*model.AsaasConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.asaas
	return &cp, nil
}

func (m *memSettingsRepo) SaveAsaasConfig(ctx context.Context, cfg *model.AsaasConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cfg
	m.asaas = &cp
	return nil
}

//
// ---------------- fake adapters ----------------
//

type fakeRateSource struct {
	mu    sync.Mutex
	base  decimal.Decimal
	err   error
	calls int
}

func (f *fakeRateSource) FetchBaseRate(ctx context.Context) (adapter.RateQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return adapter.RateQuote{}, f.err
	}
	return adapter.RateQuote{BaseRate: f.base, Source: "bcb", FetchedAt: time.Now()}, nil
}

type fakeRateCache struct {
	mu    sync.Mutex
	quote *adapter.RateQuote
}

func (f *fakeRateCache) Get(ctx context.Context) (adapter.RateQuote, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quote == nil {
		return adapter.RateQuote{}, false
	}
	return *f.quote, true
}

func (f *fakeRateCache) Set(ctx context.Context, q adapter.RateQuote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quote = &q
}

type fakeLastlink struct {
	mu       sync.Mutex
	statuses map[string]model.LastlinkStatus
}

func newFakeLastlink() *fakeLastlink {
	return &fakeLastlink{statuses: map[string]model.LastlinkStatus{}}
}

func (f *fakeLastlink) GetSubscription(ctx context.Context, userID string) (*adapter.LastlinkSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.statuses[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &adapter.LastlinkSubscription{UserID: userID, Status: status}, nil
}

func (f *fakeLastlink) CheckStatus(ctx context.Context, userID string) (model.LastlinkStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.statuses[userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return status, nil
}

type fakeGateway struct {
	mu   sync.Mutex
	seq  int64
	fail bool
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreatePayment(ctx context.Context, userID string, amount decimal.Decimal, method model.PaymentMethod) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return "", fmt.Errorf("fake gateway: unavailable")
	}
	g.seq++
	return fmt.Sprintf("asaas_%09d", g.seq), nil
}

func (g *fakeGateway) TestConnection(ctx context.Context) (adapter.ConnectionTestResult, error) {
	if g.fail {
		return adapter.ConnectionTestResult{Success: false, Message: "API key not configured"}, nil
	}
	return adapter.ConnectionTestResult{Success: true, Message: "connection established"}, nil
}
