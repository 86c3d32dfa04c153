package web_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/adapter"
	"genesis-admin/internal/domain/ports/repository"
	"genesis-admin/internal/infra/web"
	"genesis-admin/internal/usecase"
)

const testAPIKey = "test-admin-key"

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

type fakeRateSource struct{ base decimal.Decimal }

func (f *fakeRateSource) FetchBaseRate(ctx context.Context) (adapter.RateQuote, error) {
	return adapter.RateQuote{BaseRate: f.base, Source: "bcb", FetchedAt: time.Now()}, nil
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
	mu  sync.Mutex
	seq int64
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreatePayment(ctx context.Context, userID string, amount decimal.Decimal, method model.PaymentMethod) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("asaas_%09d", g.seq), nil
}

func (g *fakeGateway) TestConnection(ctx context.Context) (adapter.ConnectionTestResult, error) {
	return adapter.ConnectionTestResult{Success: true, Message: "ok"}, nil
}

//
// -------------------- fixture --------------------
//

type fixture struct {
	router   http.Handler
	token    string
	plans    *memPlanRepo
	payments *memPaymentRepo
	users    *memUserRepo
	settings *memSettingsRepo
	lastlink *fakeLastlink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()

	plans := &memPlanRepo{}
	payments := &memPaymentRepo{}
	users := &memUserRepo{}
	settings := newMemSettingsRepo()
	lastlink := newFakeLastlink()
	gateway := &fakeGateway{}

	ctx := context.Background()
	for _, seed := range []struct {
		id, name string
		credits  int64
		price    float64
	}{
		{"plan_1", "Bronze", 500, 5.99},
		{"plan_2", "Prata", 1200, 11.99},
		{"plan_3", "Ouro", 3000, 25.99},
		{"plan_4", "Platina", 7000, 49.99},
	} {
		plan, err := model.NewCreditPlan(seed.id, seed.name, seed.credits, decimal.NewFromFloat(seed.price))
		if err != nil {
			t.Fatalf("seed plan: %v", err)
		}
		if err := plans.Save(ctx, plan); err != nil {
			t.Fatalf("seed plan: %v", err)
		}
	}
	user, err := model.NewUser("u1", "Ana", "ana@example.com", 100)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	user.Subscription.LastlinkStatus = model.LastlinkStatusActive
	if err := users.Save(ctx, repository.NoTX, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rateUC := usecase.NewRateUseCase(&fakeRateSource{base: decimal.NewFromFloat(5.00)}, settings, nil, &log)
	planUC := usecase.NewPlanUseCase(plans, payments)
	ledgerUC := usecase.NewLedgerUseCase(payments, plans, users, gateway, &mockTxManager{}, &log)
	activationUC := usecase.NewActivationUseCase(users, lastlink, &log)
	settingsUC := usecase.NewSettingsUseCase(settings, gateway, &log)
	checkoutUC := usecase.NewCheckoutUseCase(plans, settings, rateUC, &log)
	statsUC := usecase.NewStatsUseCase(users, ledgerUC)

	auth := web.NewAuthManager("test-secret", false, "", 30*time.Minute)
	srv := web.NewServer(auth, testAPIKey, rateUC, planUC, ledgerUC, activationUC, settingsUC, checkoutUC, statsUC, &log)

	rec := httptest.NewRecorder()
	token, err := auth.Mint(rec)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	return &fixture{
		router:   srv.Router(),
		token:    token,
		plans:    plans,
		payments: payments,
		users:    users,
		settings: settings,
		lastlink: lastlink,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}
