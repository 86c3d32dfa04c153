package usecase

import (
	"context"
	"time"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/adapter"
	"genesis-admin/internal/domain/ports/repository"
	"genesis-admin/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RevenueTotals aggregates completed-transaction revenue per period.
type RevenueTotals struct {
	Week  decimal.Decimal
	Month decimal.Decimal
	Year  decimal.Decimal
}

// LedgerUseCase is the append-only payment transaction ledger.
type LedgerUseCase interface {
	// Create records a new pending transaction and registers the charge
	// with the payment gateway.
	Create(ctx context.Context, userID, planID string, amountBRL decimal.Decimal, method model.PaymentMethod) (*model.PaymentTransaction, error)
	// UpdateStatus applies a forward-only status transition. Terminal
	// statuses are immutable; entering completed stamps CompletedAt.
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) (*model.PaymentTransaction, error)
	Get(ctx context.Context, id string) (*model.PaymentTransaction, error)
	// GetByAsaasID resolves a transaction by gateway payment reference.
	GetByAsaasID(ctx context.Context, asaasID string) (*model.PaymentTransaction, error)
	ListByUser(ctx context.Context, userID string) ([]*model.PaymentTransaction, error)
	ListAll(ctx context.Context) ([]*model.PaymentTransaction, error)
	Revenue(ctx context.Context) (RevenueTotals, error)
}

var _ LedgerUseCase = (*ledgerUC)(nil)

type ledgerUC struct {
	payments repository.PaymentTransactionRepository
	plans    repository.CreditPlanRepository
	users    repository.UserRepository
	gateway  adapter.PaymentGateway
	txm      repository.TransactionManager
	log      *zerolog.Logger
}

func NewLedgerUseCase(
	payments repository.PaymentTransactionRepository,
	plans repository.CreditPlanRepository,
	users repository.UserRepository,
	gateway adapter.PaymentGateway,
	txm repository.TransactionManager,
	logger *zerolog.Logger,
) *ledgerUC {
	l := logger.With().Str("component", "LedgerUC").Logger()
	return &ledgerUC{payments: payments, plans: plans, users: users, gateway: gateway, txm: txm, log: &l}
}

func (u *ledgerUC) Create(ctx context.Context, userID, planID string, amountBRL decimal.Decimal, method model.PaymentMethod) (*model.PaymentTransaction, error) {
	if userID == "" || !amountBRL.IsPositive() || !method.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := u.plans.FindByID(ctx, planID); err != nil {
		return nil, err
	}
	if _, err := u.users.FindByID(ctx, repository.NoTX, userID); err != nil {
		return nil, err
	}

	gatewayID, err := u.gateway.CreatePayment(ctx, userID, amountBRL, method)
	if err != nil {
		return nil, err
	}

	t := &model.PaymentTransaction{
		// ULIDs are lexically sortable and collision-safe under concurrent
		// creation, so insertion order survives the id alone.
		ID:             ulid.Make().String(),
		UserID:         userID,
		PlanID:         planID,
		Amount:         amountBRL.Round(2),
		Currency:       "BRL",
		Status:         model.PaymentStatusPending,
		PaymentMethod:  method,
		CreatedAt:      time.Now(),
		AsaasPaymentID: gatewayID,
	}
	if err := u.payments.Save(ctx, repository.NoTX, t); err != nil {
		return nil, err
	}
	metrics.IncTransaction(string(t.Status), string(method))
	u.log.Info().Str("txn_id", t.ID).Str("user_id", userID).Str("plan_id", planID).Msg("transaction created")
	return t, nil
}

// UpdateStatus runs inside a database transaction so the row is locked
// between the transition check and the write; concurrent webhook and admin
// updates cannot both pass the check.
func (u *ledgerUC) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) (*model.PaymentTransaction, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	var out *model.PaymentTransaction
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.payments.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !t.CanTransitionTo(status) {
			if t.Status.Terminal() {
				metrics.IncTerminalRejection()
				return domain.ErrTerminalStatus
			}
			return domain.ErrInvalidStatus
		}
		var completedAt *time.Time
		if status == model.PaymentStatusCompleted {
			now := time.Now()
			completedAt = &now
		}
		if err := u.payments.UpdateStatus(ctx, tx, id, status, completedAt); err != nil {
			return err
		}
		t.Status = status
		t.CompletedAt = completedAt
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncTransaction(string(status), string(out.PaymentMethod))
	if status == model.PaymentStatusCompleted {
		amt, _ := out.Amount.Float64()
		metrics.AddRevenue(out.Currency, amt)
	}
	return out, nil
}

func (u *ledgerUC) Get(ctx context.Context, id string) (*model.PaymentTransaction, error) {
	return u.payments.FindByID(ctx, repository.NoTX, id)
}

func (u *ledgerUC) GetByAsaasID(ctx context.Context, asaasID string) (*model.PaymentTransaction, error) {
	return u.payments.FindByAsaasID(ctx, repository.NoTX, asaasID)
}

func (u *ledgerUC) ListByUser(ctx context.Context, userID string) ([]*model.PaymentTransaction, error) {
	return u.payments.ListByUser(ctx, repository.NoTX, userID)
}

func (u *ledgerUC) ListAll(ctx context.Context) ([]*model.PaymentTransaction, error) {
	return u.payments.ListAll(ctx, repository.NoTX)
}

func (u *ledgerUC) Revenue(ctx context.Context) (RevenueTotals, error) {
	now := time.Now()
	week, err := u.payments.SumCompletedSince(ctx, repository.NoTX, now.AddDate(0, 0, -7))
	if err != nil {
		return RevenueTotals{}, err
	}
	month, err := u.payments.SumCompletedSince(ctx, repository.NoTX, now.AddDate(0, -1, 0))
	if err != nil {
		return RevenueTotals{}, err
	}
	year, err := u.payments.SumCompletedSince(ctx, repository.NoTX, now.AddDate(-1, 0, 0))
	if err != nil {
		return RevenueTotals{}, err
	}
	return RevenueTotals{Week: week, Month: month, Year: year}, nil
}
