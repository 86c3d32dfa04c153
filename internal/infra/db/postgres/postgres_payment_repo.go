package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/repository"
)

var _ repository.PaymentTransactionRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const txnColumns = `id, user_id, plan_id, amount::text, currency, status, payment_method, created_at, completed_at, asaas_payment_id`

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, t *model.PaymentTransaction) error {
	const q = `
INSERT INTO payment_transactions (
  id, user_id, plan_id, amount, currency, status, payment_method, created_at, completed_at, asaas_payment_id
) VALUES (
  $1,$2,$3,$4::numeric,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  status=$6, completed_at=$9, asaas_payment_id=$10;`

	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.UserID, t.PlanID, t.Amount.String(), t.Currency, t.Status, t.PaymentMethod, t.CreatedAt, t.CompletedAt, t.AsaasPaymentID)
	if err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentTransaction, error) {
	q := `SELECT ` + txnColumns + ` FROM payment_transactions WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return t, nil
}

func (r *paymentRepo) FindByAsaasID(ctx context.Context, tx repository.Tx, asaasID string) (*model.PaymentTransaction, error) {
	q := `SELECT ` + txnColumns + ` FROM payment_transactions WHERE asaas_payment_id=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, asaasID)
	if err != nil {
		return nil, err
	}
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return t, nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, completedAt *time.Time) error {
	const q = `UPDATE payment_transactions SET status=$2, completed_at=COALESCE($3, completed_at) WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, status, completedAt)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentTransaction, error) {
	q := `SELECT ` + txnColumns + ` FROM payment_transactions WHERE user_id=$1 ORDER BY created_at, id;`
	return r.list(ctx, tx, q, userID)
}

func (r *paymentRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PaymentTransaction, error) {
	q := `SELECT ` + txnColumns + ` FROM payment_transactions ORDER BY created_at, id;`
	return r.list(ctx, tx, q)
}

func (r *paymentRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.PaymentTransaction, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*model.PaymentTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *paymentRepo) SumCompletedSince(ctx context.Context, tx repository.Tx, since time.Time) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(SUM(amount),0)::text FROM payment_transactions WHERE status='completed' AND created_at >= $1;`
	row, err := pickRow(ctx, r.pool, tx, q, since)
	if err != nil {
		return decimal.Zero, err
	}
	var sum string
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	return decimal.NewFromString(sum)
}

func (r *paymentRepo) CountByPlan(ctx context.Context, tx repository.Tx, planID string) (int, error) {
	const q = `SELECT COUNT(*) FROM payment_transactions WHERE plan_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, planID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func scanTransaction(row pgx.Row) (*model.PaymentTransaction, error) {
	t := &model.PaymentTransaction{}
	var amount string
	if err := row.Scan(&t.ID, &t.UserID, &t.PlanID, &amount, &t.Currency, &t.Status, &t.PaymentMethod, &t.CreatedAt, &t.CompletedAt, &t.AsaasPaymentID); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	t.Amount = d
	return t, nil
}
