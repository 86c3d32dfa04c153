package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/repository"
)

var _ repository.CreditPlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

// Prices go over the wire as text so NUMERIC round-trips without float loss.
const planColumns = `id, name, credits, price_usd::text, created_at`

func (r *planRepo) Save(ctx context.Context, plan *model.CreditPlan) error {
	const q = `
INSERT INTO credit_plans (id, name, credits, price_usd, created_at)
VALUES ($1,$2,$3,$4::numeric,$5)
ON CONFLICT (id) DO UPDATE SET name=$2, credits=$3, price_usd=$4::numeric;`

	if _, err := execSQL(ctx, r.pool, nil, q, plan.ID, plan.Name, plan.Credits, plan.PriceUSD.String(), plan.CreatedAt); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, id string) (*model.CreditPlan, error) {
	q := `SELECT ` + planColumns + ` FROM credit_plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, nil, q, id)
	if err != nil {
		return nil, err
	}
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return plan, nil
}

func (r *planRepo) ListAll(ctx context.Context) ([]*model.CreditPlan, error) {
	q := `SELECT ` + planColumns + ` FROM credit_plans ORDER BY created_at, id;`
	rows, err := queryRows(ctx, r.pool, nil, q)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []*model.CreditPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("list plans: %w", err)
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

func (r *planRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM credit_plans WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, nil, q, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPlan(row pgx.Row) (*model.CreditPlan, error) {
	p := &model.CreditPlan{}
	var price string
	if err := row.Scan(&p.ID, &p.Name, &p.Credits, &price, &p.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.PriceUSD = d
	return p, nil
}
