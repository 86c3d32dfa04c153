package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

// userRepo stores users and their subscription state in a single row; the
// mode/timestamp invariant is enforced by the model before Save is called.
type userRepo struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

const userColumns = `id, name, email, credits, analyses, searches, status, joined_at, terms_signed_at,
  activation_mode, lastlink_status, manual_activation_start, manual_activation_end`

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (
  id, name, email, credits, analyses, searches, status, joined_at, terms_signed_at,
  activation_mode, lastlink_status, manual_activation_start, manual_activation_end
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  name=$2, email=$3, credits=$4, analyses=$5, searches=$6, status=$7, terms_signed_at=$9,
  activation_mode=$10, lastlink_status=$11, manual_activation_start=$12, manual_activation_end=$13;`

	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.Name, u.Email, u.Credits, u.Analyses, u.Searches, u.Status, u.JoinedAt, u.TermsSignedAt,
		u.Subscription.ActivationMode, u.Subscription.LastlinkStatus,
		u.Subscription.ManualActivationStart, u.Subscription.ManualActivationEnd)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + userColumns + ` FROM users ORDER BY joined_at, id OFFSET $1 LIMIT $2;`
	return r.listUsers(ctx, tx, q, offset, limit)
}

func (r *userRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM users;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *userRepo) CountByActivationMode(ctx context.Context, tx repository.Tx, mode model.ActivationMode) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE activation_mode=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, mode)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count users by mode: %w", err)
	}
	return n, nil
}

func (r *userRepo) ListByActivationMode(ctx context.Context, tx repository.Tx, mode model.ActivationMode) ([]*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE activation_mode=$1 ORDER BY joined_at, id;`
	return r.listUsers(ctx, tx, q, mode)
}

func (r *userRepo) listUsers(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.User, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Credits, &u.Analyses, &u.Searches, &u.Status, &u.JoinedAt, &u.TermsSignedAt,
		&u.Subscription.ActivationMode, &u.Subscription.LastlinkStatus,
		&u.Subscription.ManualActivationStart, &u.Subscription.ManualActivationEnd,
	); err != nil {
		return nil, err
	}
	u.Subscription.UserID = u.ID
	return u, nil
}
