package repository

import (
	"context"

	"genesis-admin/internal/domain/model"
)

// UserRepository persists users together with their subscription state.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
	CountByActivationMode(ctx context.Context, tx Tx, mode model.ActivationMode) (int, error)
	// ListByActivationMode returns users governed by the given mode, used by
	// the Lastlink sync worker.
	ListByActivationMode(ctx context.Context, tx Tx, mode model.ActivationMode) ([]*model.User, error)
}
