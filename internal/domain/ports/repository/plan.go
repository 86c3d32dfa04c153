package repository

import (
	"context"

	"genesis-admin/internal/domain/model"
)

// CreditPlanRepository is the port for catalog persistence. The catalog is
// an ordered sequence; ListAll preserves catalog order.
type CreditPlanRepository interface {
	Save(ctx context.Context, plan *model.CreditPlan) error
	FindByID(ctx context.Context, id string) (*model.CreditPlan, error)
	ListAll(ctx context.Context) ([]*model.CreditPlan, error)
	Delete(ctx context.Context, id string) error
}
