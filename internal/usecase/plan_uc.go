package usecase

import (
	"context"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/repository"

	"github.com/shopspring/decimal"
)

// PlanUseCase manages the credit plan catalog.
type PlanUseCase struct {
	repo     repository.CreditPlanRepository
	payments repository.PaymentTransactionRepository
}

// NewPlanUseCase constructs a PlanUseCase.
func NewPlanUseCase(repo repository.CreditPlanRepository, payments repository.PaymentTransactionRepository) *PlanUseCase {
	return &PlanUseCase{repo: repo, payments: payments}
}

// Create validates and saves a new plan.
func (uc *PlanUseCase) Create(ctx context.Context, id, name string, credits int64, priceUSD decimal.Decimal) (*model.CreditPlan, error) {
	plan, err := model.NewCreditPlan(id, name, credits, priceUSD)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Get retrieves a plan by ID.
func (uc *PlanUseCase) Get(ctx context.Context, id string) (*model.CreditPlan, error) {
	return uc.repo.FindByID(ctx, id)
}

// List returns the catalog in order.
func (uc *PlanUseCase) List(ctx context.Context) ([]*model.CreditPlan, error) {
	return uc.repo.ListAll(ctx)
}

// Update mutates a plan's fields; nil pointers mean "no change". Updates are
// last-write-wins, with no optimistic-concurrency check.
func (uc *PlanUseCase) Update(ctx context.Context, id string, name *string, credits *int64, priceUSD *decimal.Decimal) (*model.CreditPlan, error) {
	plan, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		if *name == "" {
			return nil, domain.ErrInvalidArgument
		}
		plan.Name = *name
	}
	if credits != nil {
		if *credits <= 0 {
			return nil, domain.ErrInvalidArgument
		}
		plan.Credits = *credits
	}
	if priceUSD != nil {
		if !priceUSD.IsPositive() {
			return nil, domain.ErrInvalidArgument
		}
		plan.PriceUSD = *priceUSD
	}
	if err := uc.repo.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete removes a plan unless transactions still reference it.
func (uc *PlanUseCase) Delete(ctx context.Context, id string) error {
	n, err := uc.payments.CountByPlan(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrPlanReferenced
	}
	return uc.repo.Delete(ctx, id)
}
