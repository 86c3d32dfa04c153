package usecase

import (
	"context"

	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/repository"
)

// DashboardStats is the headline card data for the admin dashboard.
type DashboardStats struct {
	TotalUsers            int
	ManualActivationUsers int
	Revenue               RevenueTotals
}

// StatsUseCase aggregates reporting totals.
type StatsUseCase struct {
	users  repository.UserRepository
	ledger LedgerUseCase
}

func NewStatsUseCase(users repository.UserRepository, ledger LedgerUseCase) *StatsUseCase {
	return &StatsUseCase{users: users, ledger: ledger}
}

func (uc *StatsUseCase) Totals(ctx context.Context) (DashboardStats, error) {
	total, err := uc.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return DashboardStats{}, err
	}
	manual, err := uc.users.CountByActivationMode(ctx, repository.NoTX, model.ActivationModeManual)
	if err != nil {
		return DashboardStats{}, err
	}
	revenue, err := uc.ledger.Revenue(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	return DashboardStats{
		TotalUsers:            total,
		ManualActivationUsers: manual,
		Revenue:               revenue,
	}, nil
}
