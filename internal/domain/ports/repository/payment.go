package repository

import (
	"context"
	"time"

	"genesis-admin/internal/domain/model"

	"github.com/shopspring/decimal"
)

// PaymentTransactionRepository is the port for the transaction ledger.
// Listings preserve insertion order.
type PaymentTransactionRepository interface {
	Save(ctx context.Context, tx Tx, t *model.PaymentTransaction) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PaymentTransaction, error)
	// FindByAsaasID resolves a transaction by the gateway payment reference,
	// used by webhook delivery.
	FindByAsaasID(ctx context.Context, tx Tx, asaasID string) (*model.PaymentTransaction, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.PaymentStatus, completedAt *time.Time) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.PaymentTransaction, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.PaymentTransaction, error)
	// SumCompletedSince totals the BRL amount of completed transactions
	// created at or after the given instant.
	SumCompletedSince(ctx context.Context, tx Tx, since time.Time) (decimal.Decimal, error)
	CountByPlan(ctx context.Context, tx Tx, planID string) (int, error)
}
