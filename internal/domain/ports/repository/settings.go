package repository

import (
	"context"

	"genesis-admin/internal/domain/model"
)

// SettingsRepository stores the singleton checkout and gateway
// configuration. Updates are last-write-wins; no history is retained.
type SettingsRepository interface {
	GetCheckoutConfig(ctx context.Context) (*model.CheckoutConfig, error)
	SaveCheckoutConfig(ctx context.Context, cfg *model.CheckoutConfig) error
	GetAsaasConfig(ctx context.Context) (*model.AsaasConfig, error)
	SaveAsaasConfig(ctx context.Context, cfg *model.AsaasConfig) error
}
