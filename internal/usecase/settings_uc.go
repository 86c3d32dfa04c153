package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/adapter"
	"genesis-admin/internal/domain/ports/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CheckoutConfigUpdate carries a partial admin edit; nil pointers mean
// "no change".
type CheckoutConfigUpdate struct {
	PixEnabled        *bool
	CreditCardEnabled *bool
	BoletoEnabled     *bool
	PixFee            *decimal.Decimal
	CreditCardFee     *decimal.Decimal
	BoletoFee         *decimal.Decimal
	FixedFee          *decimal.Decimal
	UsdToBrlRate      *decimal.Decimal
	CheckoutSpread    *decimal.Decimal
	WebhookSecret     *string
}

// SettingsUseCase manages the singleton checkout and gateway configuration.
type SettingsUseCase struct {
	repo    repository.SettingsRepository
	gateway adapter.PaymentGateway
	log     *zerolog.Logger
}

func NewSettingsUseCase(repo repository.SettingsRepository, gateway adapter.PaymentGateway, logger *zerolog.Logger) *SettingsUseCase {
	l := logger.With().Str("component", "SettingsUC").Logger()
	return &SettingsUseCase{repo: repo, gateway: gateway, log: &l}
}

func (uc *SettingsUseCase) GetCheckoutConfig(ctx context.Context) (*model.CheckoutConfig, error) {
	return uc.repo.GetCheckoutConfig(ctx)
}

// UpdateCheckoutConfig applies a partial edit, last-write-wins.
func (uc *SettingsUseCase) UpdateCheckoutConfig(ctx context.Context, upd CheckoutConfigUpdate) (*model.CheckoutConfig, error) {
	cfg, err := uc.repo.GetCheckoutConfig(ctx)
	if err != nil {
		return nil, err
	}
	if upd.PixEnabled != nil {
		cfg.PixEnabled = *upd.PixEnabled
	}
	if upd.CreditCardEnabled != nil {
		cfg.CreditCardEnabled = *upd.CreditCardEnabled
	}
	if upd.BoletoEnabled != nil {
		cfg.BoletoEnabled = *upd.BoletoEnabled
	}
	if upd.PixFee != nil {
		cfg.PixFee = *upd.PixFee
	}
	if upd.CreditCardFee != nil {
		cfg.CreditCardFee = *upd.CreditCardFee
	}
	if upd.BoletoFee != nil {
		cfg.BoletoFee = *upd.BoletoFee
	}
	if upd.FixedFee != nil {
		cfg.FixedFee = *upd.FixedFee
	}
	if upd.UsdToBrlRate != nil {
		cfg.UsdToBrlRate = *upd.UsdToBrlRate
	}
	if upd.CheckoutSpread != nil {
		cfg.CheckoutSpread = *upd.CheckoutSpread
	}
	if upd.WebhookSecret != nil {
		cfg.WebhookSecret = *upd.WebhookSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.SaveCheckoutConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (uc *SettingsUseCase) GetAsaasConfig(ctx context.Context) (*model.AsaasConfig, error) {
	return uc.repo.GetAsaasConfig(ctx)
}

func (uc *SettingsUseCase) UpdateAsaasConfig(ctx context.Context, cfg *model.AsaasConfig) (*model.AsaasConfig, error) {
	if cfg == nil || (cfg.Environment != "sandbox" && cfg.Environment != "production") {
		return nil, domain.ErrInvalidArgument
	}
	if err := uc.repo.SaveAsaasConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TestAsaasConnection verifies the configured gateway credentials.
func (uc *SettingsUseCase) TestAsaasConnection(ctx context.Context) (adapter.ConnectionTestResult, error) {
	return uc.gateway.TestConnection(ctx)
}

// ValidateWebhook checks an Asaas webhook signature: hex-encoded
// HMAC-SHA256 of the payload under the configured webhook secret.
func (uc *SettingsUseCase) ValidateWebhook(ctx context.Context, signature string, payload []byte) (bool, error) {
	cfg, err := uc.repo.GetCheckoutConfig(ctx)
	if err != nil {
		return false, err
	}
	if cfg.WebhookSecret == "" || signature == "" {
		return false, nil
	}
	mac := hmac.New(sha256.New, []byte(cfg.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
