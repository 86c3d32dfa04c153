package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/repository"
)

var _ repository.SettingsRepository = (*settingsRepo)(nil)

// settingsRepo stores the two singleton configs, one row each. Reading an
// unset config yields the launch defaults so a fresh deployment works
// without a seed step.
type settingsRepo struct{ pool *pgxpool.Pool }

func NewSettingsRepo(pool *pgxpool.Pool) *settingsRepo {
	return &settingsRepo{pool: pool}
}

func (r *settingsRepo) GetCheckoutConfig(ctx context.Context) (*model.CheckoutConfig, error) {
	const q = `
SELECT pix_enabled, credit_card_enabled, boleto_enabled,
       pix_fee::text, credit_card_fee::text, boleto_fee::text, fixed_fee::text,
       usd_brl_rate::text, checkout_spread::text, webhook_secret
  FROM checkout_settings WHERE id=TRUE;`

	row, err := pickRow(ctx, r.pool, nil, q)
	if err != nil {
		return nil, err
	}
	cfg := &model.CheckoutConfig{}
	var pixFee, cardFee, boletoFee, fixedFee, rate, spread string
	if err := row.Scan(
		&cfg.PixEnabled, &cfg.CreditCardEnabled, &cfg.BoletoEnabled,
		&pixFee, &cardFee, &boletoFee, &fixedFee, &rate, &spread, &cfg.WebhookSecret,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DefaultCheckoutConfig(), nil
		}
		return nil, fmt.Errorf("get checkout config: %w", err)
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&cfg.PixFee, pixFee},
		{&cfg.CreditCardFee, cardFee},
		{&cfg.BoletoFee, boletoFee},
		{&cfg.FixedFee, fixedFee},
		{&cfg.UsdToBrlRate, rate},
		{&cfg.CheckoutSpread, spread},
	} {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, fmt.Errorf("get checkout config: %w", err)
		}
		*f.dst = d
	}
	return cfg, nil
}

func (r *settingsRepo) SaveCheckoutConfig(ctx context.Context, cfg *model.CheckoutConfig) error {
	const q = `
INSERT INTO checkout_settings (
  id, pix_enabled, credit_card_enabled, boleto_enabled,
  pix_fee, credit_card_fee, boleto_fee, fixed_fee, usd_brl_rate, checkout_spread, webhook_secret
) VALUES (
  TRUE,$1,$2,$3,$4::numeric,$5::numeric,$6::numeric,$7::numeric,$8::numeric,$9::numeric,$10
) ON CONFLICT (id) DO UPDATE SET
  pix_enabled=$1, credit_card_enabled=$2, boleto_enabled=$3,
  pix_fee=$4::numeric, credit_card_fee=$5::numeric, boleto_fee=$6::numeric, fixed_fee=$7::numeric,
  usd_brl_rate=$8::numeric, checkout_spread=$9::numeric, webhook_secret=$10;`

	_, err := execSQL(ctx, r.pool, nil, q,
		cfg.PixEnabled, cfg.CreditCardEnabled, cfg.BoletoEnabled,
		cfg.PixFee.String(), cfg.CreditCardFee.String(), cfg.BoletoFee.String(), cfg.FixedFee.String(),
		cfg.UsdToBrlRate.String(), cfg.CheckoutSpread.String(), cfg.WebhookSecret)
	if err != nil {
		return fmt.Errorf("save checkout config: %w", err)
	}
	return nil
}

func (r *settingsRepo) GetAsaasConfig(ctx context.Context) (*model.AsaasConfig, error) {
	const q = `SELECT api_key, webhook_url, environment, cpf_cnpj, account_name FROM asaas_settings WHERE id=TRUE;`
	row, err := pickRow(ctx, r.pool, nil, q)
	if err != nil {
		return nil, err
	}
	cfg := &model.AsaasConfig{}
	if err := row.Scan(&cfg.APIKey, &cfg.WebhookURL, &cfg.Environment, &cfg.CpfCnpj, &cfg.AccountName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DefaultAsaasConfig(), nil
		}
		return nil, fmt.Errorf("get asaas config: %w", err)
	}
	return cfg, nil
}

func (r *settingsRepo) SaveAsaasConfig(ctx context.Context, cfg *model.AsaasConfig) error {
	const q = `
INSERT INTO asaas_settings (id, api_key, webhook_url, environment, cpf_cnpj, account_name)
VALUES (TRUE,$1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
  api_key=$1, webhook_url=$2, environment=$3, cpf_cnpj=$4, account_name=$5;`

	if _, err := execSQL(ctx, r.pool, nil, q,
		cfg.APIKey, cfg.WebhookURL, cfg.Environment, cfg.CpfCnpj, cfg.AccountName); err != nil {
		return fmt.Errorf("save asaas config: %w", err)
	}
	return nil
}
