package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"genesis-admin/internal/config"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/adapter"
	"genesis-admin/internal/domain/ports/repository"
)

var _ adapter.PaymentGateway = (*AsaasGateway)(nil)

const (
	sandboxBaseURL    = "https://sandbox.asaas.com/api"
	productionBaseURL = "https://api.asaas.com"
)

// AsaasGateway registers charges with the Asaas payment provider. The API
// key and environment are admin-editable at runtime, so they are read from
// the settings store on every call rather than captured at startup.
type AsaasGateway struct {
	settings repository.SettingsRepository
	baseURL  string // static override; empty means resolve by environment
	client   *http.Client
	log      *zerolog.Logger
}

func NewAsaasGateway(cfg *config.AsaasConfig, settings repository.SettingsRepository, logger *zerolog.Logger) *AsaasGateway {
	l := logger.With().Str("component", "AsaasGateway").Logger()
	return &AsaasGateway{
		settings: settings,
		baseURL:  cfg.BaseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      &l,
	}
}

func (g *AsaasGateway) Name() string { return "asaas" }

func (g *AsaasGateway) resolveBaseURL(cfg *model.AsaasConfig) string {
	if g.baseURL != "" {
		return g.baseURL
	}
	if cfg.Environment == "production" {
		return productionBaseURL
	}
	return sandboxBaseURL
}

func billingType(method model.PaymentMethod) string {
	switch method {
	case model.PaymentMethodPix:
		return "PIX"
	case model.PaymentMethodCreditCard:
		return "CREDIT_CARD"
	case model.PaymentMethodBoleto:
		return "BOLETO"
	}
	return "UNDEFINED"
}

type createPaymentRequest struct {
	Customer          string `json:"customer"`
	BillingType       string `json:"billingType"`
	Value             string `json:"value"`
	DueDate           string `json:"dueDate"`
	ExternalReference string `json:"externalReference"`
}

type createPaymentResponse struct {
	ID string `json:"id"`
}

func (g *AsaasGateway) CreatePayment(ctx context.Context, userID string, amount decimal.Decimal, method model.PaymentMethod) (string, error) {
	cfg, err := g.settings.GetAsaasConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load asaas config: %w", err)
	}
	if cfg.APIKey == "" {
		return "", fmt.Errorf("asaas: API Key não configurada")
	}

	payload, err := json.Marshal(createPaymentRequest{
		Customer:          userID,
		BillingType:       billingType(method),
		Value:             amount.StringFixed(2),
		DueDate:           time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
		ExternalReference: userID,
	})
	if err != nil {
		return "", fmt.Errorf("encode asaas request: %w", err)
	}

	url := g.resolveBaseURL(cfg) + "/v3/payments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build asaas request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create asaas payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.log.Warn().Int("status", resp.StatusCode).Bytes("body", body).Msg("asaas rejected payment")
		return "", fmt.Errorf("create asaas payment: unexpected status %d", resp.StatusCode)
	}

	var out createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode asaas response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("decode asaas response: missing payment id")
	}
	return out.ID, nil
}

func (g *AsaasGateway) TestConnection(ctx context.Context) (adapter.ConnectionTestResult, error) {
	cfg, err := g.settings.GetAsaasConfig(ctx)
	if err != nil {
		return adapter.ConnectionTestResult{}, fmt.Errorf("load asaas config: %w", err)
	}
	if cfg.APIKey == "" {
		return adapter.ConnectionTestResult{Success: false, Message: "API Key não configurada"}, nil
	}

	url := g.resolveBaseURL(cfg) + "/v3/myAccount"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return adapter.ConnectionTestResult{}, fmt.Errorf("build asaas request: %w", err)
	}
	req.Header.Set("access_token", cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return adapter.ConnectionTestResult{Success: false, Message: err.Error()}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return adapter.ConnectionTestResult{
			Success: false,
			Message: fmt.Sprintf("Asaas respondeu com status %d", resp.StatusCode),
		}, nil
	}
	return adapter.ConnectionTestResult{Success: true, Message: "Conexão com Asaas estabelecida"}, nil
}
