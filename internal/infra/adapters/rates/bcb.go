package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"genesis-admin/internal/config"
	"genesis-admin/internal/domain/ports/adapter"
)

var _ adapter.ExchangeRateSource = (*BCBClient)(nil)

// BCBClient fetches the official USD->BRL rate from the Banco Central do
// Brasil SGS series API. The endpoint answers with a JSON array holding a
// single sample, its value encoded as a string.
type BCBClient struct {
	url    string
	client *http.Client
	log    *zerolog.Logger
}

func NewBCBClient(cfg *config.RatesConfig, logger *zerolog.Logger) *BCBClient {
	l := logger.With().Str("component", "BCBClient").Logger()
	return &BCBClient{
		url:    cfg.BCBURL,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		log:    &l,
	}
}

type bcbSample struct {
	Date  string `json:"data"`
	Value string `json:"valor"`
}

func (c *BCBClient) FetchBaseRate(ctx context.Context) (adapter.RateQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return adapter.RateQuote{}, fmt.Errorf("build bcb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return adapter.RateQuote{}, fmt.Errorf("fetch bcb rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return adapter.RateQuote{}, fmt.Errorf("fetch bcb rate: unexpected status %d", resp.StatusCode)
	}

	var samples []bcbSample
	if err := json.NewDecoder(resp.Body).Decode(&samples); err != nil {
		return adapter.RateQuote{}, fmt.Errorf("decode bcb response: %w", err)
	}
	if len(samples) == 0 {
		return adapter.RateQuote{}, fmt.Errorf("decode bcb response: empty series")
	}

	rate, err := decimal.NewFromString(samples[0].Value)
	if err != nil {
		return adapter.RateQuote{}, fmt.Errorf("parse bcb rate %q: %w", samples[0].Value, err)
	}
	if !rate.IsPositive() {
		return adapter.RateQuote{}, fmt.Errorf("parse bcb rate: non-positive value %s", rate)
	}

	c.log.Debug().Str("rate", rate.String()).Str("date", samples[0].Date).Msg("fetched base rate")
	return adapter.RateQuote{BaseRate: rate, Source: "bcb", FetchedAt: time.Now()}, nil
}
