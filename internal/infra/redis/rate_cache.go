package redis

import (
	"context"
	"encoding/json"
	"time"

	"genesis-admin/internal/domain/ports/adapter"
	"genesis-admin/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const rateKey = "exchange_rate:usd_brl"

var _ usecase.RateCache = (*RateCache)(nil)

// RateCache stores the last live base-rate quote so checkout previews do
// not hammer the external source. Cache failures degrade to a miss; the
// caller re-fetches or falls back.
type RateCache struct {
	client RedisClient
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewRateCache(client RedisClient, ttl time.Duration, logger *zerolog.Logger) *RateCache {
	l := logger.With().Str("component", "RateCache").Logger()
	return &RateCache{client: client, ttl: ttl, log: &l}
}

type cachedQuote struct {
	BaseRate  decimal.Decimal `json:"base_rate"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

func (c *RateCache) Get(ctx context.Context) (adapter.RateQuote, bool) {
	data, err := c.client.Get(ctx, rateKey)
	if err != nil {
		if !IsNil(err) {
			c.log.Warn().Err(err).Msg("rate cache read failed")
		}
		return adapter.RateQuote{}, false
	}
	var q cachedQuote
	if err := json.Unmarshal([]byte(data), &q); err != nil {
		c.log.Warn().Err(err).Msg("rate cache entry corrupt")
		return adapter.RateQuote{}, false
	}
	return adapter.RateQuote{BaseRate: q.BaseRate, Source: q.Source, FetchedAt: q.FetchedAt}, true
}

func (c *RateCache) Set(ctx context.Context, q adapter.RateQuote) {
	data, err := json.Marshal(cachedQuote{BaseRate: q.BaseRate, Source: q.Source, FetchedAt: q.FetchedAt})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, rateKey, data, c.ttl); err != nil {
		c.log.Warn().Err(err).Msg("rate cache write failed")
	}
}
