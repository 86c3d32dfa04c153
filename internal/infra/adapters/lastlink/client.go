package lastlink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"genesis-admin/internal/config"
	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/adapter"
)

var _ adapter.LastlinkClient = (*Client)(nil)

// Client talks to the Lastlink membership API. Unknown users are a normal
// condition (the member never bought through Lastlink), reported as
// domain.ErrNotFound.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zerolog.Logger
}

func NewClient(cfg *config.LastlinkConfig, logger *zerolog.Logger) *Client {
	l := logger.With().Str("component", "LastlinkClient").Logger()
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     &l,
	}
}

type subscriptionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CryptoIcoID string    `json:"crypto_ico_id"`
	Status      string    `json:"status"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Plan        string    `json:"plan"`
}

func (c *Client) GetSubscription(ctx context.Context, userID string) (*adapter.LastlinkSubscription, error) {
	url := fmt.Sprintf("%s/v1/subscriptions/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build lastlink request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch lastlink subscription: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("fetch lastlink subscription: unexpected status %d", resp.StatusCode)
	}

	var body subscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode lastlink response: %w", err)
	}

	status := model.LastlinkStatus(body.Status)
	return &adapter.LastlinkSubscription{
		ID:          body.ID,
		UserID:      body.UserID,
		CryptoIcoID: body.CryptoIcoID,
		Status:      status,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Plan:        body.Plan,
		LastSyncAt:  time.Now(),
	}, nil
}

func (c *Client) CheckStatus(ctx context.Context, userID string) (model.LastlinkStatus, error) {
	sub, err := c.GetSubscription(ctx, userID)
	if err != nil {
		if err == domain.ErrNotFound {
			return model.LastlinkStatusInactive, nil
		}
		return "", err
	}
	return sub.Status, nil
}
