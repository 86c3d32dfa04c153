package lastlink

import (
	"context"
	"sync"
	"time"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/adapter"
)

var _ adapter.LastlinkClient = (*NoopClient)(nil)

// NoopClient is a simple in-memory membership source to use in tests and
// local development without Lastlink credentials.
type NoopClient struct {
	mu       sync.Mutex
	statuses map[string]model.LastlinkStatus
}

func NewNoopClient() *NoopClient {
	return &NoopClient{statuses: make(map[string]model.LastlinkStatus)}
}

// SetStatus seeds the reported status for a user.
func (c *NoopClient) SetStatus(userID string, status model.LastlinkStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[userID] = status
}

func (c *NoopClient) GetSubscription(ctx context.Context, userID string) (*adapter.LastlinkSubscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.statuses[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	return &adapter.LastlinkSubscription{
		ID:         "noop-" + userID,
		UserID:     userID,
		Status:     status,
		StartDate:  now.AddDate(0, -1, 0),
		EndDate:    now.AddDate(0, 1, 0),
		Plan:       "noop",
		LastSyncAt: now,
	}, nil
}

func (c *NoopClient) CheckStatus(ctx context.Context, userID string) (model.LastlinkStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.statuses[userID]
	if !ok {
		return model.LastlinkStatusInactive, nil
	}
	return status, nil
}
