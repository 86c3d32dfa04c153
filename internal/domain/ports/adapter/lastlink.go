package adapter

import (
	"context"
	"time"

	"genesis-admin/internal/domain/model"
)

// LastlinkSubscription is the membership record reported by Lastlink for a
// single user.
type LastlinkSubscription struct {
	ID          string
	UserID      string
	CryptoIcoID string
	Status      model.LastlinkStatus
	StartDate   time.Time
	EndDate     time.Time
	Plan        string
	LastSyncAt  time.Time
}

// LastlinkSyncReport summarizes one sync pass against the Lastlink API.
type LastlinkSyncReport struct {
	SyncedUsers          int
	NewSubscriptions     int
	UpdatedSubscriptions int
	Timestamp            time.Time
}

// LastlinkClient is the port to the Lastlink membership platform, the
// default source of truth for access rights.
type LastlinkClient interface {
	// GetSubscription returns the membership for a user, or
	// domain.ErrNotFound when Lastlink knows nothing about them.
	GetSubscription(ctx context.Context, userID string) (*LastlinkSubscription, error)
	// CheckStatus resolves the effective status for a user; unknown users
	// report inactive.
	CheckStatus(ctx context.Context, userID string) (model.LastlinkStatus, error)
}
