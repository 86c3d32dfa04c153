package model

import (
	"time"

	"genesis-admin/internal/domain"
)

type ActivationMode string

const (
	// ActivationModeLastlink delegates access to the external Lastlink
	// subscription status (the default source of truth).
	ActivationModeLastlink ActivationMode = "lastlink"
	// ActivationModeManual is an admin-granted, time-boxed override.
	ActivationModeManual ActivationMode = "manual"
)

type LastlinkStatus string

const (
	LastlinkStatusActive   LastlinkStatus = "active"
	LastlinkStatusInactive LastlinkStatus = "inactive"
	LastlinkStatusExpired  LastlinkStatus = "expired"
	LastlinkStatusPending  LastlinkStatus = "pending"
)

// UserSubscription carries the access state of a single user. Exactly one
// activation mode is authoritative at any time: both manual timestamps are
// set iff the mode is manual, and both are nil iff the mode is lastlink.
type UserSubscription struct {
	UserID                string
	ActivationMode        ActivationMode
	LastlinkStatus        LastlinkStatus
	ManualActivationStart *time.Time
	ManualActivationEnd   *time.Time
}

// NewLastlinkSubscription builds a subscription governed by Lastlink.
func NewLastlinkSubscription(userID string, status LastlinkStatus) (*UserSubscription, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &UserSubscription{
		UserID:         userID,
		ActivationMode: ActivationModeLastlink,
		LastlinkStatus: status,
	}, nil
}

// Validate checks the mode/timestamp invariant.
func (s *UserSubscription) Validate() error {
	switch s.ActivationMode {
	case ActivationModeLastlink:
		if s.ManualActivationStart != nil || s.ManualActivationEnd != nil {
			return domain.ErrInvalidArgument
		}
	case ActivationModeManual:
		if s.ManualActivationStart == nil || s.ManualActivationEnd == nil {
			return domain.ErrInvalidArgument
		}
		if !s.ManualActivationStart.Before(*s.ManualActivationEnd) {
			return domain.ErrInvalidArgument
		}
	default:
		return domain.ErrInvalidArgument
	}
	return nil
}

// IsActiveAt resolves whether access is currently valid. In lastlink mode
// only an "active" external status grants access; in manual mode access
// holds for start <= now < end.
func (s *UserSubscription) IsActiveAt(now time.Time) bool {
	switch s.ActivationMode {
	case ActivationModeLastlink:
		return s.LastlinkStatus == LastlinkStatusActive
	case ActivationModeManual:
		if s.ManualActivationStart == nil || s.ManualActivationEnd == nil {
			return false
		}
		return !now.Before(*s.ManualActivationStart) && now.Before(*s.ManualActivationEnd)
	}
	return false
}

// RemainingDaysAt returns ceil((end-now)/24h) clamped to zero for manual
// activations, and zero for lastlink-governed subscriptions. Expiry is
// always computed, never pre-flagged.
func (s *UserSubscription) RemainingDaysAt(now time.Time) int {
	if s.ActivationMode != ActivationModeManual || s.ManualActivationEnd == nil {
		return 0
	}
	remaining := s.ManualActivationEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// GrantManual switches to a manual activation window of the given number of
// days starting at now. The duration must be a positive whole number of days.
func (s *UserSubscription) GrantManual(now time.Time, days int) error {
	if days <= 0 {
		return domain.ErrInvalidArgument
	}
	end := now.Add(time.Duration(days) * 24 * time.Hour)
	s.ActivationMode = ActivationModeManual
	s.ManualActivationStart = &now
	s.ManualActivationEnd = &end
	return nil
}

// RevertToLastlink clears the manual window and re-delegates authority to
// the external sync status. There is no automatic path here: an expired
// manual activation stays manual until an admin calls this.
func (s *UserSubscription) RevertToLastlink() {
	s.ActivationMode = ActivationModeLastlink
	s.ManualActivationStart = nil
	s.ManualActivationEnd = nil
}
