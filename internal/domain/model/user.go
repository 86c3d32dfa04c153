package model

import (
	"time"

	"genesis-admin/internal/domain"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is a dashboard account holder with a credit balance and usage
// counters. Access rights live on the user's UserSubscription.
type User struct {
	ID            string
	Name          string
	Email         string
	Credits       int64
	Analyses      int64
	Searches      int64
	Status        UserStatus
	JoinedAt      time.Time
	TermsSignedAt *time.Time
	Subscription  UserSubscription
}

func NewUser(id, name, email string, initialCredits int64) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || email == "" || initialCredits < 0 {
		return nil, domain.ErrInvalidArgument
	}
	sub, err := NewLastlinkSubscription(id, LastlinkStatusPending)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		Credits:      initialCredits,
		Status:       UserStatusActive,
		JoinedAt:     time.Now(),
		Subscription: *sub,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// AddCredits grants credits to the balance. Negative grants are rejected so
// a typo in the admin form cannot silently drain an account.
func (u *User) AddCredits(n int64) error {
	if n <= 0 {
		return domain.ErrInvalidArgument
	}
	u.Credits += n
	return nil
}

// ToggleStatus flips between active and inactive.
func (u *User) ToggleStatus() {
	if u.Status == UserStatusActive {
		u.Status = UserStatusInactive
	} else {
		u.Status = UserStatusActive
	}
}
