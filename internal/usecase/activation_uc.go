package usecase

import (
	"context"
	"errors"
	"time"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/adapter"
	"genesis-admin/internal/domain/ports/repository"
	"genesis-admin/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// AccessState is the resolved view of a user's access rights.
type AccessState struct {
	Active         bool
	Mode           model.ActivationMode
	LastlinkStatus model.LastlinkStatus
	RemainingDays  int
}

// SyncReport summarizes one Lastlink sync pass.
type SyncReport struct {
	SyncedUsers          int
	UpdatedSubscriptions int
	Timestamp            time.Time
}

// ActivationUseCase resolves and mutates subscription activation state.
// Two mutually exclusive authority modes exist: the external Lastlink
// status (default) and an admin-granted manual window.
type ActivationUseCase interface {
	Resolve(ctx context.Context, userID string, now time.Time) (AccessState, error)
	// GrantManual switches a user to a manual activation window of the
	// given number of days starting now.
	GrantManual(ctx context.Context, userID string, days int) (*model.User, error)
	// RevertToLastlink re-delegates authority to the external status.
	RevertToLastlink(ctx context.Context, userID string) (*model.User, error)
	// SyncLastlink refreshes lastlink statuses for all lastlink-mode users.
	SyncLastlink(ctx context.Context) (SyncReport, error)
	AddCredits(ctx context.Context, userID string, credits int64) (*model.User, error)
	ToggleStatus(ctx context.Context, userID string) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context) (int, error)
}

var _ ActivationUseCase = (*activationUC)(nil)

type activationUC struct {
	users    repository.UserRepository
	lastlink adapter.LastlinkClient
	log      *zerolog.Logger
}

func NewActivationUseCase(users repository.UserRepository, lastlink adapter.LastlinkClient, logger *zerolog.Logger) *activationUC {
	l := logger.With().Str("component", "ActivationUC").Logger()
	return &activationUC{users: users, lastlink: lastlink, log: &l}
}

func (u *activationUC) Resolve(ctx context.Context, userID string, now time.Time) (AccessState, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return AccessState{}, err
	}
	sub := user.Subscription
	return AccessState{
		Active:         sub.IsActiveAt(now),
		Mode:           sub.ActivationMode,
		LastlinkStatus: sub.LastlinkStatus,
		RemainingDays:  sub.RemainingDaysAt(now),
	}, nil
}

func (u *activationUC) GrantManual(ctx context.Context, userID string, days int) (*model.User, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Subscription.GrantManual(time.Now(), days); err != nil {
		return nil, err
	}
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	metrics.IncManualActivation("grant")
	u.log.Info().Str("user_id", userID).Int("days", days).Msg("manual activation granted")
	return user, nil
}

func (u *activationUC) RevertToLastlink(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	user.Subscription.RevertToLastlink()
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	metrics.IncManualActivation("revert")
	u.log.Info().Str("user_id", userID).Msg("activation reverted to lastlink")
	return user, nil
}

// SyncLastlink refreshes the external status of every lastlink-mode user.
// Manual-mode users are untouched: their authority is the admin window.
func (u *activationUC) SyncLastlink(ctx context.Context) (SyncReport, error) {
	users, err := u.users.ListByActivationMode(ctx, repository.NoTX, model.ActivationModeLastlink)
	if err != nil {
		metrics.IncLastlinkSync("error")
		return SyncReport{}, err
	}

	report := SyncReport{Timestamp: time.Now()}
	for _, user := range users {
		status, err := u.lastlink.CheckStatus(ctx, user.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				status = model.LastlinkStatusInactive
			} else {
				u.log.Warn().Err(err).Str("user_id", user.ID).Msg("lastlink status check failed")
				continue
			}
		}
		report.SyncedUsers++
		if user.Subscription.LastlinkStatus == status {
			continue
		}
		user.Subscription.LastlinkStatus = status
		if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
			u.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to persist synced status")
			continue
		}
		report.UpdatedSubscriptions++
	}

	metrics.IncLastlinkSync("ok")
	metrics.SetUsersByMode(string(model.ActivationModeLastlink), len(users))
	return report, nil
}

func (u *activationUC) AddCredits(ctx context.Context, userID string, credits int64) (*model.User, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if err := user.AddCredits(credits); err != nil {
		return nil, err
	}
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *activationUC) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return u.users.FindByID(ctx, repository.NoTX, userID)
}

func (u *activationUC) ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error) {
	return u.users.List(ctx, repository.NoTX, offset, limit)
}

func (u *activationUC) CountUsers(ctx context.Context) (int, error) {
	return u.users.CountUsers(ctx, repository.NoTX)
}

func (u *activationUC) ToggleStatus(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	user.ToggleStatus()
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	return user, nil
}
