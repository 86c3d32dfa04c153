package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/domain/ports/repository"
)

func seedUser(t *testing.T, users *memUserRepo, id string, status model.LastlinkStatus) {
	t.Helper()
	u, err := model.NewUser(id, "User "+id, id+"@email.com", 100)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	u.Subscription.LastlinkStatus = status
	if err := users.Save(context.Background(), repository.NoTX, u); err != nil {
		t.Fatalf("save user: %v", err)
	}
}

func TestActivationUseCase_ResolveLastlink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newMemUserRepo()
	seedUser(t, users, "u1", model.LastlinkStatusActive)
	seedUser(t, users, "u2", model.LastlinkStatusExpired)
	uc := NewActivationUseCase(users, newFakeLastlink(), testLogger())

	now := time.Now()
	state, err := uc.Resolve(ctx, "u1", now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !state.Active || state.Mode != model.ActivationModeLastlink {
		t.Fatalf("expected active lastlink state, got %+v", state)
	}

	state, err = uc.Resolve(ctx, "u2", now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if state.Active {
		t.Fatalf("expired lastlink status must resolve inactive")
	}

	if _, err := uc.Resolve(ctx, "ghost", now); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestActivationUseCase_GrantManualAndRevert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newMemUserRepo()
	seedUser(t, users, "u1", model.LastlinkStatusExpired)
	uc := NewActivationUseCase(users, newFakeLastlink(), testLogger())

	user, err := uc.GrantManual(ctx, "u1", 30)
	if err != nil {
		t.Fatalf("GrantManual: %v", err)
	}
	if user.Subscription.ActivationMode != model.ActivationModeManual {
		t.Fatalf("expected manual mode after grant")
	}

	state, err := uc.Resolve(ctx, "u1", time.Now())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !state.Active || state.RemainingDays != 30 {
		t.Fatalf("expected active with 30 days remaining, got %+v", state)
	}

	user, err = uc.RevertToLastlink(ctx, "u1")
	if err != nil {
		t.Fatalf("RevertToLastlink: %v", err)
	}
	if user.Subscription.ActivationMode != model.ActivationModeLastlink {
		t.Fatalf("expected lastlink mode after revert")
	}
	if user.Subscription.ManualActivationStart != nil || user.Subscription.ManualActivationEnd != nil {
		t.Fatalf("revert must clear manual timestamps")
	}
}

func TestActivationUseCase_GrantManualValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newMemUserRepo()
	seedUser(t, users, "u1", model.LastlinkStatusActive)
	uc := NewActivationUseCase(users, newFakeLastlink(), testLogger())

	for _, days := range []int{0, -1, -30} {
		if _, err := uc.GrantManual(ctx, "u1", days); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("days=%d: expected ErrInvalidArgument, got %v", days, err)
		}
	}

	// A rejected grant must leave the stored user untouched.
	stored, err := users.FindByID(ctx, repository.NoTX, "u1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Subscription.ActivationMode != model.ActivationModeLastlink {
		t.Fatalf("rejected grant mutated stored subscription")
	}
}

func TestActivationUseCase_SyncLastlink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newMemUserRepo()
	seedUser(t, users, "u1", model.LastlinkStatusPending)
	seedUser(t, users, "u2", model.LastlinkStatusActive)
	seedUser(t, users, "u3", model.LastlinkStatusActive)

	ll := newFakeLastlink()
	ll.statuses["u1"] = model.LastlinkStatusActive  // pending -> active
	ll.statuses["u2"] = model.LastlinkStatusActive  // unchanged
	ll.statuses["u3"] = model.LastlinkStatusExpired // active -> expired
	uc := NewActivationUseCase(users, ll, testLogger())

	// Manual-mode users must be skipped entirely.
	if _, err := uc.GrantManual(ctx, "u2", 10); err != nil {
		t.Fatalf("GrantManual: %v", err)
	}

	report, err := uc.SyncLastlink(ctx)
	if err != nil {
		t.Fatalf("SyncLastlink: %v", err)
	}
	if report.SyncedUsers != 2 {
		t.Fatalf("expected 2 synced users, got %d", report.SyncedUsers)
	}
	if report.UpdatedSubscriptions != 2 {
		t.Fatalf("expected 2 updates, got %d", report.UpdatedSubscriptions)
	}

	u3, _ := users.FindByID(ctx, repository.NoTX, "u3")
	if u3.Subscription.LastlinkStatus != model.LastlinkStatusExpired {
		t.Fatalf("expected u3 expired after sync, got %s", u3.Subscription.LastlinkStatus)
	}
	u2, _ := users.FindByID(ctx, repository.NoTX, "u2")
	if u2.Subscription.ActivationMode != model.ActivationModeManual {
		t.Fatalf("sync must not touch manual-mode users")
	}
}

func TestActivationUseCase_CreditsAndStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newMemUserRepo()
	seedUser(t, users, "u1", model.LastlinkStatusActive)
	uc := NewActivationUseCase(users, newFakeLastlink(), testLogger())

	user, err := uc.AddCredits(ctx, "u1", 500)
	if err != nil {
		t.Fatalf("AddCredits: %v", err)
	}
	if user.Credits != 600 {
		t.Fatalf("expected 600 credits, got %d", user.Credits)
	}
	if _, err := uc.AddCredits(ctx, "u1", 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for zero grant, got %v", err)
	}

	user, err = uc.ToggleStatus(ctx, "u1")
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if user.Status != model.UserStatusInactive {
		t.Fatalf("expected inactive after toggle, got %s", user.Status)
	}
}
