package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"genesis-admin/internal/usecase"
)

// LastlinkSyncWorker periodically refreshes the external subscription status
// of every lastlink-mode user.
type LastlinkSyncWorker struct {
	interval   time.Duration
	activation usecase.ActivationUseCase
	log        *zerolog.Logger
}

func NewLastlinkSyncWorker(interval time.Duration, activation usecase.ActivationUseCase, logger *zerolog.Logger) *LastlinkSyncWorker {
	l := logger.With().Str("component", "LastlinkSyncWorker").Logger()
	return &LastlinkSyncWorker{
		interval:   interval,
		activation: activation,
		log:        &l,
	}
}

func (w *LastlinkSyncWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting lastlink sync worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping lastlink sync worker")
			return ctx.Err()
		case <-ticker.C:
			report, err := w.activation.SyncLastlink(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("lastlink sync error")
				continue
			}
			if report.UpdatedSubscriptions > 0 {
				w.log.Info().
					Int("synced", report.SyncedUsers).
					Int("updated", report.UpdatedSubscriptions).
					Msg("lastlink statuses refreshed")
			}
		}
	}
}
