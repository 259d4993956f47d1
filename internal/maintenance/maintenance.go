// Package maintenance runs housekeeping jobs on a cron schedule.
package maintenance

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/calebwray/theotime/internal/store"
)

// notificationRetention is how long read notifications are kept.
const notificationRetention = 30 * 24 * time.Hour

// Runner owns the cron scheduler for periodic cleanup.
type Runner struct {
	cron          *cron.Cron
	notifications *store.NotificationStore
	logger        *slog.Logger
}

func NewRunner(notifications *store.NotificationStore, logger *slog.Logger) *Runner {
	return &Runner{
		cron:          cron.New(),
		notifications: notifications,
		logger:        logger.With("component", "maintenance"),
	}
}

// Start schedules the jobs and launches the cron loop. Purge runs nightly at
// 03:30 server time, when nobody is reading notifications.
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc("30 3 * * *", r.PurgeNotifications); err != nil {
		return err
	}
	if _, err := r.cron.AddFunc("45 3 * * *", r.PurgeOrphanedNotifications); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("maintenance jobs scheduled")
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("maintenance stopped")
}

// PurgeNotifications deletes read notifications past the retention window.
func (r *Runner) PurgeNotifications() {
	cutoff := time.Now().Add(-notificationRetention)
	purged, err := r.notifications.PurgeRead(cutoff)
	if err != nil {
		r.logger.Error("purge notifications", "error", err)
		return
	}
	if purged > 0 {
		r.logger.Info("purged read notifications", "count", purged)
	}
}

// PurgeOrphanedNotifications drops unread notifications whose related entity
// no longer exists.
func (r *Runner) PurgeOrphanedNotifications() {
	purged, err := r.notifications.PurgeOrphaned()
	if err != nil {
		r.logger.Error("purge orphaned notifications", "error", err)
		return
	}
	if purged > 0 {
		r.logger.Info("purged orphaned notifications", "count", purged)
	}
}
