// Package notify runs the background scans that turn upcoming events and
// overdue homework into in-app notifications.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/store"
)

const (
	scanInterval = 15 * time.Minute
	warmupDelay  = time.Minute

	// reminderHorizon bounds the candidate query; per-event leads narrow the
	// window further. No lead in practice exceeds a day.
	reminderHorizon = 24 * time.Hour

	// overdueRenotifyAfter throttles repeat overdue notices for the same
	// assignment.
	overdueRenotifyAfter = 24 * time.Hour
)

// Broadcaster pushes a realtime copy of a notification to connected clients.
type Broadcaster interface {
	NotifyUser(userID int64, n *model.Notification)
}

// Scheduler periodically scans for due reminders and overdue homework.
type Scheduler struct {
	mu            sync.RWMutex
	events        *store.EventStore
	homework      *store.HomeworkStore
	notifications *store.NotificationStore
	settings      *store.SettingStore
	broadcaster   Broadcaster
	logger        *slog.Logger

	interval time.Duration
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(
	events *store.EventStore,
	homework *store.HomeworkStore,
	notifications *store.NotificationStore,
	settings *store.SettingStore,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		events:        events,
		homework:      homework,
		notifications: notifications,
		settings:      settings,
		broadcaster:   broadcaster,
		logger:        logger.With("component", "scheduler"),
		interval:      scanInterval,
		now:           time.Now,
	}
}

// SetNow overrides the scheduler's clock. Tests use this to pin time.
func (s *Scheduler) SetNow(now func() time.Time) {
	s.now = now
}

// Start begins the scan loop: one warmup pass shortly after startup, then a
// steady interval.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)

		warmup := time.NewTimer(warmupDelay)
		defer warmup.Stop()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-warmup.C:
				s.RunChecks()
			case <-ticker.C:
				s.RunChecks()
			}
		}
	}()

	s.logger.Info("notification scheduler started", "interval", s.interval)
}

// Stop cancels the loop and waits for any in-flight scan to finish.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	s.logger.Info("notification scheduler stopped")
}

// RunChecks executes one scan pass synchronously. The loop calls it on every
// tick; tests call it directly. A failing scan never blocks the other.
func (s *Scheduler) RunChecks() {
	if err := s.checkEventReminders(); err != nil {
		s.logger.Error("event reminder scan failed", "error", err)
	}
	if err := s.checkOverdueHomework(); err != nil {
		s.logger.Error("overdue homework scan failed", "error", err)
	}
}

func (s *Scheduler) checkEventReminders() error {
	now := s.now().UTC()

	candidates, err := s.events.ListReminderCandidates(now, reminderHorizon)
	if err != nil {
		return fmt.Errorf("list reminder candidates: %w", err)
	}

	for _, event := range candidates {
		// Shared events and events without a lead never produce reminders.
		if event.UserID == nil || event.ReminderMinutes == nil {
			continue
		}
		if err := s.remindUser(now, &event, *event.UserID); err != nil {
			s.logger.Error("send event reminder", "event_id", event.ID, "user_id", *event.UserID, "error", err)
		}
	}
	return nil
}

func (s *Scheduler) remindUser(now time.Time, event *model.Event, userID int64) error {
	lead := *event.ReminderMinutes
	if event.StartDate.After(now.Add(time.Duration(lead) * time.Minute)) {
		return nil
	}

	state, err := s.notifications.PreferenceState(userID, model.NotifTypeEventReminder)
	if err != nil {
		return err
	}
	if !state.Allows() {
		return nil
	}

	// One unread reminder per user and event; a read one frees the slot.
	dup, err := s.notifications.HasUnread(userID, model.NotifTypeEventReminder, event.ID, model.RelatedKindEvent)
	if err != nil {
		return err
	}
	if dup {
		return nil
	}

	minutes := int64(event.StartDate.Sub(now).Minutes())
	message := fmt.Sprintf("%s starts in %d minutes", event.Title, minutes)
	if minutes <= 0 {
		message = fmt.Sprintf("%s is starting now", event.Title)
	}

	n, err := s.notifications.Create(userID, model.NotifTypeEventReminder,
		"Reminder: "+event.Title, &message, &event.ID, strPtr(model.RelatedKindEvent))
	if err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.NotifyUser(userID, n)
	}
	s.logger.Info("event reminder created", "event_id", event.ID, "user_id", userID, "lead_minutes", lead)
	return nil
}

func (s *Scheduler) checkOverdueHomework() error {
	enabled, err := s.settings.GetBool(model.SettingHomeworkEnabled, true)
	if err != nil {
		return fmt.Errorf("read homework setting: %w", err)
	}
	if !enabled {
		return nil
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	overdue, err := s.homework.ListOverdue(today)
	if err != nil {
		return fmt.Errorf("list overdue homework: %w", err)
	}

	for _, hw := range overdue {
		if err := s.notifyOverdue(now, &hw); err != nil {
			s.logger.Error("send overdue notice", "homework_id", hw.ID, "error", err)
		}
	}
	return nil
}

func (s *Scheduler) notifyOverdue(now time.Time, hw *model.Homework) error {
	state, err := s.notifications.PreferenceState(hw.AssignedTo, model.NotifTypeHomeworkOverdue)
	if err != nil {
		return err
	}
	if !state.Allows() {
		return nil
	}

	recent, err := s.notifications.CreatedSince(hw.AssignedTo, model.NotifTypeHomeworkOverdue,
		hw.ID, model.RelatedKindHomework, now.Add(-overdueRenotifyAfter))
	if err != nil {
		return err
	}
	if recent {
		return nil
	}

	message := fmt.Sprintf("%q was due %s", hw.Title, hw.DueDate.Format("Jan 2"))
	n, err := s.notifications.Create(hw.AssignedTo, model.NotifTypeHomeworkOverdue,
		"Homework overdue", &message, &hw.ID, strPtr(model.RelatedKindHomework))
	if err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.NotifyUser(hw.AssignedTo, n)
	}
	s.logger.Info("overdue notice created", "homework_id", hw.ID, "user_id", hw.AssignedTo)
	return nil
}

func strPtr(s string) *string { return &s }
