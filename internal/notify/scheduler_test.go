package notify

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/calebwray/theotime/internal/database"
	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/store"
)

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []int64
}

func (b *recordingBroadcaster) NotifyUser(userID int64, n *model.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, userID)
}

type fixture struct {
	scheduler     *Scheduler
	events        *store.EventStore
	homework      *store.HomeworkStore
	notifications *store.NotificationStore
	users         *store.UserStore
	settings      *store.SettingStore
	broadcaster   *recordingBroadcaster
}

func setupScheduler(t *testing.T, now time.Time) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		events:        store.NewEventStore(db),
		homework:      store.NewHomeworkStore(db),
		notifications: store.NewNotificationStore(db),
		users:         store.NewUserStore(db),
		settings:      store.NewSettingStore(db),
		broadcaster:   &recordingBroadcaster{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.scheduler = NewScheduler(f.events, f.homework, f.notifications, f.settings, f.broadcaster, logger)
	f.scheduler.SetNow(func() time.Time { return now })
	return f
}

func seedUser(t *testing.T, us *store.UserStore, username, role string) *model.User {
	t.Helper()
	u, err := us.Create(username, nil, "hash", role, nil)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestReminderCreatedWithinLead(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 40, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	child := seedUser(t, f.users, "abby", model.RoleChild)

	lead := int64(30)
	_, err := f.events.Create(store.EventParams{
		UserID:          &child.ID,
		Title:           "Family Worship",
		EventType:       model.EventTypeWorship,
		StartDate:       now.Add(20 * time.Minute),
		ReminderMinutes: &lead,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	f.scheduler.RunChecks()

	got, err := f.notifications.ListByUser(child.ID, true, 0)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1", len(got))
	}
	if got[0].Type != model.NotifTypeEventReminder {
		t.Errorf("type = %q", got[0].Type)
	}
	if len(f.broadcaster.calls) != 1 || f.broadcaster.calls[0] != child.ID {
		t.Errorf("broadcast calls = %v", f.broadcaster.calls)
	}
}

func TestReminderNotCreatedOutsideLead(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 40, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	child := seedUser(t, f.users, "abby", model.RoleChild)

	lead := int64(30)
	_, err := f.events.Create(store.EventParams{
		UserID:          &child.ID,
		Title:           "Family Worship",
		EventType:       model.EventTypeWorship,
		StartDate:       now.Add(2 * time.Hour),
		ReminderMinutes: &lead,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	f.scheduler.RunChecks()

	got, _ := f.notifications.ListByUser(child.ID, false, 0)
	if len(got) != 0 {
		t.Errorf("got %d notifications, want 0", len(got))
	}
}

func TestReminderIdempotentAcrossTicks(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 40, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	child := seedUser(t, f.users, "abby", model.RoleChild)

	lead := int64(60)
	_, err := f.events.Create(store.EventParams{
		UserID:          &child.ID,
		Title:           "Family Worship",
		EventType:       model.EventTypeWorship,
		StartDate:       now.Add(20 * time.Minute),
		ReminderMinutes: &lead,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	f.scheduler.RunChecks()
	f.scheduler.RunChecks()
	f.scheduler.RunChecks()

	got, _ := f.notifications.ListByUser(child.ID, false, 0)
	if len(got) != 1 {
		t.Errorf("got %d notifications after repeated ticks, want 1", len(got))
	}
}

func TestReminderAgainAfterRead(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 40, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	child := seedUser(t, f.users, "abby", model.RoleChild)

	lead := int64(60)
	_, err := f.events.Create(store.EventParams{
		UserID:          &child.ID,
		Title:           "Family Worship",
		EventType:       model.EventTypeWorship,
		StartDate:       now.Add(20 * time.Minute),
		ReminderMinutes: &lead,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	f.scheduler.RunChecks()
	first, _ := f.notifications.ListByUser(child.ID, true, 0)
	if len(first) != 1 {
		t.Fatalf("got %d notifications, want 1", len(first))
	}
	if _, err := f.notifications.MarkRead(first[0].ID, child.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	f.scheduler.RunChecks()
	all, _ := f.notifications.ListByUser(child.ID, false, 0)
	if len(all) != 2 {
		t.Errorf("got %d notifications after read, want a fresh one (2 total)", len(all))
	}
}

func TestSharedEventGetsNoReminder(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 40, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	mom := seedUser(t, f.users, "mom", model.RoleParent)
	abby := seedUser(t, f.users, "abby", model.RoleChild)

	// No owner: the event is family-wide and has nobody to remind.
	lead := int64(60)
	_, err := f.events.Create(store.EventParams{
		Title:           "Family Worship",
		EventType:       model.EventTypeWorship,
		StartDate:       now.Add(20 * time.Minute),
		ReminderMinutes: &lead,
	})
	if err != nil {
		t.Fatalf("create shared event: %v", err)
	}

	f.scheduler.RunChecks()

	for _, u := range []*model.User{mom, abby} {
		got, _ := f.notifications.ListByUser(u.ID, false, 0)
		if len(got) != 0 {
			t.Errorf("user %s got %d notifications, want 0", u.Username, len(got))
		}
	}
	if len(f.broadcaster.calls) != 0 {
		t.Errorf("broadcast calls = %v, want none", f.broadcaster.calls)
	}
}

func TestReminderHonorsDisabledPreference(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 40, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	child := seedUser(t, f.users, "abby", model.RoleChild)

	if _, err := f.notifications.SetPreference(child.ID, model.NotifTypeEventReminder, false, 60); err != nil {
		t.Fatalf("disable preference: %v", err)
	}

	lead := int64(60)
	_, err := f.events.Create(store.EventParams{
		UserID:          &child.ID,
		Title:           "Family Worship",
		EventType:       model.EventTypeWorship,
		StartDate:       now.Add(20 * time.Minute),
		ReminderMinutes: &lead,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	f.scheduler.RunChecks()

	got, _ := f.notifications.ListByUser(child.ID, false, 0)
	if len(got) != 0 {
		t.Errorf("disabled preference still produced %d notifications", len(got))
	}
}

func TestEventWithoutLeadGetsNoReminder(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 40, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	child := seedUser(t, f.users, "abby", model.RoleChild)

	// No reminder_minutes on the event means the owner opted out of
	// reminders for it, even when it starts soon.
	_, err := f.events.Create(store.EventParams{
		UserID:    &child.ID,
		Title:     "Family Worship",
		EventType: model.EventTypeWorship,
		StartDate: now.Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	f.scheduler.RunChecks()

	got, _ := f.notifications.ListByUser(child.ID, false, 0)
	if len(got) != 0 {
		t.Errorf("got %d notifications for event with no reminder lead, want 0", len(got))
	}
}

func TestEventWithoutLeadIgnoresPreferenceLead(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 40, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	child := seedUser(t, f.users, "abby", model.RoleChild)

	// A preference lead configures nothing by itself; the event must carry
	// its own reminder_minutes to be scanned at all.
	if _, err := f.notifications.SetPreference(child.ID, model.NotifTypeEventReminder, true, 120); err != nil {
		t.Fatalf("set preference: %v", err)
	}

	_, err := f.events.Create(store.EventParams{
		UserID:    &child.ID,
		Title:     "Family Worship",
		EventType: model.EventTypeWorship,
		StartDate: now.Add(90 * time.Minute),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	f.scheduler.RunChecks()

	got, _ := f.notifications.ListByUser(child.ID, false, 0)
	if len(got) != 0 {
		t.Errorf("got %d notifications, want 0 (preference lead alone schedules nothing)", len(got))
	}
}

func TestOverdueHomeworkNotice(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	child := seedUser(t, f.users, "abby", model.RoleChild)

	due := now.Add(-48 * time.Hour)
	_, err := f.homework.Create(store.HomeworkParams{
		AssignedTo: child.ID,
		Title:      "Read the Prodigal Son",
		TaskType:   model.TaskTypeReading,
		DueDate:    &due,
	})
	if err != nil {
		t.Fatalf("create homework: %v", err)
	}

	f.scheduler.RunChecks()

	got, _ := f.notifications.ListByUser(child.ID, false, 0)
	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1", len(got))
	}
	if got[0].Type != model.NotifTypeHomeworkOverdue {
		t.Errorf("type = %q", got[0].Type)
	}

	// A second pass inside the throttle window stays quiet, even after read.
	if _, err := f.notifications.MarkRead(got[0].ID, child.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	f.scheduler.RunChecks()
	all, _ := f.notifications.ListByUser(child.ID, false, 0)
	if len(all) != 1 {
		t.Errorf("got %d notifications after rescan, want 1", len(all))
	}
}

func TestOverdueSkippedWhenHomeworkDisabled(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	child := seedUser(t, f.users, "abby", model.RoleChild)

	off := "false"
	if _, err := f.settings.Set(model.SettingHomeworkEnabled, &off, nil); err != nil {
		t.Fatalf("disable homework: %v", err)
	}

	due := now.Add(-48 * time.Hour)
	if _, err := f.homework.Create(store.HomeworkParams{
		AssignedTo: child.ID,
		Title:      "task",
		TaskType:   model.TaskTypeReading,
		DueDate:    &due,
	}); err != nil {
		t.Fatalf("create homework: %v", err)
	}

	f.scheduler.RunChecks()

	got, _ := f.notifications.ListByUser(child.ID, false, 0)
	if len(got) != 0 {
		t.Errorf("homework disabled but got %d notifications", len(got))
	}
}

func TestStartStop(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 40, 0, 0, time.UTC)
	f := setupScheduler(t, now)

	ctx := t.Context()
	f.scheduler.Start(ctx)
	f.scheduler.Stop()
}
