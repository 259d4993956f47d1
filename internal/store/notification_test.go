package store

import (
	"testing"
	"time"

	"github.com/calebwray/theotime/internal/model"
)

func TestNotificationLifecycle(t *testing.T) {
	db := testDB(t)
	ns := NewNotificationStore(db)
	user := seedUser(t, db, "abby", model.RoleChild)

	n, err := ns.Create(user.ID, model.NotifTypeEventReminder, "Reminder: Family Worship",
		strPtr("Starts in 30 minutes"), i64Ptr(42), strPtr(model.RelatedKindEvent))
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if n.Read {
		t.Error("new notification should be unread")
	}

	count, err := ns.UnreadCount(user.ID)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Errorf("unread count = %d, want 1", count)
	}

	ok, err := ns.MarkRead(n.ID, user.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !ok {
		t.Error("mark read should affect the row")
	}

	count, _ = ns.UnreadCount(user.ID)
	if count != 0 {
		t.Errorf("unread count after read = %d, want 0", count)
	}
}

func TestNotificationMarkReadWrongUser(t *testing.T) {
	db := testDB(t)
	ns := NewNotificationStore(db)
	abby := seedUser(t, db, "abby", model.RoleChild)
	ben := seedUser(t, db, "ben", model.RoleChild)

	n, err := ns.Create(abby.ID, model.NotifTypeEventReminder, "Reminder", nil, nil, nil)
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}

	ok, err := ns.MarkRead(n.ID, ben.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if ok {
		t.Error("another user's mark read should not affect the row")
	}
}

func TestNotificationHasUnread(t *testing.T) {
	db := testDB(t)
	ns := NewNotificationStore(db)
	user := seedUser(t, db, "abby", model.RoleChild)

	has, err := ns.HasUnread(user.ID, model.NotifTypeEventReminder, 7, model.RelatedKindEvent)
	if err != nil {
		t.Fatalf("has unread: %v", err)
	}
	if has {
		t.Error("no notification yet, should be false")
	}

	n, err := ns.Create(user.ID, model.NotifTypeEventReminder, "Reminder", nil, i64Ptr(7), strPtr(model.RelatedKindEvent))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	has, _ = ns.HasUnread(user.ID, model.NotifTypeEventReminder, 7, model.RelatedKindEvent)
	if !has {
		t.Error("unread duplicate should be detected")
	}

	// A different event id does not suppress.
	has, _ = ns.HasUnread(user.ID, model.NotifTypeEventReminder, 8, model.RelatedKindEvent)
	if has {
		t.Error("different related id should not match")
	}

	// Once read, the slot is free again.
	if _, err := ns.MarkRead(n.ID, user.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	has, _ = ns.HasUnread(user.ID, model.NotifTypeEventReminder, 7, model.RelatedKindEvent)
	if has {
		t.Error("read notification should not suppress a new one")
	}
}

func TestNotificationCreatedSince(t *testing.T) {
	db := testDB(t)
	ns := NewNotificationStore(db)
	user := seedUser(t, db, "abby", model.RoleChild)

	if _, err := ns.Create(user.ID, model.NotifTypeHomeworkOverdue, "Overdue", nil, i64Ptr(3), strPtr(model.RelatedKindHomework)); err != nil {
		t.Fatalf("create: %v", err)
	}

	recent, err := ns.CreatedSince(user.ID, model.NotifTypeHomeworkOverdue, 3, model.RelatedKindHomework, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("created since: %v", err)
	}
	if !recent {
		t.Error("notification created just now should count as recent")
	}

	old, err := ns.CreatedSince(user.ID, model.NotifTypeHomeworkOverdue, 3, model.RelatedKindHomework, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("created since future cutoff: %v", err)
	}
	if old {
		t.Error("future cutoff should match nothing")
	}
}

func TestPreferenceStateThreeStates(t *testing.T) {
	db := testDB(t)
	ns := NewNotificationStore(db)
	user := seedUser(t, db, "abby", model.RoleChild)

	state, err := ns.PreferenceState(user.ID, model.NotifTypeEventReminder)
	if err != nil {
		t.Fatalf("preference state: %v", err)
	}
	if state != model.PrefUnset {
		t.Errorf("state = %v, want unset", state)
	}
	if !state.Allows() {
		t.Error("unset preference should allow notifications")
	}

	if _, err := ns.SetPreference(user.ID, model.NotifTypeEventReminder, false, 60); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	state, _ = ns.PreferenceState(user.ID, model.NotifTypeEventReminder)
	if state != model.PrefDisabled || state.Allows() {
		t.Errorf("state = %v, want disabled", state)
	}

	if _, err := ns.SetPreference(user.ID, model.NotifTypeEventReminder, true, 90); err != nil {
		t.Fatalf("re-enable preference: %v", err)
	}
	state, _ = ns.PreferenceState(user.ID, model.NotifTypeEventReminder)
	if state != model.PrefEnabled {
		t.Errorf("state = %v, want enabled", state)
	}
}

func TestPurgeRead(t *testing.T) {
	db := testDB(t)
	ns := NewNotificationStore(db)
	user := seedUser(t, db, "abby", model.RoleChild)

	n, err := ns.Create(user.ID, model.NotifTypeEventReminder, "old", nil, nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ns.Create(user.ID, model.NotifTypeEventReminder, "unread", nil, nil, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ns.MarkRead(n.ID, user.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	purged, err := ns.PurgeRead(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	remaining, err := ns.ListByUser(user.ID, false, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Title != "unread" {
		t.Errorf("remaining = %+v, want only the unread row", remaining)
	}
}

func TestPurgeOrphaned(t *testing.T) {
	db := testDB(t)
	ns := NewNotificationStore(db)
	es := NewEventStore(db)
	user := seedUser(t, db, "abby", model.RoleChild)

	event, err := es.Create(EventParams{
		UserID:    &user.ID,
		Title:     "Family Worship",
		EventType: model.EventTypeWorship,
		StartDate: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if _, err := ns.Create(user.ID, model.NotifTypeEventReminder, "live",
		nil, &event.ID, strPtr(model.RelatedKindEvent)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ns.Create(user.ID, model.NotifTypeEventReminder, "orphan",
		nil, i64Ptr(event.ID+999), strPtr(model.RelatedKindEvent)); err != nil {
		t.Fatalf("create: %v", err)
	}

	purged, err := ns.PurgeOrphaned()
	if err != nil {
		t.Fatalf("purge orphaned: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	remaining, err := ns.ListByUser(user.ID, false, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Title != "live" {
		t.Errorf("remaining = %+v, want only the live row", remaining)
	}
}
