package store

import (
	"testing"
	"time"

	"github.com/calebwray/theotime/internal/model"
)

func TestEventCreateAndGet(t *testing.T) {
	db := testDB(t)
	es := NewEventStore(db)
	child := seedUser(t, db, "abby", model.RoleChild)

	start := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	e, err := es.Create(EventParams{
		UserID:          &child.ID,
		Title:           "Family Worship",
		Description:     strPtr("Paradise chapter 3"),
		EventType:       model.EventTypeWorship,
		StartDate:       start,
		EndDate:         &end,
		ReminderMinutes: i64Ptr(30),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if e.Title != "Family Worship" || e.EventType != model.EventTypeWorship {
		t.Errorf("event = %+v", e)
	}
	if e.UserID == nil || *e.UserID != child.ID {
		t.Errorf("user_id = %v, want %d", e.UserID, child.ID)
	}
	if !e.StartDate.Equal(start) {
		t.Errorf("start = %v, want %v", e.StartDate, start)
	}
	if e.EndDate == nil || !e.EndDate.Equal(end) {
		t.Errorf("end = %v, want %v", e.EndDate, end)
	}
	if e.IsCompleted {
		t.Error("new event should not be completed")
	}

	missing, err := es.GetByID(9999)
	if err != nil {
		t.Fatalf("get missing event: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing event, got %+v", missing)
	}
}

func TestEventListBetweenViewerScoping(t *testing.T) {
	db := testDB(t)
	es := NewEventStore(db)
	abby := seedUser(t, db, "abby", model.RoleChild)
	ben := seedUser(t, db, "ben", model.RoleChild)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mustCreate := func(owner *int64, title string, offset time.Duration) {
		t.Helper()
		_, err := es.Create(EventParams{
			UserID:    owner,
			Title:     title,
			EventType: model.EventTypeOther,
			StartDate: base.Add(offset),
		})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	mustCreate(nil, "shared", time.Hour)
	mustCreate(&abby.ID, "abby's", 2*time.Hour)
	mustCreate(&ben.ID, "ben's", 3*time.Hour)
	mustCreate(nil, "outside range", 40*24*time.Hour)

	// Parent view: everything in range.
	all, err := es.ListBetween(base, base.AddDate(0, 1, 0), nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("parent sees %d events, want 3", len(all))
	}

	// Child view: own plus shared, other children's rows silently dropped.
	mine, err := es.ListBetween(base, base.AddDate(0, 1, 0), &abby.ID)
	if err != nil {
		t.Fatalf("list for child: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("child sees %d events, want 2", len(mine))
	}
	if mine[0].Title != "shared" || mine[1].Title != "abby's" {
		t.Errorf("child sees %q, %q", mine[0].Title, mine[1].Title)
	}
}

func TestEventSetCompleted(t *testing.T) {
	db := testDB(t)
	es := NewEventStore(db)

	e, err := es.Create(EventParams{
		Title:     "Meeting",
		EventType: model.EventTypeMeeting,
		StartDate: time.Date(2026, 3, 5, 19, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := es.SetCompleted(e.ID, true); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	got, _ := es.GetByID(e.ID)
	if !got.IsCompleted {
		t.Error("event should be completed")
	}
}

func TestEventListReminderCandidates(t *testing.T) {
	db := testDB(t)
	es := NewEventStore(db)

	owner := seedUser(t, db, "abby", model.RoleChild)
	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	lead := int64(30)
	mustCreate := func(title string, p EventParams, completed bool) *model.Event {
		t.Helper()
		p.Title = title
		p.EventType = model.EventTypeWorship
		e, err := es.Create(p)
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		if completed {
			if err := es.SetCompleted(e.ID, true); err != nil {
				t.Fatalf("complete %s: %v", title, err)
			}
		}
		return e
	}

	mustCreate("soon", EventParams{UserID: &owner.ID, StartDate: now.Add(30 * time.Minute), ReminderMinutes: &lead}, false)
	mustCreate("done", EventParams{UserID: &owner.ID, StartDate: now.Add(30 * time.Minute), ReminderMinutes: &lead}, true)
	mustCreate("past", EventParams{UserID: &owner.ID, StartDate: now.Add(-time.Hour), ReminderMinutes: &lead}, false)
	mustCreate("far", EventParams{UserID: &owner.ID, StartDate: now.Add(48 * time.Hour), ReminderMinutes: &lead}, false)
	mustCreate("shared", EventParams{StartDate: now.Add(30 * time.Minute), ReminderMinutes: &lead}, false)
	mustCreate("no-lead", EventParams{UserID: &owner.ID, StartDate: now.Add(30 * time.Minute)}, false)

	candidates, err := es.ListReminderCandidates(now, 24*time.Hour)
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].Title != "soon" {
		t.Errorf("candidate = %q, want soon", candidates[0].Title)
	}
}
