package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/calebwray/theotime/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// EventParams carries the writable fields of an event. Recurring definitions
// are expanded before they reach the store; every row here is one occurrence.
type EventParams struct {
	UserID            *int64
	Title             string
	Description       *string
	EventType         string
	StartDate         time.Time
	EndDate           *time.Time
	IsRecurring       bool
	RecurrencePattern *string
	Color             *string
	ReminderMinutes   *int64
}

func (s *EventStore) Create(p EventParams) (*model.Event, error) {
	var end sql.NullTime
	if p.EndDate != nil {
		end = sql.NullTime{Time: p.EndDate.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO events (user_id, title, description, event_type, start_date, end_date,
		                     is_recurring, recurrence_pattern, color, reminder_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(p.UserID), p.Title, nullString(p.Description), p.EventType,
		p.StartDate.UTC(), end, boolInt(p.IsRecurring), nullString(p.RecurrencePattern),
		nullString(p.Color), nullInt64(p.ReminderMinutes),
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

const eventColumns = `id, user_id, title, description, event_type, start_date, end_date,
	is_recurring, recurrence_pattern, color, reminder_minutes, is_completed, created_at, updated_at`

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return e, nil
}

// ListBetween returns events whose start falls inside [start, end). A non-nil
// viewer restricts the result to that user's own events plus shared ones;
// parents pass nil and see everything.
func (s *EventStore) ListBetween(start, end time.Time, viewer *int64) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE start_date >= ? AND start_date < ?`
	args := []any{start.UTC(), end.UTC()}
	if viewer != nil {
		query += ` AND (user_id IS NULL OR user_id = ?)`
		args = append(args, *viewer)
	}
	query += ` ORDER BY start_date ASC`

	return s.list(query, args...)
}

// ListByType returns all events of one type, newest first, with the same
// viewer filtering as ListBetween.
func (s *EventStore) ListByType(eventType string, viewer *int64) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_type = ?`
	args := []any{eventType}
	if viewer != nil {
		query += ` AND (user_id IS NULL OR user_id = ?)`
		args = append(args, *viewer)
	}
	query += ` ORDER BY start_date DESC`

	return s.list(query, args...)
}

// ListAll returns every event, ordered by start. Used by the data export.
func (s *EventStore) ListAll() ([]model.Event, error) {
	return s.list(`SELECT ` + eventColumns + ` FROM events ORDER BY start_date ASC`)
}

func (s *EventStore) list(query string, args ...any) ([]model.Event, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) Update(id int64, p EventParams) (*model.Event, error) {
	var end sql.NullTime
	if p.EndDate != nil {
		end = sql.NullTime{Time: p.EndDate.UTC(), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE events
		 SET user_id = ?, title = ?, description = ?, event_type = ?, start_date = ?, end_date = ?,
		     is_recurring = ?, recurrence_pattern = ?, color = ?, reminder_minutes = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullInt64(p.UserID), p.Title, nullString(p.Description), p.EventType,
		p.StartDate.UTC(), end, boolInt(p.IsRecurring), nullString(p.RecurrencePattern),
		nullString(p.Color), nullInt64(p.ReminderMinutes), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) SetCompleted(id int64, completed bool) error {
	_, err := s.db.Exec(
		`UPDATE events SET is_completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		boolInt(completed), id,
	)
	if err != nil {
		return fmt.Errorf("set event completed: %w", err)
	}
	return nil
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListReminderCandidates returns incomplete events starting within the
// horizon after now. Only events with an owner and an explicit reminder lead
// qualify; the scheduler narrows the window further using each event's lead.
func (s *EventStore) ListReminderCandidates(now time.Time, horizon time.Duration) ([]model.Event, error) {
	return s.list(
		`SELECT `+eventColumns+` FROM events
		 WHERE is_completed = 0
		   AND user_id IS NOT NULL
		   AND reminder_minutes IS NOT NULL
		   AND start_date > ? AND start_date <= ?
		 ORDER BY start_date ASC`,
		now.UTC(), now.Add(horizon).UTC(),
	)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	var userID, reminder sql.NullInt64
	var description, pattern, color sql.NullString
	var end sql.NullTime
	var recurringInt, completedInt int

	err := row.Scan(&e.ID, &userID, &e.Title, &description, &e.EventType, &e.StartDate, &end,
		&recurringInt, &pattern, &color, &reminder, &completedInt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		e.UserID = &userID.Int64
	}
	if description.Valid {
		e.Description = &description.String
	}
	if end.Valid {
		e.EndDate = &end.Time
	}
	if pattern.Valid {
		e.RecurrencePattern = &pattern.String
	}
	if color.Valid {
		e.Color = &color.String
	}
	if reminder.Valid {
		e.ReminderMinutes = &reminder.Int64
	}
	e.IsRecurring = recurringInt != 0
	e.IsCompleted = completedInt != 0

	return &e, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
