package model

import "time"

// Event types accepted by the API.
const (
	EventTypeWorship       = "worship"
	EventTypePersonalStudy = "personal_study"
	EventTypeMeeting       = "meeting"
	EventTypeMinistry      = "ministry"
	EventTypeOther         = "other"
)

// ValidEventType reports whether t is one of the known event types.
func ValidEventType(t string) bool {
	switch t {
	case EventTypeWorship, EventTypePersonalStudy, EventTypeMeeting, EventTypeMinistry, EventTypeOther:
		return true
	}
	return false
}

// Event is a single calendar entry. A nil UserID means the event is shared
// with the whole family. Recurring events are expanded into independent rows
// at creation time; instances carry no series identifier.
type Event struct {
	ID                int64      `json:"id"`
	UserID            *int64     `json:"user_id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description"`
	EventType         string     `json:"event_type"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrencePattern *string    `json:"recurrence_pattern"`
	Color             *string    `json:"color"`
	ReminderMinutes   *int64     `json:"reminder_minutes"`
	IsCompleted       bool       `json:"is_completed"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
