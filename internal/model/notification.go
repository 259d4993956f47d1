package model

import "time"

// Notification types created by the scheduler.
const (
	NotifTypeEventReminder   = "event_reminder"
	NotifTypeHomeworkOverdue = "homework_overdue"
)

// Related entity kinds referenced by notifications.
const (
	RelatedKindEvent    = "event"
	RelatedKindHomework = "homework"
)

// Notification is an in-app message for a single user. Rows are created by
// the background scheduler and only ever mutated via the read flag.
type Notification struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     *string   `json:"message"`
	RelatedID   *int64    `json:"related_id"`
	RelatedType *string   `json:"related_type"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// PrefState is the three-state result of a preference lookup: a user may have
// explicitly enabled or disabled a notification type, or never set it at all.
// Unset defaults to enabled.
type PrefState int

const (
	PrefUnset PrefState = iota
	PrefEnabled
	PrefDisabled
)

// Allows reports whether notifications should be created for this state.
func (s PrefState) Allows() bool {
	return s != PrefDisabled
}

// NotificationPreference is a per-user, per-type toggle. Absence of a row
// means the type is enabled.
type NotificationPreference struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	NotificationType string    `json:"notification_type"`
	Enabled          bool      `json:"enabled"`
	ReminderMinutes  int64     `json:"reminder_minutes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
