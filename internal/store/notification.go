package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/calebwray/theotime/internal/model"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(userID int64, notifType, title string, message *string, relatedID *int64, relatedType *string) (*model.Notification, error) {
	result, err := s.db.Exec(
		`INSERT INTO notifications (user_id, type, title, message, related_id, related_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, notifType, title, nullString(message), nullInt64(relatedID), nullString(relatedType),
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *NotificationStore) GetByID(id int64) (*model.Notification, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, type, title, message, related_id, related_type, read, created_at
		 FROM notifications WHERE id = ?`,
		id,
	)

	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query notification: %w", err)
	}
	return n, nil
}

// ListByUser returns a user's notifications, newest first. limit <= 0 means
// no limit.
func (s *NotificationStore) ListByUser(userID int64, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := `SELECT id, user_id, type, title, message, related_id, related_type, read, created_at
	          FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (s *NotificationStore) UnreadCount(userID int64) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0",
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead flags one notification as read. The userID guard keeps users from
// touching each other's rows.
func (s *NotificationStore) MarkRead(id, userID int64) (bool, error) {
	result, err := s.db.Exec(
		"UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *NotificationStore) MarkAllRead(userID int64) error {
	_, err := s.db.Exec("UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0", userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (s *NotificationStore) Delete(id, userID int64) (bool, error) {
	result, err := s.db.Exec("DELETE FROM notifications WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// HasUnread reports whether an unread notification already exists for the
// given user, type, and related entity. The scheduler uses this to avoid
// stacking duplicate reminders.
func (s *NotificationStore) HasUnread(userID int64, notifType string, relatedID int64, relatedType string) (bool, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM notifications
		 WHERE user_id = ? AND type = ? AND related_id = ? AND related_type = ? AND read = 0`,
		userID, notifType, relatedID, relatedType,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check unread notification: %w", err)
	}
	return n > 0, nil
}

// CreatedSince reports whether any notification (read or not) for the given
// user, type, and related entity was created after the cutoff. Overdue
// nagging throttles itself with this.
func (s *NotificationStore) CreatedSince(userID int64, notifType string, relatedID int64, relatedType string, cutoff time.Time) (bool, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM notifications
		 WHERE user_id = ? AND type = ? AND related_id = ? AND related_type = ? AND created_at > ?`,
		userID, notifType, relatedID, relatedType, cutoff.UTC(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check recent notification: %w", err)
	}
	return n > 0, nil
}

// PurgeRead deletes read notifications older than the cutoff.
func (s *NotificationStore) PurgeRead(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(
		"DELETE FROM notifications WHERE read = 1 AND created_at < ?",
		cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// PurgeOrphaned deletes unread notifications whose related entity has been
// removed, so nobody keeps a reminder for a deleted event or assignment.
func (s *NotificationStore) PurgeOrphaned() (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM notifications
		 WHERE read = 0
		   AND ((related_type = 'event' AND related_id NOT IN (SELECT id FROM events))
		     OR (related_type = 'homework' AND related_id NOT IN (SELECT id FROM homework)))`,
	)
	if err != nil {
		return 0, fmt.Errorf("purge orphaned notifications: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func scanNotification(row rowScanner) (*model.Notification, error) {
	var n model.Notification
	var message, relatedType sql.NullString
	var relatedID sql.NullInt64
	var readInt int

	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &message, &relatedID, &relatedType, &readInt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}

	if message.Valid {
		n.Message = &message.String
	}
	if relatedID.Valid {
		n.RelatedID = &relatedID.Int64
	}
	if relatedType.Valid {
		n.RelatedType = &relatedType.String
	}
	n.Read = readInt != 0

	return &n, nil
}

// PreferenceState looks up a user's toggle for one notification type. A
// missing row is Unset, which callers treat as enabled.
func (s *NotificationStore) PreferenceState(userID int64, notifType string) (model.PrefState, error) {
	var enabledInt int
	err := s.db.QueryRow(
		"SELECT enabled FROM notification_preferences WHERE user_id = ? AND notification_type = ?",
		userID, notifType,
	).Scan(&enabledInt)
	if err == sql.ErrNoRows {
		return model.PrefUnset, nil
	}
	if err != nil {
		return model.PrefUnset, fmt.Errorf("query notification preference: %w", err)
	}
	if enabledInt != 0 {
		return model.PrefEnabled, nil
	}
	return model.PrefDisabled, nil
}

func (s *NotificationStore) SetPreference(userID int64, notifType string, enabled bool, reminderMinutes int64) (*model.NotificationPreference, error) {
	_, err := s.db.Exec(
		`INSERT INTO notification_preferences (user_id, notification_type, enabled, reminder_minutes)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, notification_type)
		 DO UPDATE SET enabled = excluded.enabled, reminder_minutes = excluded.reminder_minutes,
		               updated_at = CURRENT_TIMESTAMP`,
		userID, notifType, boolInt(enabled), reminderMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert notification preference: %w", err)
	}

	var p model.NotificationPreference
	var enabledInt int
	err = s.db.QueryRow(
		`SELECT id, user_id, notification_type, enabled, reminder_minutes, created_at, updated_at
		 FROM notification_preferences WHERE user_id = ? AND notification_type = ?`,
		userID, notifType,
	).Scan(&p.ID, &p.UserID, &p.NotificationType, &enabledInt, &p.ReminderMinutes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("query notification preference: %w", err)
	}
	p.Enabled = enabledInt != 0
	return &p, nil
}

func (s *NotificationStore) ListPreferences(userID int64) ([]model.NotificationPreference, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, notification_type, enabled, reminder_minutes, created_at, updated_at
		 FROM notification_preferences WHERE user_id = ? ORDER BY notification_type ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query notification preferences: %w", err)
	}
	defer rows.Close()

	var prefs []model.NotificationPreference
	for rows.Next() {
		var p model.NotificationPreference
		var enabledInt int
		if err := rows.Scan(&p.ID, &p.UserID, &p.NotificationType, &enabledInt, &p.ReminderMinutes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan notification preference: %w", err)
		}
		p.Enabled = enabledInt != 0
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
