package store

import (
	"database/sql"
	"fmt"
	"time"
)

// AnalyticsStore aggregates activity counts for the parent dashboard.
type AnalyticsStore struct {
	db *sql.DB
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// Summary is a snapshot of family activity since a cutoff date.
type Summary struct {
	WorshipSessionsLogged int64            `json:"worship_sessions_logged"`
	EventsCompleted       int64            `json:"events_completed"`
	EventsByType          map[string]int64 `json:"events_by_type"`
	GoalsCompleted        int64            `json:"goals_completed"`
	HomeworkStats         []HomeworkStats  `json:"homework_stats"`
}

// HomeworkStats is one child's assignment tally.
type HomeworkStats struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Assigned  int64  `json:"assigned"`
	Completed int64  `json:"completed"`
}

func (s *AnalyticsStore) Summary(since time.Time) (*Summary, error) {
	summary := &Summary{EventsByType: make(map[string]int64)}
	cutoff := since.UTC()

	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM worship_logs WHERE is_completed = 1 AND created_at >= ?",
		cutoff,
	).Scan(&summary.WorshipSessionsLogged)
	if err != nil {
		return nil, fmt.Errorf("count worship logs: %w", err)
	}

	err = s.db.QueryRow(
		"SELECT COUNT(*) FROM events WHERE is_completed = 1 AND start_date >= ?",
		cutoff,
	).Scan(&summary.EventsCompleted)
	if err != nil {
		return nil, fmt.Errorf("count completed events: %w", err)
	}

	rows, err := s.db.Query(
		"SELECT event_type, COUNT(*) FROM events WHERE start_date >= ? GROUP BY event_type",
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("count events by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var eventType string
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("scan event type count: %w", err)
		}
		summary.EventsByType[eventType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.db.QueryRow(
		"SELECT COUNT(*) FROM spiritual_goals WHERE completed = 1 AND completed_at >= ?",
		cutoff,
	).Scan(&summary.GoalsCompleted)
	if err != nil {
		return nil, fmt.Errorf("count completed goals: %w", err)
	}

	hwRows, err := s.db.Query(
		`SELECT u.id, u.username,
		        COUNT(h.id),
		        COALESCE(SUM(CASE WHEN h.completed = 1 THEN 1 ELSE 0 END), 0)
		 FROM users u
		 LEFT JOIN homework h ON h.assigned_to = u.id AND h.created_at >= ?
		 WHERE u.role = 'child'
		 GROUP BY u.id, u.username
		 ORDER BY u.username ASC`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("count homework per child: %w", err)
	}
	defer hwRows.Close()
	for hwRows.Next() {
		var st HomeworkStats
		if err := hwRows.Scan(&st.UserID, &st.Username, &st.Assigned, &st.Completed); err != nil {
			return nil, fmt.Errorf("scan homework stats: %w", err)
		}
		summary.HomeworkStats = append(summary.HomeworkStats, st)
	}
	return summary, hwRows.Err()
}
