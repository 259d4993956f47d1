package store

import (
	"database/sql"
	"fmt"

	"github.com/calebwray/theotime/internal/model"
)

type WorshipStore struct {
	db *sql.DB
}

func NewWorshipStore(db *sql.DB) *WorshipStore {
	return &WorshipStore{db: db}
}

// PlanParams carries the writable fields of a worship plan. Link lists arrive
// as JSON-encoded text and are stored verbatim.
type PlanParams struct {
	EventID      *int64
	Title        string
	BibleReading *string
	VideoLinks   *string
	SongLinks    *string
	Activities   *string
	Notes        *string
}

func (s *WorshipStore) CreatePlan(p PlanParams) (*model.WorshipPlan, error) {
	result, err := s.db.Exec(
		`INSERT INTO worship_plans (event_id, title, bible_reading, video_links, song_links, activities, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(p.EventID), p.Title, nullString(p.BibleReading), nullString(p.VideoLinks),
		nullString(p.SongLinks), nullString(p.Activities), nullString(p.Notes),
	)
	if err != nil {
		return nil, fmt.Errorf("insert worship plan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetPlan(id)
}

func (s *WorshipStore) GetPlan(id int64) (*model.WorshipPlan, error) {
	row := s.db.QueryRow(
		`SELECT p.id, p.event_id, p.title, p.bible_reading, p.video_links, p.song_links,
		        p.activities, p.notes, p.created_at, p.updated_at, e.title, e.start_date
		 FROM worship_plans p
		 LEFT JOIN events e ON e.id = p.event_id
		 WHERE p.id = ?`,
		id,
	)

	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query worship plan: %w", err)
	}
	return plan, nil
}

func (s *WorshipStore) ListPlans() ([]model.WorshipPlan, error) {
	rows, err := s.db.Query(
		`SELECT p.id, p.event_id, p.title, p.bible_reading, p.video_links, p.song_links,
		        p.activities, p.notes, p.created_at, p.updated_at, e.title, e.start_date
		 FROM worship_plans p
		 LEFT JOIN events e ON e.id = p.event_id
		 ORDER BY e.start_date DESC, p.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query worship plans: %w", err)
	}
	defer rows.Close()

	var plans []model.WorshipPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worship plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

func (s *WorshipStore) UpdatePlan(id int64, p PlanParams) (*model.WorshipPlan, error) {
	_, err := s.db.Exec(
		`UPDATE worship_plans
		 SET event_id = ?, title = ?, bible_reading = ?, video_links = ?, song_links = ?,
		     activities = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullInt64(p.EventID), p.Title, nullString(p.BibleReading), nullString(p.VideoLinks),
		nullString(p.SongLinks), nullString(p.Activities), nullString(p.Notes), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update worship plan: %w", err)
	}
	return s.GetPlan(id)
}

func (s *WorshipStore) DeletePlan(id int64) error {
	_, err := s.db.Exec("DELETE FROM worship_plans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete worship plan: %w", err)
	}
	return nil
}

func scanPlan(row rowScanner) (*model.WorshipPlan, error) {
	var p model.WorshipPlan
	var eventID sql.NullInt64
	var reading, videos, songs, activities, notes, eventTitle sql.NullString
	var eventStart sql.NullTime

	err := row.Scan(&p.ID, &eventID, &p.Title, &reading, &videos, &songs,
		&activities, &notes, &p.CreatedAt, &p.UpdatedAt, &eventTitle, &eventStart)
	if err != nil {
		return nil, err
	}

	if eventID.Valid {
		p.EventID = &eventID.Int64
	}
	if reading.Valid {
		p.BibleReading = &reading.String
	}
	if videos.Valid {
		p.VideoLinks = &videos.String
	}
	if songs.Valid {
		p.SongLinks = &songs.String
	}
	if activities.Valid {
		p.Activities = &activities.String
	}
	if notes.Valid {
		p.Notes = &notes.String
	}
	if eventTitle.Valid {
		p.EventTitle = &eventTitle.String
	}
	if eventStart.Valid {
		p.EventStart = &eventStart.Time
	}
	return &p, nil
}

// TemplateParams carries the writable fields of a worship template.
type TemplateParams struct {
	UserID       *int64
	Name         string
	BibleReading *string
	VideoLinks   *string
	SongLinks    *string
	Activities   *string
}

func (s *WorshipStore) CreateTemplate(p TemplateParams) (*model.WorshipTemplate, error) {
	result, err := s.db.Exec(
		`INSERT INTO worship_templates (user_id, name, bible_reading, video_links, song_links, activities)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullInt64(p.UserID), p.Name, nullString(p.BibleReading), nullString(p.VideoLinks),
		nullString(p.SongLinks), nullString(p.Activities),
	)
	if err != nil {
		return nil, fmt.Errorf("insert worship template: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetTemplate(id)
}

func (s *WorshipStore) GetTemplate(id int64) (*model.WorshipTemplate, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, name, bible_reading, video_links, song_links, activities, created_at, updated_at
		 FROM worship_templates WHERE id = ?`,
		id,
	)

	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query worship template: %w", err)
	}
	return t, nil
}

func (s *WorshipStore) ListTemplates() ([]model.WorshipTemplate, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, name, bible_reading, video_links, song_links, activities, created_at, updated_at
		 FROM worship_templates ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query worship templates: %w", err)
	}
	defer rows.Close()

	var templates []model.WorshipTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worship template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *WorshipStore) DeleteTemplate(id int64) error {
	_, err := s.db.Exec("DELETE FROM worship_templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete worship template: %w", err)
	}
	return nil
}

func scanTemplate(row rowScanner) (*model.WorshipTemplate, error) {
	var t model.WorshipTemplate
	var userID sql.NullInt64
	var reading, videos, songs, activities sql.NullString

	err := row.Scan(&t.ID, &userID, &t.Name, &reading, &videos, &songs, &activities, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		t.UserID = &userID.Int64
	}
	if reading.Valid {
		t.BibleReading = &reading.String
	}
	if videos.Valid {
		t.VideoLinks = &videos.String
	}
	if songs.Valid {
		t.SongLinks = &songs.String
	}
	if activities.Valid {
		t.Activities = &activities.String
	}
	return &t, nil
}

// LogParams carries the writable fields of a worship log entry.
type LogParams struct {
	WorshipPlanID  *int64
	EventID        *int64
	Participants   *string
	WhatWasCovered string
	Reflections    *string
	Notes          *string
	FutureThoughts *string
}

func (s *WorshipStore) CreateLog(p LogParams) (*model.WorshipLog, error) {
	result, err := s.db.Exec(
		`INSERT INTO worship_logs (worship_plan_id, event_id, participants, what_was_covered,
		                           reflections, notes, future_thoughts, is_completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
		nullInt64(p.WorshipPlanID), nullInt64(p.EventID), nullString(p.Participants),
		p.WhatWasCovered, nullString(p.Reflections), nullString(p.Notes), nullString(p.FutureThoughts),
	)
	if err != nil {
		return nil, fmt.Errorf("insert worship log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetLog(id)
}

func (s *WorshipStore) GetLog(id int64) (*model.WorshipLog, error) {
	row := s.db.QueryRow(logSelect+` WHERE l.id = ?`, id)

	l, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query worship log: %w", err)
	}
	return l, nil
}

// GetLogByEventID returns the log recorded for an event, or nil when the
// event has never been completed.
func (s *WorshipStore) GetLogByEventID(eventID int64) (*model.WorshipLog, error) {
	row := s.db.QueryRow(logSelect+` WHERE l.event_id = ?`, eventID)

	l, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query worship log by event: %w", err)
	}
	return l, nil
}

func (s *WorshipStore) ListLogs() ([]model.WorshipLog, error) {
	rows, err := s.db.Query(logSelect + ` ORDER BY l.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query worship logs: %w", err)
	}
	defer rows.Close()

	var logs []model.WorshipLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worship log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (s *WorshipStore) DeleteLog(id int64) error {
	_, err := s.db.Exec("DELETE FROM worship_logs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete worship log: %w", err)
	}
	return nil
}

const logSelect = `SELECT l.id, l.worship_plan_id, l.event_id, l.participants, l.what_was_covered,
	l.reflections, l.notes, l.future_thoughts, l.is_completed, l.created_at, p.title, e.title
	FROM worship_logs l
	LEFT JOIN worship_plans p ON p.id = l.worship_plan_id
	LEFT JOIN events e ON e.id = l.event_id`

func scanLog(row rowScanner) (*model.WorshipLog, error) {
	var l model.WorshipLog
	var planID, eventID sql.NullInt64
	var participants, reflections, notes, future, planTitle, eventTitle sql.NullString
	var completedInt int

	err := row.Scan(&l.ID, &planID, &eventID, &participants, &l.WhatWasCovered,
		&reflections, &notes, &future, &completedInt, &l.CreatedAt, &planTitle, &eventTitle)
	if err != nil {
		return nil, err
	}

	if planID.Valid {
		l.WorshipPlanID = &planID.Int64
	}
	if eventID.Valid {
		l.EventID = &eventID.Int64
	}
	if participants.Valid {
		l.Participants = &participants.String
	}
	if reflections.Valid {
		l.Reflections = &reflections.String
	}
	if notes.Valid {
		l.Notes = &notes.String
	}
	if future.Valid {
		l.FutureThoughts = &future.String
	}
	if planTitle.Valid {
		l.PlanTitle = &planTitle.String
	}
	if eventTitle.Valid {
		l.EventTitle = &eventTitle.String
	}
	l.IsCompleted = completedInt != 0

	return &l, nil
}

// CompleteEvent records a worship session against an event in one
// transaction: the event is flagged completed and its log is upserted, so
// repeating the call updates the existing log instead of adding another.
func (s *WorshipStore) CompleteEvent(eventID int64, p LogParams) (*model.WorshipLog, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin complete event: %w", err)
	}
	defer tx.Rollback()

	// An explicit plan id wins; otherwise adopt the plan already linked to
	// this event, if there is one.
	if p.WorshipPlanID == nil {
		var planID int64
		err := tx.QueryRow("SELECT id FROM worship_plans WHERE event_id = ? LIMIT 1", eventID).Scan(&planID)
		switch {
		case err == sql.ErrNoRows:
			// no linked plan
		case err != nil:
			return nil, fmt.Errorf("resolve linked plan: %w", err)
		default:
			p.WorshipPlanID = &planID
		}
	}

	var logID int64
	err = tx.QueryRow("SELECT id FROM worship_logs WHERE event_id = ?", eventID).Scan(&logID)
	switch {
	case err == sql.ErrNoRows:
		result, err := tx.Exec(
			`INSERT INTO worship_logs (worship_plan_id, event_id, participants, what_was_covered,
			                           reflections, notes, future_thoughts, is_completed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
			nullInt64(p.WorshipPlanID), eventID, nullString(p.Participants),
			p.WhatWasCovered, nullString(p.Reflections), nullString(p.Notes), nullString(p.FutureThoughts),
		)
		if err != nil {
			return nil, fmt.Errorf("insert worship log: %w", err)
		}
		logID, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("query existing worship log: %w", err)
	default:
		_, err = tx.Exec(
			`UPDATE worship_logs
			 SET worship_plan_id = ?, participants = ?, what_was_covered = ?, reflections = ?,
			     notes = ?, future_thoughts = ?, is_completed = 1
			 WHERE id = ?`,
			nullInt64(p.WorshipPlanID), nullString(p.Participants), p.WhatWasCovered,
			nullString(p.Reflections), nullString(p.Notes), nullString(p.FutureThoughts), logID,
		)
		if err != nil {
			return nil, fmt.Errorf("update worship log: %w", err)
		}
	}

	if _, err := tx.Exec(
		`UPDATE events SET is_completed = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		eventID,
	); err != nil {
		return nil, fmt.Errorf("mark event completed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit complete event: %w", err)
	}

	return s.GetLog(logID)
}
