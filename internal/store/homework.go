package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/calebwray/theotime/internal/model"
)

type HomeworkStore struct {
	db *sql.DB
}

func NewHomeworkStore(db *sql.DB) *HomeworkStore {
	return &HomeworkStore{db: db}
}

// HomeworkParams carries the writable fields of an assignment.
type HomeworkParams struct {
	AssignedTo  int64
	AssignedBy  *int64
	Title       string
	Description *string
	TaskType    string
	DueDate     *time.Time
}

func (s *HomeworkStore) Create(p HomeworkParams) (*model.Homework, error) {
	var due sql.NullTime
	if p.DueDate != nil {
		due = sql.NullTime{Time: p.DueDate.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO homework (assigned_to, assigned_by, title, description, task_type, due_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.AssignedTo, nullInt64(p.AssignedBy), p.Title, nullString(p.Description), p.TaskType, due,
	)
	if err != nil {
		return nil, fmt.Errorf("insert homework: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

const homeworkSelect = `SELECT h.id, h.assigned_to, h.assigned_by, h.title, h.description, h.task_type,
	h.due_date, h.completed, h.completed_at, h.review_notes, h.created_at, h.updated_at,
	u1.username, u2.username
	FROM homework h
	JOIN users u1 ON u1.id = h.assigned_to
	LEFT JOIN users u2 ON u2.id = h.assigned_by`

func (s *HomeworkStore) GetByID(id int64) (*model.Homework, error) {
	row := s.db.QueryRow(homeworkSelect+` WHERE h.id = ?`, id)

	h, err := scanHomework(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query homework: %w", err)
	}
	return h, nil
}

// List returns assignments, due soonest first. A non-nil viewer restricts the
// result to that user's own assignments; parents pass nil and see all.
func (s *HomeworkStore) List(viewer *int64) ([]model.Homework, error) {
	query := homeworkSelect
	var args []any
	if viewer != nil {
		query += ` WHERE h.assigned_to = ?`
		args = append(args, *viewer)
	}
	query += ` ORDER BY h.completed ASC, h.due_date ASC, h.created_at DESC`

	return s.list(query, args...)
}

// ListOverdue returns incomplete assignments whose due date has passed.
func (s *HomeworkStore) ListOverdue(now time.Time) ([]model.Homework, error) {
	return s.list(
		homeworkSelect+` WHERE h.completed = 0 AND h.due_date IS NOT NULL AND h.due_date < ?
		 ORDER BY h.due_date ASC`,
		now.UTC(),
	)
}

func (s *HomeworkStore) list(query string, args ...any) ([]model.Homework, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query homework: %w", err)
	}
	defer rows.Close()

	var items []model.Homework
	for rows.Next() {
		h, err := scanHomework(rows)
		if err != nil {
			return nil, fmt.Errorf("scan homework: %w", err)
		}
		items = append(items, *h)
	}
	return items, rows.Err()
}

func (s *HomeworkStore) Update(id int64, p HomeworkParams) (*model.Homework, error) {
	var due sql.NullTime
	if p.DueDate != nil {
		due = sql.NullTime{Time: p.DueDate.UTC(), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE homework
		 SET assigned_to = ?, title = ?, description = ?, task_type = ?, due_date = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.AssignedTo, p.Title, nullString(p.Description), p.TaskType, due, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update homework: %w", err)
	}
	return s.GetByID(id)
}

// SetCompleted toggles completion. Completing stamps completed_at; reopening
// clears it along with any review notes.
func (s *HomeworkStore) SetCompleted(id int64, completed bool) (*model.Homework, error) {
	var err error
	if completed {
		_, err = s.db.Exec(
			`UPDATE homework SET completed = 1, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`, id)
	} else {
		_, err = s.db.Exec(
			`UPDATE homework SET completed = 0, completed_at = NULL, review_notes = NULL, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`, id)
	}
	if err != nil {
		return nil, fmt.Errorf("set homework completed: %w", err)
	}
	return s.GetByID(id)
}

// SetReviewNotes records a parent's feedback on a completed assignment.
func (s *HomeworkStore) SetReviewNotes(id int64, notes *string) (*model.Homework, error) {
	_, err := s.db.Exec(
		`UPDATE homework SET review_notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nullString(notes), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set homework review notes: %w", err)
	}
	return s.GetByID(id)
}

func (s *HomeworkStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM homework WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete homework: %w", err)
	}
	return nil
}

func scanHomework(row rowScanner) (*model.Homework, error) {
	var h model.Homework
	var assignedBy sql.NullInt64
	var description, reviewNotes, assignedByName sql.NullString
	var due, completedAt sql.NullTime
	var completedInt int
	var assignedToName string

	err := row.Scan(&h.ID, &h.AssignedTo, &assignedBy, &h.Title, &description, &h.TaskType,
		&due, &completedInt, &completedAt, &reviewNotes, &h.CreatedAt, &h.UpdatedAt,
		&assignedToName, &assignedByName)
	if err != nil {
		return nil, err
	}

	if assignedBy.Valid {
		h.AssignedBy = &assignedBy.Int64
	}
	if description.Valid {
		h.Description = &description.String
	}
	if due.Valid {
		h.DueDate = &due.Time
	}
	if completedAt.Valid {
		h.CompletedAt = &completedAt.Time
	}
	if reviewNotes.Valid {
		h.ReviewNotes = &reviewNotes.String
	}
	h.Completed = completedInt != 0
	h.AssignedToUsername = &assignedToName
	if assignedByName.Valid {
		h.AssignedByUsername = &assignedByName.String
	}

	return &h, nil
}
