package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/calebwray/theotime/internal/model"
)

type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{db: db}
}

func (s *GoalStore) Create(userID int64, title string, description *string, targetDate *time.Time) (*model.SpiritualGoal, error) {
	var target sql.NullTime
	if targetDate != nil {
		target = sql.NullTime{Time: targetDate.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO spiritual_goals (user_id, title, description, target_date)
		 VALUES (?, ?, ?, ?)`,
		userID, title, nullString(description), target,
	)
	if err != nil {
		return nil, fmt.Errorf("insert spiritual goal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *GoalStore) GetByID(id int64) (*model.SpiritualGoal, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, title, description, target_date, completed, completed_at,
		        progress_notes, created_at, updated_at
		 FROM spiritual_goals WHERE id = ?`,
		id,
	)

	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query spiritual goal: %w", err)
	}
	return g, nil
}

func (s *GoalStore) ListByUser(userID int64) ([]model.SpiritualGoal, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, description, target_date, completed, completed_at,
		        progress_notes, created_at, updated_at
		 FROM spiritual_goals WHERE user_id = ?
		 ORDER BY completed ASC, target_date ASC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query spiritual goals: %w", err)
	}
	defer rows.Close()

	var goals []model.SpiritualGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spiritual goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// ListAll returns every goal across users. Used by the data export.
func (s *GoalStore) ListAll() ([]model.SpiritualGoal, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, description, target_date, completed, completed_at,
		        progress_notes, created_at, updated_at
		 FROM spiritual_goals ORDER BY user_id ASC, created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query spiritual goals: %w", err)
	}
	defer rows.Close()

	var goals []model.SpiritualGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spiritual goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *GoalStore) Update(id int64, title string, description *string, targetDate *time.Time, progressNotes *string) (*model.SpiritualGoal, error) {
	var target sql.NullTime
	if targetDate != nil {
		target = sql.NullTime{Time: targetDate.UTC(), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE spiritual_goals
		 SET title = ?, description = ?, target_date = ?, progress_notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, nullString(description), target, nullString(progressNotes), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update spiritual goal: %w", err)
	}
	return s.GetByID(id)
}

func (s *GoalStore) SetCompleted(id int64, completed bool) (*model.SpiritualGoal, error) {
	var err error
	if completed {
		_, err = s.db.Exec(
			`UPDATE spiritual_goals SET completed = 1, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`, id)
	} else {
		_, err = s.db.Exec(
			`UPDATE spiritual_goals SET completed = 0, completed_at = NULL, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`, id)
	}
	if err != nil {
		return nil, fmt.Errorf("set spiritual goal completed: %w", err)
	}
	return s.GetByID(id)
}

func (s *GoalStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM spiritual_goals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete spiritual goal: %w", err)
	}
	return nil
}

func scanGoal(row rowScanner) (*model.SpiritualGoal, error) {
	var g model.SpiritualGoal
	var description, progressNotes sql.NullString
	var target, completedAt sql.NullTime
	var completedInt int

	err := row.Scan(&g.ID, &g.UserID, &g.Title, &description, &target, &completedInt,
		&completedAt, &progressNotes, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		g.Description = &description.String
	}
	if target.Valid {
		g.TargetDate = &target.Time
	}
	if completedAt.Valid {
		g.CompletedAt = &completedAt.Time
	}
	if progressNotes.Valid {
		g.ProgressNotes = &progressNotes.String
	}
	g.Completed = completedInt != 0

	return &g, nil
}
