package store

import (
	"database/sql"
	"fmt"

	"github.com/calebwray/theotime/internal/model"
)

// SearchStore runs title/description substring searches across the main
// content tables.
type SearchStore struct {
	db *sql.DB
}

func NewSearchStore(db *sql.DB) *SearchStore {
	return &SearchStore{db: db}
}

// SearchResults groups matches by entity.
type SearchResults struct {
	Events       []model.Event         `json:"events"`
	WorshipPlans []model.WorshipPlan   `json:"worship_plans"`
	Homework     []model.Homework      `json:"homework"`
	Goals        []model.SpiritualGoal `json:"goals"`
}

// Search finds records whose title or description contains the query. A
// non-nil viewer scopes events, homework, and goals to that user; worship
// plans are family-wide and always searched.
func (s *SearchStore) Search(query string, viewer *int64) (*SearchResults, error) {
	pattern := "%" + query + "%"
	results := &SearchResults{}

	var err error
	if results.Events, err = s.searchEvents(pattern, viewer); err != nil {
		return nil, err
	}
	if results.WorshipPlans, err = s.searchPlans(pattern); err != nil {
		return nil, err
	}
	if results.Homework, err = s.searchHomework(pattern, viewer); err != nil {
		return nil, err
	}
	if results.Goals, err = s.searchGoals(pattern, viewer); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *SearchStore) searchEvents(pattern string, viewer *int64) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
	          WHERE (title LIKE ? OR description LIKE ?)`
	args := []any{pattern, pattern}
	if viewer != nil {
		query += ` AND (user_id IS NULL OR user_id = ?)`
		args = append(args, *viewer)
	}
	query += ` ORDER BY start_date DESC LIMIT 50`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
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

func (s *SearchStore) searchPlans(pattern string) ([]model.WorshipPlan, error) {
	rows, err := s.db.Query(
		`SELECT p.id, p.event_id, p.title, p.bible_reading, p.video_links, p.song_links,
		        p.activities, p.notes, p.created_at, p.updated_at, e.title, e.start_date
		 FROM worship_plans p
		 LEFT JOIN events e ON e.id = p.event_id
		 WHERE p.title LIKE ? OR p.bible_reading LIKE ? OR p.notes LIKE ?
		 ORDER BY p.created_at DESC LIMIT 50`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search worship plans: %w", err)
	}
	defer rows.Close()

	var plans []model.WorshipPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worship plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (s *SearchStore) searchHomework(pattern string, viewer *int64) ([]model.Homework, error) {
	query := homeworkSelect + ` WHERE (h.title LIKE ? OR h.description LIKE ?)`
	args := []any{pattern, pattern}
	if viewer != nil {
		query += ` AND h.assigned_to = ?`
		args = append(args, *viewer)
	}
	query += ` ORDER BY h.created_at DESC LIMIT 50`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search homework: %w", err)
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

func (s *SearchStore) searchGoals(pattern string, viewer *int64) ([]model.SpiritualGoal, error) {
	query := `SELECT id, user_id, title, description, target_date, completed, completed_at,
	                 progress_notes, created_at, updated_at
	          FROM spiritual_goals WHERE (title LIKE ? OR description LIKE ?)`
	args := []any{pattern, pattern}
	if viewer != nil {
		query += ` AND user_id = ?`
		args = append(args, *viewer)
	}
	query += ` ORDER BY created_at DESC LIMIT 50`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search goals: %w", err)
	}
	defer rows.Close()

	var goals []model.SpiritualGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}
