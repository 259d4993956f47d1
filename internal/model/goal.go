package model

import "time"

// SpiritualGoal is a personal goal tracked per user.
type SpiritualGoal struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	TargetDate    *time.Time `json:"target_date"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at"`
	ProgressNotes *string    `json:"progress_notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
