package model

import "time"

// Task types accepted for homework assignments.
const (
	TaskTypeReading     = "reading"
	TaskTypeWatching    = "watching"
	TaskTypeWriting     = "writing"
	TaskTypeMemoryVerse = "memory_verse"
	TaskTypeActivity    = "activity"
)

// ValidTaskType reports whether t is one of the known homework task types.
func ValidTaskType(t string) bool {
	switch t {
	case TaskTypeReading, TaskTypeWatching, TaskTypeWriting, TaskTypeMemoryVerse, TaskTypeActivity:
		return true
	}
	return false
}

type Homework struct {
	ID          int64      `json:"id"`
	AssignedTo  int64      `json:"assigned_to"`
	AssignedBy  *int64     `json:"assigned_by"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	TaskType    string     `json:"task_type"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	ReviewNotes *string    `json:"review_notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Joined from users when listing.
	AssignedToUsername *string `json:"assigned_to_username,omitempty"`
	AssignedByUsername *string `json:"assigned_by_username,omitempty"`
}
