package model

import "time"

// WorshipPlan outlines a family worship session. Link lists (videos, songs,
// activities) are stored as JSON-encoded text, matching what clients submit.
type WorshipPlan struct {
	ID           int64      `json:"id"`
	EventID      *int64     `json:"event_id"`
	Title        string     `json:"title"`
	BibleReading *string    `json:"bible_reading"`
	VideoLinks   *string    `json:"video_links"`
	SongLinks    *string    `json:"song_links"`
	Activities   *string    `json:"activities"`
	Notes        *string    `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Joined from events when listing.
	EventTitle *string    `json:"event_title,omitempty"`
	EventStart *time.Time `json:"start_date,omitempty"`
}

// WorshipTemplate is a reusable plan skeleton saved by a user.
type WorshipTemplate struct {
	ID           int64     `json:"id"`
	UserID       *int64    `json:"user_id"`
	Name         string    `json:"name"`
	BibleReading *string   `json:"bible_reading"`
	VideoLinks   *string   `json:"video_links"`
	SongLinks    *string   `json:"song_links"`
	Activities   *string   `json:"activities"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WorshipLog records what actually happened in a session. At most one log
// exists per event; completing an event upserts it.
type WorshipLog struct {
	ID             int64     `json:"id"`
	WorshipPlanID  *int64    `json:"worship_plan_id"`
	EventID        *int64    `json:"event_id"`
	Participants   *string   `json:"participants"`
	WhatWasCovered string    `json:"what_was_covered"`
	Reflections    *string   `json:"reflections"`
	Notes          *string   `json:"notes"`
	FutureThoughts *string   `json:"future_thoughts"`
	IsCompleted    bool      `json:"is_completed"`
	CreatedAt      time.Time `json:"created_at"`

	// Joined from worship_plans and events when listing.
	PlanTitle  *string `json:"plan_title,omitempty"`
	EventTitle *string `json:"event_title,omitempty"`
}
