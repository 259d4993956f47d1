package model

import "time"

// ChildProfile stores per-child personalization used by worship planning and
// AI suggestions. One profile per user.
type ChildProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Age                *int64    `json:"age"`
	Interests          *string   `json:"interests"`
	FavoriteCharacters *string   `json:"favorite_characters"`
	FavoriteStories    *string   `json:"favorite_stories"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Joined from users.
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
}
