package model

import "time"

// Roles assignable to a user. Parents administer the whole family's data;
// children only see their own records plus shared ones.
const (
	RoleParent = "parent"
	RoleChild  = "child"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	FullName     *string   `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	return role == RoleParent || role == RoleChild
}
