package store

import (
	"database/sql"
	"fmt"

	"github.com/calebwray/theotime/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(username string, email *string, passwordHash, role string, fullName *string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (username, email, password_hash, role, full_name)
		 VALUES (?, ?, ?, ?, ?)`,
		username, nullString(email), passwordHash, role, nullString(fullName),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	return s.getBy("id = ?", id)
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	return s.getBy("username = ?", username)
}

func (s *UserStore) getBy(where string, arg any) (*model.User, error) {
	var u model.User
	var email, fullName sql.NullString

	err := s.db.QueryRow(
		`SELECT id, username, email, password_hash, role, full_name, created_at, updated_at
		 FROM users WHERE `+where,
		arg,
	).Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.Role, &fullName, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	if email.Valid {
		u.Email = &email.String
	}
	if fullName.Valid {
		u.FullName = &fullName.String
	}
	return &u, nil
}

func (s *UserStore) List() ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT id, username, email, password_hash, role, full_name, created_at, updated_at
		 FROM users ORDER BY username ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var email, fullName sql.NullString

		if err := rows.Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.Role, &fullName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if email.Valid {
			u.Email = &email.String
		}
		if fullName.Valid {
			u.FullName = &fullName.String
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserStore) ListByRole(role string) ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT id, username, email, password_hash, role, full_name, created_at, updated_at
		 FROM users WHERE role = ? ORDER BY username ASC`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("query users by role: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var email, fullName sql.NullString

		if err := rows.Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.Role, &fullName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if email.Valid {
			u.Email = &email.String
		}
		if fullName.Valid {
			u.FullName = &fullName.String
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Count reports the total number of registered users. The first registration
// becomes a parent, so the handler needs to know when the table is empty.
func (s *UserStore) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *UserStore) UpdateProfile(id int64, email, fullName *string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET email = ?, full_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nullString(email), nullString(fullName), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) UpdateRole(id int64, role string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		role, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) UpdatePassword(id int64, passwordHash string) error {
	_, err := s.db.Exec(
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
