package store

import (
	"database/sql"
	"fmt"

	"github.com/calebwray/theotime/internal/model"
)

type ChildProfileStore struct {
	db *sql.DB
}

func NewChildProfileStore(db *sql.DB) *ChildProfileStore {
	return &ChildProfileStore{db: db}
}

// Upsert creates or replaces the profile for a user. One profile per child.
func (s *ChildProfileStore) Upsert(userID int64, age *int64, interests, favoriteCharacters, favoriteStories *string) (*model.ChildProfile, error) {
	existing, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		_, err = s.db.Exec(
			`INSERT INTO children_profiles (user_id, age, interests, favorite_characters, favorite_stories)
			 VALUES (?, ?, ?, ?, ?)`,
			userID, nullInt64(age), nullString(interests), nullString(favoriteCharacters), nullString(favoriteStories),
		)
		if err != nil {
			return nil, fmt.Errorf("insert child profile: %w", err)
		}
	} else {
		_, err = s.db.Exec(
			`UPDATE children_profiles
			 SET age = ?, interests = ?, favorite_characters = ?, favorite_stories = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE user_id = ?`,
			nullInt64(age), nullString(interests), nullString(favoriteCharacters), nullString(favoriteStories), userID,
		)
		if err != nil {
			return nil, fmt.Errorf("update child profile: %w", err)
		}
	}

	return s.GetByUserID(userID)
}

const profileSelect = `SELECT p.id, p.user_id, p.age, p.interests, p.favorite_characters, p.favorite_stories,
	p.created_at, p.updated_at, u.username, u.full_name, u.email, u.role
	FROM children_profiles p
	JOIN users u ON u.id = p.user_id`

func (s *ChildProfileStore) GetByUserID(userID int64) (*model.ChildProfile, error) {
	row := s.db.QueryRow(profileSelect+` WHERE p.user_id = ?`, userID)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query child profile: %w", err)
	}
	return p, nil
}

// List returns every child user's profile. Children without a saved profile
// still appear, with profile fields empty.
func (s *ChildProfileStore) List() ([]model.ChildProfile, error) {
	rows, err := s.db.Query(
		`SELECT COALESCE(p.id, 0), u.id, p.age, p.interests, p.favorite_characters, p.favorite_stories,
		        COALESCE(p.created_at, u.created_at), COALESCE(p.updated_at, u.updated_at),
		        u.username, u.full_name, u.email, u.role
		 FROM users u
		 LEFT JOIN children_profiles p ON p.user_id = u.id
		 WHERE u.role = ?
		 ORDER BY u.username ASC`,
		model.RoleChild,
	)
	if err != nil {
		return nil, fmt.Errorf("query child profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.ChildProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *ChildProfileStore) Delete(userID int64) error {
	_, err := s.db.Exec("DELETE FROM children_profiles WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("delete child profile: %w", err)
	}
	return nil
}

func scanProfile(row rowScanner) (*model.ChildProfile, error) {
	var p model.ChildProfile
	var age sql.NullInt64
	var interests, characters, stories, fullName, email sql.NullString
	var username, role string

	err := row.Scan(&p.ID, &p.UserID, &age, &interests, &characters, &stories,
		&p.CreatedAt, &p.UpdatedAt, &username, &fullName, &email, &role)
	if err != nil {
		return nil, err
	}

	if age.Valid {
		p.Age = &age.Int64
	}
	if interests.Valid {
		p.Interests = &interests.String
	}
	if characters.Valid {
		p.FavoriteCharacters = &characters.String
	}
	if stories.Valid {
		p.FavoriteStories = &stories.String
	}
	p.Username = &username
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	if email.Valid {
		p.Email = &email.String
	}
	p.Role = &role

	return &p, nil
}
