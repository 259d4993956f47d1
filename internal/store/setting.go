package store

import (
	"database/sql"
	"fmt"

	"github.com/calebwray/theotime/internal/model"
)

type SettingStore struct {
	db *sql.DB
}

func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

func (s *SettingStore) Get(key string) (*model.Setting, error) {
	var st model.Setting
	var value sql.NullString
	var userID sql.NullInt64

	err := s.db.QueryRow(
		`SELECT id, key, value, user_id, created_at, updated_at FROM settings WHERE key = ?`,
		key,
	).Scan(&st.ID, &st.Key, &value, &userID, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query setting: %w", err)
	}

	if value.Valid {
		st.Value = &value.String
	}
	if userID.Valid {
		st.UserID = &userID.Int64
	}
	return &st, nil
}

// GetValue returns the stored value for key, or fallback when the key is
// absent or null.
func (s *SettingStore) GetValue(key, fallback string) (string, error) {
	st, err := s.Get(key)
	if err != nil {
		return "", err
	}
	if st == nil || st.Value == nil {
		return fallback, nil
	}
	return *st.Value, nil
}

// GetBool interprets a setting as a flag. Absent keys default to fallback;
// stored values of "true" or "1" count as true.
func (s *SettingStore) GetBool(key string, fallback bool) (bool, error) {
	st, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if st == nil || st.Value == nil {
		return fallback, nil
	}
	return *st.Value == "true" || *st.Value == "1", nil
}

func (s *SettingStore) Set(key string, value *string, userID *int64) (*model.Setting, error) {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, user_id)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key)
		 DO UPDATE SET value = excluded.value, user_id = excluded.user_id, updated_at = CURRENT_TIMESTAMP`,
		key, nullString(value), nullInt64(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert setting: %w", err)
	}
	return s.Get(key)
}

func (s *SettingStore) List() ([]model.Setting, error) {
	rows, err := s.db.Query(
		`SELECT id, key, value, user_id, created_at, updated_at FROM settings ORDER BY key ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var st model.Setting
		var value sql.NullString
		var userID sql.NullInt64

		if err := rows.Scan(&st.ID, &st.Key, &value, &userID, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		if value.Valid {
			st.Value = &value.String
		}
		if userID.Valid {
			st.UserID = &userID.Int64
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

func (s *SettingStore) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM settings WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}
