package store

import (
	"database/sql"
	"testing"

	"github.com/calebwray/theotime/internal/database"
	"github.com/calebwray/theotime/internal/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, username, role string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(username, nil, "hash", role, nil)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }
