package store

import (
	"testing"

	"github.com/calebwray/theotime/internal/model"
)

func TestUserCreateAndGet(t *testing.T) {
	db := testDB(t)
	us := NewUserStore(db)

	email := "dad@example.com"
	name := "Caleb"
	u, err := us.Create("caleb", &email, "hashed", model.RoleParent, &name)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Username != "caleb" || u.Role != model.RoleParent {
		t.Errorf("user = %+v", u)
	}
	if u.Email == nil || *u.Email != email {
		t.Errorf("email = %v, want %q", u.Email, email)
	}

	got, err := us.GetByUsername("caleb")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Errorf("get by username = %+v, want id %d", got, u.ID)
	}

	missing, err := us.GetByUsername("nobody")
	if err != nil {
		t.Fatalf("get missing user: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %+v", missing)
	}
}

func TestUserDuplicateUsername(t *testing.T) {
	db := testDB(t)
	us := NewUserStore(db)

	seedUser(t, db, "sam", model.RoleChild)
	if _, err := us.Create("sam", nil, "hash", model.RoleChild, nil); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestUserCountAndListByRole(t *testing.T) {
	db := testDB(t)
	us := NewUserStore(db)

	n, err := us.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}

	seedUser(t, db, "mom", model.RoleParent)
	seedUser(t, db, "abby", model.RoleChild)
	seedUser(t, db, "ben", model.RoleChild)

	n, err = us.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	children, err := us.ListByRole(model.RoleChild)
	if err != nil {
		t.Fatalf("list by role: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}
	if children[0].Username != "abby" || children[1].Username != "ben" {
		t.Errorf("children not sorted by username: %s, %s", children[0].Username, children[1].Username)
	}
}

func TestUserUpdateRoleAndPassword(t *testing.T) {
	db := testDB(t)
	us := NewUserStore(db)

	u := seedUser(t, db, "abby", model.RoleChild)

	updated, err := us.UpdateRole(u.ID, model.RoleParent)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if updated.Role != model.RoleParent {
		t.Errorf("role = %q, want parent", updated.Role)
	}

	if err := us.UpdatePassword(u.ID, "newhash"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	got, _ := us.GetByID(u.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("password hash = %q, want newhash", got.PasswordHash)
	}
}
