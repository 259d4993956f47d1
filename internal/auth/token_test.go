package auth

import (
	"testing"

	"github.com/calebwray/theotime/internal/model"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue(42, model.RoleParent)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.UserID != 42 {
		t.Errorf("UserID = %d, want 42", p.UserID)
	}
	if p.Role != model.RoleParent {
		t.Errorf("Role = %q, want %q", p.Role, model.RoleParent)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a").Issue(1, model.RoleChild)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewTokenIssuer("secret-b").Verify(token); err == nil {
		t.Error("expected verification to fail with wrong secret")
	}
}

func TestVerifyGarbage(t *testing.T) {
	if _, err := NewTokenIssuer("secret").Verify("not-a-token"); err == nil {
		t.Error("expected verification to fail for malformed token")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("hunter22", hash) {
		t.Error("correct password should match")
	}
	if CheckPassword("hunter23", hash) {
		t.Error("wrong password should not match")
	}
}
