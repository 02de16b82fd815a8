package store

import (
	"testing"

	"github.com/dstrobel/einkauf/internal/database"
)

func setupUserTestDB(t *testing.T) (*UserStore, *SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db), NewSessionStore(db)
}

func TestUserCRUD(t *testing.T) {
	us, _ := setupUserTestDB(t)

	u, err := us.Create("anna@example.com", "Anna Schmidt", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "anna@example.com" {
		t.Errorf("email = %q", u.Email)
	}
	if u.PasswordHash != "hash" {
		t.Errorf("password hash not stored")
	}

	got, err := us.GetByEmail("anna@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatalf("get by email = %v, want id %d", got, u.ID)
	}

	// Email lookup is case-insensitive
	got, err = us.GetByEmail("ANNA@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil {
		t.Error("expected case-insensitive email lookup")
	}

	updated, err := us.UpdateName(u.ID, "Anna S.")
	if err != nil {
		t.Fatalf("update name: %v", err)
	}
	if updated.Name != "Anna S." {
		t.Errorf("name = %q", updated.Name)
	}

	if err := us.Delete(u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	got, _ = us.GetByID(u.ID)
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestUserNotFound(t *testing.T) {
	us, _ := setupUserTestDB(t)

	got, err := us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	us, _ := setupUserTestDB(t)

	if _, err := us.Create("anna@example.com", "Anna", "h"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("Anna@Example.com", "Other", "h"); err == nil {
		t.Error("expected unique constraint error for duplicate email")
	}
}
