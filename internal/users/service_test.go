package users

import (
	"path/filepath"
	"testing"

	"deposit-reconciliation-service/internal/store"
	"deposit-reconciliation-service/pkg/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return NewService(st)
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register("alice@example.com", "s3cret", false)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.ID != 1 {
		t.Errorf("Expected id 1, got %d", user.ID)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Expected email preserved, got %s", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret" {
		t.Error("Expected the password to be stored hashed")
	}
	if user.IsAdmin {
		t.Error("Expected a regular user")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Expected created_at to be stamped")
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "s3cret"},
		{"blank email", "   ", "s3cret"},
		{"empty password", "alice@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)

			if _, err := svc.Register(tt.email, tt.password, false); !errors.IsValidation(err) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("alice@example.com", "s3cret", false); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Register("Alice@Example.COM", "other", false); !errors.IsConflict(err) {
		t.Errorf("Expected case-insensitive conflict, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)

	registered, err := svc.Register("alice@example.com", "s3cret", true)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := svc.Authenticate("alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Expected user %d, got %d", registered.ID, user.ID)
	}
	if !user.IsAdmin {
		t.Error("Expected admin flag to round trip")
	}
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("alice@example.com", "s3cret", false); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	wrongPassword, err1 := svc.Authenticate("alice@example.com", "wrong")
	unknownEmail, err2 := svc.Authenticate("bob@example.com", "s3cret")

	if wrongPassword != nil || unknownEmail != nil {
		t.Fatal("Expected no user for bad credentials")
	}
	if !errors.IsNotFound(err1) || !errors.IsNotFound(err2) {
		t.Fatalf("Expected not-found errors, got %v and %v", err1, err2)
	}
	// Unknown email and wrong password must be indistinguishable
	if err1.Error() != err2.Error() {
		t.Errorf("Expected identical errors, got %q vs %q", err1, err2)
	}
}

func TestGetByEmail(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("alice@example.com", "s3cret", false); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := svc.GetByEmail("  ALICE@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Expected stored email, got %s", user.Email)
	}

	if _, err := svc.GetByEmail("bob@example.com"); !errors.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Get(42); !errors.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	svc := newTestService(t)

	if err := svc.EnsureAdmin("admin@example.com", "s3cret"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}

	user, err := svc.GetByEmail("admin@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if !user.IsAdmin {
		t.Error("Expected bootstrapped user to be an admin")
	}

	// Second call is a no-op, even with a different password
	if err := svc.EnsureAdmin("admin@example.com", "changed"); err != nil {
		t.Fatalf("Expected idempotent EnsureAdmin, got %v", err)
	}
	if _, err := svc.Authenticate("admin@example.com", "s3cret"); err != nil {
		t.Errorf("Expected the original password to still work: %v", err)
	}
}
