package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"school-platform/internal/config"
	"school-platform/internal/identity"
	"school-platform/internal/password"
)

// newTestService returns a service with a synchronous async runner so side
// effects complete before assertions.
func newTestService(t *testing.T, store identity.Repository) *Service {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  24 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	s := NewService(store, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.async = func(fn func()) { fn() }
	return s
}

func TestLogin_LegacyPlaintextMigrates(t *testing.T) {
	store := identity.NewMemoryRepo()
	uid := store.Seed(identity.User{
		ID:       1,
		Email:    "ana@example.edu",
		Username: "ana",
		Password: "abc123",
		Status:   "Activo",
		RoleID:   identity.RoleIDAdmin,
	})

	s := newTestService(t, store)
	res, err := s.Login(context.Background(), "ana@example.edu", "abc123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens")
	}
	if !res.Migrated {
		t.Fatalf("expected migration flag for plaintext credential")
	}

	stored := store.StoredPassword(uid)
	if !password.IsHashed(stored) {
		t.Fatalf("expected stored password to be hashed after login, got %q", stored)
	}
	if ok, legacy := password.Verify("abc123", stored); !ok || legacy {
		t.Fatalf("expected migrated hash to verify, got ok=%v legacy=%v", ok, legacy)
	}
}

func TestLogin_SecondLoginFindsHash(t *testing.T) {
	store := identity.NewMemoryRepo()
	store.Seed(identity.User{
		Email:    "ana@example.edu",
		Username: "ana",
		Password: "abc123",
		Status:   "Activo",
		RoleID:   identity.RoleIDAdmin,
	})

	s := newTestService(t, store)
	first, err := s.Login(context.Background(), "ana@example.edu", "abc123")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if !first.Migrated {
		t.Fatalf("expected first login to migrate")
	}

	second, err := s.Login(context.Background(), "ana@example.edu", "abc123")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if second.Migrated {
		t.Fatalf("expected second login to find a hash, not plaintext")
	}
}

func TestLogin_HashedCredentialUnchanged(t *testing.T) {
	store := identity.NewMemoryRepo()
	hashed, err := password.Hash("abc123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	uid := store.Seed(identity.User{
		Email:    "ana@example.edu",
		Username: "ana",
		Password: hashed,
		Status:   "Activo",
		RoleID:   identity.RoleIDAdmin,
	})

	s := newTestService(t, store)
	res, err := s.Login(context.Background(), "ana@example.edu", "abc123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Migrated {
		t.Fatalf("expected no migration for hashed credential")
	}
	if store.StoredPassword(uid) != hashed {
		t.Fatalf("expected stored hash unchanged (no re-hash)")
	}
}

func TestLogin_WrongPasswordGeneric(t *testing.T) {
	store := identity.NewMemoryRepo()
	hashed, _ := password.Hash("abc123")
	store.Seed(identity.User{Email: "a@x.edu", Username: "a", Password: "plain-secret", Status: "Activo"})
	store.Seed(identity.User{Email: "b@x.edu", Username: "b", Password: hashed, Status: "Activo"})

	s := newTestService(t, store)
	for _, email := range []string{"a@x.edu", "b@x.edu", "nobody@x.edu"} {
		_, err := s.Login(context.Background(), email, "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %s, got %v", email, err)
		}
	}
}

func TestLogin_MigrationWriteFailureStillSucceeds(t *testing.T) {
	store := identity.NewMemoryRepo()
	store.Seed(identity.User{
		Email:    "ana@example.edu",
		Username: "ana",
		Password: "abc123",
		Status:   "Activo",
	})

	s := newTestService(t, store)
	// Fail the background writes only: run them against a broken store.
	s.async = func(fn func()) {
		store.Err = errors.New("db down")
		fn()
		store.Err = nil
	}

	res, err := s.Login(context.Background(), "ana@example.edu", "abc123")
	if err != nil {
		t.Fatalf("expected login to succeed despite migration failure, got %v", err)
	}
	if res.Tokens.AccessToken == "" {
		t.Fatalf("expected tokens despite migration failure")
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	store := identity.NewMemoryRepo()
	store.Seed(identity.User{
		Email:    "ana@example.edu",
		Username: "ana",
		Password: "abc123",
		Status:   "Inactivo",
	})

	s := newTestService(t, store)
	_, err := s.Login(context.Background(), "ana@example.edu", "abc123")
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestLogin_SubIdentityFlagsNotExclusive(t *testing.T) {
	store := identity.NewMemoryRepo()
	uid := store.Seed(identity.User{
		Email:    "dual@example.edu",
		Username: "dual",
		Password: "abc123",
		Status:   "Activo",
		RoleID:   identity.RoleIDTeacher,
	})
	store.LinkTeacher(uid)
	store.LinkRepresentative(uid)

	s := newTestService(t, store)
	res, err := s.Login(context.Background(), "dual@example.edu", "abc123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !res.IsTeacher || !res.IsRepresentative {
		t.Fatalf("expected both sub-identity flags, got %+v", res)
	}
}

func TestLogin_StampsLastLogin(t *testing.T) {
	store := identity.NewMemoryRepo()
	uid := store.Seed(identity.User{
		Email:    "ana@example.edu",
		Username: "ana",
		Password: "abc123",
		Status:   "Activo",
	})

	s := newTestService(t, store)
	if _, err := s.Login(context.Background(), "ana@example.edu", "abc123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	u, err := store.GetByID(context.Background(), uid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.LastLoginAt == nil {
		t.Fatalf("expected last login stamped")
	}
}

func TestRefresh_ReissuesPair(t *testing.T) {
	store := identity.NewMemoryRepo()
	store.Seed(identity.User{
		ID:       3,
		Email:    "ana@example.edu",
		Username: "ana",
		Password: "abc123",
		Status:   "Activo",
		RoleID:   identity.RoleIDStudent,
	})

	s := newTestService(t, store)
	first, err := s.Login(context.Background(), "ana@example.edu", "abc123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	res, err := s.Refresh(context.Background(), first.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if res.Tokens.AccessToken == "" || res.User.ID != 3 {
		t.Fatalf("unexpected refresh result: %+v", res)
	}
}

func TestRefresh_DeactivatedUserRejected(t *testing.T) {
	store := identity.NewMemoryRepo()
	uid := store.Seed(identity.User{
		Email:    "ana@example.edu",
		Username: "ana",
		Password: "abc123",
		Status:   "Activo",
	})

	s := newTestService(t, store)
	first, err := s.Login(context.Background(), "ana@example.edu", "abc123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	u, _ := store.GetByID(context.Background(), uid)
	u.Status = "Inactivo"
	store.Seed(u)

	if _, err := s.Refresh(context.Background(), first.Tokens.RefreshToken); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive on refresh, got %v", err)
	}
}
