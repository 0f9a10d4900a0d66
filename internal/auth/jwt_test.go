package auth

import (
	"errors"
	"testing"
	"time"

	"school-platform/internal/config"
	"school-platform/internal/identity"
)

func testManager(t *testing.T) *Manager {
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
	return m
}

func testUser() identity.User {
	return identity.User{
		ID:         1,
		Email:      "maria@example.edu",
		Username:   "mperez",
		RoleID:     identity.RoleIDTeacher,
		FirstName:  "Maria",
		LastName:   "Perez",
		NationalID: "V-12345678",
	}
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()

	pair, err := m.IssueTokens(now, testUser(), true, false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}

	claims, err := m.VerifyAccess(pair.AccessToken, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 1 || claims.Username != "mperez" || claims.RoleID != identity.RoleIDTeacher {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.RoleKind != identity.RoleTeacher {
		t.Fatalf("expected role kind docente, got %q", claims.RoleKind)
	}
	if !claims.IsTeacher || claims.IsRepresentative {
		t.Fatalf("unexpected sub-identity flags: %+v", claims)
	}
}

func TestVerifyAccess_ExpiredIsDistinct(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()

	pair, err := m.IssueTokens(now, testUser(), false, false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = m.VerifyAccess(pair.AccessToken, now.Add(25*time.Hour))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyAccess_GarbageIsInvalid(t *testing.T) {
	m := testManager(t)
	_, err := m.VerifyAccess("not-a-token", time.Now())
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()

	pair, err := m.IssueTokens(now, testUser(), false, false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// A refresh token must not verify as access and vice versa; the two
	// kinds are signed with different secrets.
	if _, err := m.VerifyAccess(pair.RefreshToken, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected refresh token rejected as access, got %v", err)
	}
	if _, err := m.VerifyRefresh(pair.AccessToken, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected access token rejected as refresh, got %v", err)
	}
}

func TestVerifyRefresh_CarriesUserIDOnly(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()

	pair, err := m.IssueTokens(now, testUser(), false, false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.VerifyRefresh(pair.RefreshToken, now.Add(6*24*time.Hour))
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if claims.UserID != 1 {
		t.Fatalf("unexpected refresh claims: %+v", claims)
	}

	_, err = m.VerifyRefresh(pair.RefreshToken, now.Add(8*24*time.Hour))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected refresh expiry after 7d, got %v", err)
	}
}
