package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"school-platform/internal/identity"
	"school-platform/internal/password"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Callers must not reveal which one it was.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrAccountInactive signals correct credentials on a deactivated account.
	ErrAccountInactive = errors.New("auth: account inactive")
)

// sideEffectTimeout bounds the background writes (password migration,
// last-login stamp). They run on context.Background so a client disconnect
// cannot abort an in-flight write.
const sideEffectTimeout = 10 * time.Second

// Service implements the credential verification and token issuance flow.
type Service struct {
	store  identity.Repository
	tokens *Manager
	log    *slog.Logger

	// clock and async are injectable for deterministic tests.
	clock func() time.Time
	async func(fn func())
}

func NewService(store identity.Repository, tokens *Manager, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		log:    log,
		clock:  time.Now,
		async:  func(fn func()) { go fn() },
	}
}

// LoginResult bundles everything the login response needs.
type LoginResult struct {
	Tokens           TokenPair
	User             identity.User
	IsTeacher        bool
	IsRepresentative bool

	// Migrated is true when this login found a legacy plaintext credential
	// and scheduled its replacement with a hash. Response wording differs
	// non-semantically when set.
	Migrated bool
}

// Login verifies credentials and issues a token pair.
//
// The plaintext-to-hash migration and the last-login stamp are best-effort
// background writes; their failure is logged and never fails the login.
func (s *Service) Login(ctx context.Context, email, supplied string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	ok, legacy := password.Verify(supplied, user.Password)
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return LoginResult{}, ErrAccountInactive
	}

	if legacy {
		s.migratePassword(user.ID, supplied)
	}

	return s.issue(ctx, user, legacy)
}

// Refresh exchanges a valid refresh token for a fresh pair. The user is
// re-read so deactivation or role changes take effect immediately.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (LoginResult, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken, s.clock())
	if err != nil {
		return LoginResult{}, err
	}

	user, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !user.IsActive() {
		return LoginResult{}, ErrAccountInactive
	}

	return s.issue(ctx, user, false)
}

func (s *Service) issue(ctx context.Context, user identity.User, migrated bool) (LoginResult, error) {
	// Sub-identity lookups. Absence is not an error; lookup failures read
	// as false rather than blocking the login.
	isTeacher, err := s.store.HasTeacherProfile(ctx, user.ID)
	if err != nil {
		s.log.Warn("teacher profile lookup failed", "user_id", user.ID, "err", err)
		isTeacher = false
	}
	isRepresentative, err := s.store.HasRepresentativeProfile(ctx, user.ID)
	if err != nil {
		s.log.Warn("representative profile lookup failed", "user_id", user.ID, "err", err)
		isRepresentative = false
	}

	now := s.clock()
	pair, err := s.tokens.IssueTokens(now, user, isTeacher, isRepresentative)
	if err != nil {
		return LoginResult{}, err
	}

	s.async(func() {
		bg, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.store.TouchLastLogin(bg, user.ID, now); err != nil {
			s.log.Warn("last login stamp failed", "user_id", user.ID, "err", err)
		}
	})

	return LoginResult{
		Tokens:           pair,
		User:             user,
		IsTeacher:        isTeacher,
		IsRepresentative: isRepresentative,
		Migrated:         migrated,
	}, nil
}

// migratePassword rewrites a legacy plaintext credential as a bcrypt hash.
// Concurrent logins may both schedule this; the writes are equivalent
// (same password, different salt), so no locking is needed.
func (s *Service) migratePassword(userID int64, supplied string) {
	s.async(func() {
		hashed, err := password.Hash(supplied)
		if err != nil {
			s.log.Warn("password migration hash failed", "user_id", userID, "err", err)
			return
		}
		bg, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.store.UpdatePassword(bg, userID, hashed); err != nil {
			s.log.Warn("password migration write failed", "user_id", userID, "err", err)
		}
	})
}
