package auth

import (
	"errors"
	"time"

	"school-platform/internal/config"
	"school-platform/internal/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired signals a well-formed, correctly signed token past its
	// expiry. Kept distinct from ErrTokenInvalid so the middleware can tell
	// the caller which one happened.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid covers bad signatures, malformed tokens and claim
	// validation failures.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Manager issues and verifies the two token kinds. Access and refresh tokens
// are signed with distinct secrets so a leaked refresh secret cannot mint
// access tokens, and vice versa.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("auth: both signing secrets are required")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, errors.New("auth: token TTLs must be positive")
	}
	return &Manager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}, nil
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

/* ===================== ISSUE TOKENS ===================== */

// IssueTokens mints an access/refresh pair for an already-verified user.
func (m *Manager) IssueTokens(now time.Time, u identity.User, isTeacher, isRepresentative bool) (TokenPair, error) {
	access := AccessClaims{
		RegisteredClaims: registered(now, m.accessTTL),
		UserID:           u.ID,
		Username:         u.Username,
		RoleID:           u.RoleID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		NationalID:       u.NationalID,
		RoleKind:         identity.RoleName(u.RoleID),
		IsTeacher:        isTeacher,
		IsRepresentative: isRepresentative,
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(m.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}

	refresh := RefreshClaims{
		RegisteredClaims: registered(now, m.refreshTTL),
		UserID:           u.ID,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(m.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func registered(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

/* ===================== VERIFY TOKENS ===================== */

// VerifyAccess validates signature and expiry of an access token.
func (m *Manager) VerifyAccess(tokenString string, now time.Time) (AccessClaims, error) {
	var claims AccessClaims
	if err := m.verify(tokenString, &claims, m.accessSecret, now); err != nil {
		return AccessClaims{}, err
	}
	if claims.UserID == 0 {
		return AccessClaims{}, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyRefresh validates signature and expiry of a refresh token.
func (m *Manager) VerifyRefresh(tokenString string, now time.Time) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := m.verify(tokenString, &claims, m.refreshSecret, now); err != nil {
		return RefreshClaims{}, err
	}
	if claims.UserID == 0 {
		return RefreshClaims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (m *Manager) verify(tokenString string, claims jwt.Claims, secret []byte, now time.Time) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30*time.Second), // clock skew tolerance
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	return nil
}
