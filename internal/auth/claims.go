package auth

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the only supported claims shape for access tokens.
// Display fields ride along so the frontend can render a session without an
// extra profile call; the middleware still re-reads account status from the
// store on every request.
type AccessClaims struct {
	jwt.RegisteredClaims

	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	RoleID     int    `json:"role_id"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Email      string `json:"email,omitempty"`
	NationalID string `json:"national_id,omitempty"`
	RoleKind   string `json:"role_kind,omitempty"`

	// Derived sub-identity flags. Not mutually exclusive; a user linked to
	// both a teacher and a representative record carries both.
	IsTeacher        bool `json:"is_teacher"`
	IsRepresentative bool `json:"is_representative"`
}

// RefreshClaims carries the user id only.
type RefreshClaims struct {
	jwt.RegisteredClaims

	UserID int64 `json:"user_id"`
}
