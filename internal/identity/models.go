package identity

import (
	"strings"
	"time"
)

// User is the domain representation of a login-capable account.
// It mirrors the users table and carries no JSON annotations so it can be
// reused by different presentation layers.
type User struct {
	ID       int64
	Email    string
	Username string

	// Password holds either a legacy plaintext secret or a bcrypt hash.
	// The format is inferred by password.IsHashed; there is no explicit
	// discriminant column.
	Password string

	// Status is a free-form string normalized by IsActive.
	Status string

	RoleID     int
	FirstName  string
	LastName   string
	NationalID string

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TeacherProfile links a user to a teacher record.
type TeacherProfile struct {
	ID        int64
	UserID    int64
	Specialty string
}

// RepresentativeProfile links a user to a representative record.
type RepresentativeProfile struct {
	ID     int64
	UserID int64
	Phone  string
}

// activeTokens is the fixed vocabulary of status values that count as active.
// Matching is case- and surrounding-space-insensitive.
var activeTokens = map[string]struct{}{
	"activo": {},
	"active": {},
	"true":   {},
	"1":      {},
	"si":     {},
	"sí":     {},
}

// IsActive normalizes the free-form status field to a boolean predicate.
// Any value outside the accepted vocabulary reads as inactive.
func (u User) IsActive() bool {
	s := strings.ToLower(strings.TrimSpace(u.Status))
	_, ok := activeTokens[s]
	return ok
}
