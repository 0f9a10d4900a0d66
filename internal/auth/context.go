package auth

import "context"

// Identity is the authenticated-identity context attached by the middleware
// after a token passes verification and the live status re-check.
type Identity struct {
	UserID     int64
	Username   string
	RoleID     int
	FirstName  string
	LastName   string
	Email      string
	NationalID string

	IsTeacher        bool
	IsRepresentative bool
}

type ctxKey int

const ctxIdentity ctxKey = iota

// WithIdentity stores the authenticated identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

// IdentityFrom reads the authenticated identity from context.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	v := ctx.Value(ctxIdentity)
	id, ok := v.(Identity)
	return id, ok && id.UserID != 0
}
