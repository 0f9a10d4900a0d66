// Package password verifies supplied passwords against stored credentials.
//
// The stored field is a union of two formats: a bcrypt hash or a legacy
// plaintext secret left behind by an earlier version of the system. The format
// is inferred from the bcrypt version prefix; there is no explicit
// discriminant. All detection goes through IsHashed so a future move to an
// explicit column is a one-point change.
package password

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptPrefixes are the version markers bcrypt emits. Any stored value not
// starting with one of them is treated as plaintext, including corrupted or
// foreign-format hashes. Intentional simplicity; do not widen silently.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2x$", "$2y$"}

// IsHashed reports whether the stored field is a bcrypt hash.
func IsHashed(stored string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(stored, p) {
			return true
		}
	}
	return false
}

// Verify checks supplied against the stored credential.
//
// It returns ok=true when the credential matches, and legacy=true when the
// match happened against a plaintext secret, meaning the caller should migrate
// the stored field to a hash (best-effort, never blocking the login).
//
// An empty or blank stored field never matches; no comparison is attempted.
func Verify(supplied, stored string) (ok, legacy bool) {
	if strings.TrimSpace(stored) == "" {
		return false, false
	}
	if IsHashed(stored) {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied))
		return err == nil, false
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(stored)) == 1 {
		return true, true
	}
	return false, false
}

// Hash produces a bcrypt hash with a fresh random salt at the default cost.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
