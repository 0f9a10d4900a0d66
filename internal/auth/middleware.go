package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"school-platform/internal/identity"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"

// RequireAccessToken verifies a bearer access token and injects the
// authenticated identity into the request context. It does not perform role
// checks; those belong to internal/rbac and must run after this middleware.
//
// Account status is re-read from the store on every request. A deactivated
// account is rejected immediately even if its token has not expired; this is
// the system's only revocation mechanism and must not be skipped.
func RequireAccessToken(m *Manager, store identity.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(authorizationHeader)
		if strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "no token provided"})
			return
		}

		// Exactly two space-separated parts, the first literally "Bearer".
		parts := strings.Split(raw, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "malformed authorization header"})
			return
		}

		claims, err := m.VerifyAccess(parts[1], time.Now())
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "invalid token"})
			return
		}

		user, err := store.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "user not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "server error"})
			return
		}

		if !user.IsActive() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "msg": "account inactive"})
			return
		}

		ident := identityFromClaims(claims, user)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), ident))

		// Also store on gin context for handler convenience.
		c.Set("identity", ident)

		c.Next()
	}
}

// identityFromClaims prefers token claims and falls back to freshly-read
// store fields where a claim is absent.
func identityFromClaims(claims AccessClaims, user identity.User) Identity {
	ident := Identity{
		UserID:           claims.UserID,
		Username:         claims.Username,
		RoleID:           claims.RoleID,
		FirstName:        claims.FirstName,
		LastName:         claims.LastName,
		Email:            claims.Email,
		NationalID:       claims.NationalID,
		IsTeacher:        claims.IsTeacher,
		IsRepresentative: claims.IsRepresentative,
	}
	if ident.Username == "" {
		ident.Username = user.Username
	}
	if ident.RoleID == 0 {
		ident.RoleID = user.RoleID
	}
	if ident.FirstName == "" {
		ident.FirstName = user.FirstName
	}
	if ident.LastName == "" {
		ident.LastName = user.LastName
	}
	if ident.Email == "" {
		ident.Email = user.Email
	}
	if ident.NationalID == "" {
		ident.NationalID = user.NationalID
	}
	return ident
}
