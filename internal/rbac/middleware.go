package rbac

import (
	"errors"
	"net/http"

	"school-platform/internal/auth"
	"school-platform/internal/identity"

	"github.com/gin-gonic/gin"
)

// RequireRoutePermission enforces the route permission table.
//
// It assumes auth.RequireAccessToken ran earlier in the chain. When no
// authenticated identity is present it passes through unchanged, deferring
// the rejection to the verifier.
func RequireRoutePermission(table *Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := auth.IdentityFrom(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		// Match on the raw request path, not the gin route template.
		d := table.Authorize(ident.RoleID, c.Request.URL.Path)
		if d.Allow {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"ok":            false,
			"msg":           "insufficient role for this route",
			"userRole":      d.Role,
			"requiredRoles": d.RequiredRoles,
			"path":          d.Path,
		})
	}
}

// RequireAdmin is a coarser admin-only gate usable per route, independent of
// the permission table. It re-reads the user fresh from the store rather than
// trusting token claims; deliberately redundant defense-in-depth, keep it
// separate from RequireRoutePermission.
func RequireAdmin(store identity.Repository) gin.HandlerFunc {
	return requireRoleIDs(store, "admin privileges required", identity.RoleIDAdmin)
}

// RequireAdminOrReadOnly admits admins plus the fixed read-mostly allow-list
// (teachers). Same fresh-read semantics as RequireAdmin.
func RequireAdminOrReadOnly(store identity.Repository) gin.HandlerFunc {
	return requireRoleIDs(store, "admin or teacher privileges required", identity.RoleIDAdmin, identity.RoleIDTeacher)
}

func requireRoleIDs(store identity.Repository, denyMsg string, allowed ...int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := auth.IdentityFrom(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "authentication required"})
			return
		}

		user, err := store.GetByID(c.Request.Context(), ident.UserID)
		if err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "user not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "server error"})
			return
		}

		for _, id := range allowed {
			if user.RoleID == id {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "msg": denyMsg})
	}
}
