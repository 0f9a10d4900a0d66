// Package rbac decides whether an authenticated identity may reach a route.
//
// The route permission table is an ordered list evaluated top to bottom with
// early exit: the FIRST entry whose pattern matches the request path governs,
// even when a later entry is more specific. Behavior therefore depends on
// declaration order; do not reorder entries or replace the scan with a trie
// without re-checking every overlap.
package rbac

import (
	"strings"

	"school-platform/internal/identity"
)

// RoutePermission maps one path pattern to the roles allowed through it.
// Patterns come in three forms: exact path, trailing-wildcard ("/api/x/*"),
// and single-segment parameters ("/api/x/:id").
type RoutePermission struct {
	Pattern string
	Roles   []string
}

// Decision is the outcome of an authorization check, with the policy branch
// that produced it named explicitly so tests can target each branch.
type Decision struct {
	Allow         bool
	Reason        Reason
	Role          string
	RequiredRoles []string
	Path          string
}

type Reason string

const (
	// ReasonMatchedAllow: a table entry matched and the role is in its list.
	ReasonMatchedAllow Reason = "matched_allow"
	// ReasonRoleMismatch: a table entry matched and the role is not allowed.
	ReasonRoleMismatch Reason = "role_mismatch"
	// ReasonDefaultAllow: no entry matched; unlisted routes are open. This is
	// explicit policy, not an omission.
	ReasonDefaultAllow Reason = "default_allow"
	// ReasonPublicPath: the path is on the fixed public list and bypasses the
	// table entirely.
	ReasonPublicPath Reason = "public_path"
	// ReasonFailOpen: the check could not run (missing table); the request is
	// allowed rather than denied. Explicit policy.
	ReasonFailOpen Reason = "fail_open_on_error"
)

// publicPathPrefixes bypass the permission table regardless of its contents.
// Auth-lifecycle routes must stay reachable for logged-out users.
var publicPathPrefixes = []string{
	"/api/health",
	"/api/users/login",
	"/api/users/register",
	"/api/users/refresh-token",
	"/api/users/forgot-password",
	"/api/users/reset-password",
	"/api/users/security-question",
	"/api/users/recover-password-security",
}

// Table is the immutable route permission table. Built once at startup and
// injected; never mutated afterwards, so no synchronization is needed.
type Table struct {
	entries []RoutePermission
}

func NewTable(entries []RoutePermission) *Table {
	out := make([]RoutePermission, len(entries))
	copy(out, entries)
	return &Table{entries: out}
}

// DefaultTable declares the shipped permission set. Order matters.
func DefaultTable() *Table {
	return NewTable([]RoutePermission{
		// Declared before /api/users/:id on purpose; first match governs.
		{Pattern: "/api/users/me", Roles: []string{identity.RoleAdmin, identity.RoleTeacher, identity.RoleStudent, identity.RoleRepresentative}},
		{Pattern: "/api/users", Roles: []string{identity.RoleAdmin}},
		{Pattern: "/api/users/:id", Roles: []string{identity.RoleAdmin}},
		{Pattern: "/api/students", Roles: []string{identity.RoleAdmin}},
		{Pattern: "/api/students/*", Roles: []string{identity.RoleAdmin, identity.RoleTeacher}},
		{Pattern: "/api/representatives", Roles: []string{identity.RoleAdmin, identity.RoleTeacher}},
		{Pattern: "/api/representatives/*", Roles: []string{identity.RoleAdmin, identity.RoleTeacher}},
		{Pattern: "/api/attendance", Roles: []string{identity.RoleAdmin, identity.RoleTeacher}},
		{Pattern: "/api/attendance/*", Roles: []string{identity.RoleAdmin, identity.RoleTeacher}},
		{Pattern: "/api/grades", Roles: []string{identity.RoleAdmin, identity.RoleTeacher}},
		{Pattern: "/api/grades/*", Roles: []string{identity.RoleAdmin, identity.RoleTeacher}},
		{Pattern: "/api/schedules/*", Roles: []string{identity.RoleAdmin, identity.RoleTeacher, identity.RoleStudent, identity.RoleRepresentative}},
	})
}

// IsPublic reports whether the path bypasses the table.
func IsPublic(path string) bool {
	if path == "/" {
		return true
	}
	for _, p := range publicPathPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Match walks the table in declaration order and returns the first entry
// whose pattern matches. First-match, not best-match.
func (t *Table) Match(path string) (RoutePermission, bool) {
	for _, e := range t.entries {
		if matchPattern(e.Pattern, path) {
			return e, true
		}
	}
	return RoutePermission{}, false
}

// Authorize resolves the caller's role and decides Allow or Deny for path.
func (t *Table) Authorize(roleID int, path string) Decision {
	role := identity.RoleName(roleID)

	if IsPublic(path) {
		return Decision{Allow: true, Reason: ReasonPublicPath, Role: role, Path: path}
	}
	if t == nil || t.entries == nil {
		return Decision{Allow: true, Reason: ReasonFailOpen, Role: role, Path: path}
	}

	entry, matched := t.Match(path)
	if !matched {
		return Decision{Allow: true, Reason: ReasonDefaultAllow, Role: role, Path: path}
	}

	for _, allowed := range entry.Roles {
		if allowed == role {
			return Decision{Allow: true, Reason: ReasonMatchedAllow, Role: role, RequiredRoles: entry.Roles, Path: path}
		}
	}
	return Decision{Allow: false, Reason: ReasonRoleMismatch, Role: role, RequiredRoles: entry.Roles, Path: path}
}

// matchPattern tests one pattern form against a concrete path.
func matchPattern(pattern, path string) bool {
	if pattern == path {
		return true
	}

	// Trailing wildcard: "/api/students/*" matches any strictly longer path
	// under that prefix.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(path, prefix) && len(path) > len(prefix)
	}

	// Segment parameters: ":name" matches exactly one non-empty segment.
	if strings.Contains(pattern, ":") {
		ps := strings.Split(pattern, "/")
		xs := strings.Split(path, "/")
		if len(ps) != len(xs) {
			return false
		}
		for i := range ps {
			if strings.HasPrefix(ps[i], ":") {
				if xs[i] == "" {
					return false
				}
				continue
			}
			if ps[i] != xs[i] {
				return false
			}
		}
		return true
	}

	return false
}
