package identity

// Canonical role names. Keep these stable; they are part of auth contracts
// and of the route permission table.
const (
	RoleAdmin          = "admin"
	RoleTeacher        = "docente"
	RoleStudent        = "estudiante"
	RoleRepresentative = "representante"
)

// Numeric role ids as stored in the users table.
const (
	RoleIDAdmin          = 1
	RoleIDTeacher        = 2
	RoleIDStudent        = 3
	RoleIDRepresentative = 4
)

// roleBinding is the static, total mapping from role id to role name.
// Immutable after init; read-only everywhere.
var roleBinding = map[int]string{
	RoleIDAdmin:          RoleAdmin,
	RoleIDTeacher:        RoleTeacher,
	RoleIDStudent:        RoleStudent,
	RoleIDRepresentative: RoleRepresentative,
}

// RoleName resolves a numeric role id to its canonical name.
// Unknown ids resolve to estudiante, the lowest-privilege role. This is a
// deliberate fail-safe default, not a fallback accident.
func RoleName(roleID int) string {
	if name, ok := roleBinding[roleID]; ok {
		return name
	}
	return RoleStudent
}
