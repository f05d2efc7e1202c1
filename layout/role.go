package layout

import "strings"

// Role classifies a section by what it holds. The role fixes the
// capabilities its regions must grant and how the section is emitted.
// Roles are declared in emission order.
type Role uint8

const (
	RoleVectors Role = iota
	RoleText
	RoleRAMFunc
	RoleData
	RoleCustom
	RoleBss
	RoleStack
	roleCount
)

var roleNames = [roleCount]string{
	RoleVectors: "vectors",
	RoleText:    "text",
	RoleRAMFunc: "ramfunc",
	RoleData:    "data",
	RoleCustom:  "custom",
	RoleBss:     "bss",
	RoleStack:   "stack",
}

func (r Role) String() string {
	if r < roleCount {
		return roleNames[r]
	}
	return "unknown"
}

// Valid reports whether r is a declared role.
func (r Role) Valid() bool { return r < roleCount }

// VMARequires returns the capabilities the execution region must grant.
func (r Role) VMARequires() Capability {
	switch r {
	case RoleText, RoleRAMFunc:
		return RX
	case RoleData, RoleBss, RoleStack:
		return RW
	default:
		return Read
	}
}

// LMARequires returns the capabilities the load region must grant.
func (r Role) LMARequires() Capability {
	if r.NoLoad() {
		return r.VMARequires()
	}
	return Read
}

// NoLoad reports whether the section occupies no space in the load image.
// Such sections are always load-in-place.
func (r Role) NoLoad() bool {
	return r == RoleBss || r == RoleStack
}

// ParseRole parses a role name as returned by Role.String.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range roleNames {
		if n == s {
			return Role(i), true
		}
	}
	return 0, false
}

// InferRole picks a role from a conventional section name.
func InferRole(name string) Role {
	switch name {
	case "vector_table", "vectors", "isr_vector":
		return RoleVectors
	case "text":
		return RoleText
	case "ramfunc":
		return RoleRAMFunc
	case "data":
		return RoleData
	case "bss":
		return RoleBss
	case "stack":
		return RoleStack
	}
	switch {
	case strings.HasSuffix(name, "_data"):
		return RoleData
	case strings.HasSuffix(name, "_bss"):
		return RoleBss
	}
	return RoleCustom
}
