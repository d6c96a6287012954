package records

import (
	"encoding/json"
	"strings"
)

// Role is the organizational role carried by an actor or an employee record.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleHR       Role = "HR"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// AllRoles lists the known roles from most to least privileged.
var AllRoles = []Role{RoleAdmin, RoleHR, RoleManager, RoleEmployee}

// ParseRole normalizes s and reports whether it names a known role.
// Unknown values are returned upper-cased so callers can still log them,
// but access checks treat them as unprivileged.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// UnmarshalJSON normalizes case and surrounding space, so "admin" decodes as
// RoleAdmin. Unknown values are kept upper-cased and fail the "role" rule.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*r = ""
		return nil
	}
	*r, _ = ParseRole(*s)
	return nil
}

func (r Role) String() string {
	return string(r)
}

// Label returns the display label used in reports.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleHR:
		return "Human Resources"
	case RoleManager:
		return "Manager"
	case RoleEmployee:
		return "Employee"
	}
	return "Unknown"
}
