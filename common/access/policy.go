// Package access decides what an actor may see and do with employee,
// booking and administrative records. Every function is pure; unknown or
// missing roles are treated as the least privileged role.
package access

import (
	"errors"
	"slices"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// ErrForbidden is returned when an actor attempts an operation the policy denies.
var ErrForbidden = errors.New("forbidden")

// CanEdit reports whether actor may edit target's record.
func CanEdit(actor records.Actor, target records.Employee) bool {
	switch actor.Role {
	case records.RoleAdmin:
		return target.Role != records.RoleAdmin
	case records.RoleHR:
		return target.Role != records.RoleAdmin && target.Role != records.RoleHR
	}
	return false
}

// CanDelete reports whether actor may delete target's record.
func CanDelete(actor records.Actor, target records.Employee) bool {
	switch actor.Role {
	case records.RoleAdmin:
		return target.Role != records.RoleAdmin
	case records.RoleHR:
		return target.Role == records.RoleManager || target.Role == records.RoleEmployee
	}
	return false
}

// CanChangeRole reports whether actor may change anyone's role.
func CanChangeRole(actor records.Actor) bool {
	return actor.Role == records.RoleAdmin
}

// CanEditSalary reports whether actor may set salaries.
func CanEditSalary(actor records.Actor) bool {
	return actor.Role == records.RoleAdmin || actor.Role == records.RoleHR
}

// CanCreateEmployee reports whether actor may create employee records.
func CanCreateEmployee(actor records.Actor) bool {
	return actor.Role == records.RoleAdmin || actor.Role == records.RoleHR
}

// AssignableRoles returns the roles actor may give to a new or edited record.
func AssignableRoles(actor records.Actor) []records.Role {
	switch actor.Role {
	case records.RoleAdmin:
		return []records.Role{records.RoleEmployee, records.RoleManager, records.RoleHR}
	case records.RoleHR:
		return []records.Role{records.RoleEmployee, records.RoleManager}
	}
	return nil
}

// CanAssignRole reports whether role is among AssignableRoles(actor).
func CanAssignRole(actor records.Actor, role records.Role) bool {
	return slices.Contains(AssignableRoles(actor), role)
}

// VisibleSalary reports whether actor may see target's salary.
func VisibleSalary(actor records.Actor, target records.Employee) bool {
	switch actor.Role {
	case records.RoleAdmin, records.RoleHR, records.RoleManager:
		return true
	}
	return isSelf(actor, target)
}

// CanResetPassword reports whether actor may approve a reset for target.
func CanResetPassword(actor records.Actor, target records.Employee) bool {
	return actor.Role == records.RoleAdmin && !isSelf(actor, target)
}

// CanCancelBooking reports whether actor may cancel bk.
func CanCancelBooking(actor records.Actor, bk records.Booking) bool {
	if bk.Status == records.BookingCancelled {
		return false
	}
	if actor.Role == records.RoleAdmin {
		return true
	}
	return actor.ID != "" && records.RefID(bk.User) == actor.ID
}

// CanManageRooms reports whether actor may create, edit or delete rooms.
func CanManageRooms(actor records.Actor) bool {
	return actor.Role == records.RoleAdmin
}

// ScopeForActor returns the subset of all that actor is allowed to see, in
// the original order.
func ScopeForActor(actor records.Actor, all []records.Employee) []records.Employee {
	switch actor.Role {
	case records.RoleAdmin, records.RoleHR:
		return slices.Clone(all)
	case records.RoleManager:
		dept := records.RefID(actor.Department)
		return slices.DeleteFunc(slices.Clone(all), func(e records.Employee) bool {
			if isSelf(actor, e) {
				return false
			}
			return dept == "" || e.DepartmentID() != dept
		})
	}
	return slices.DeleteFunc(slices.Clone(all), func(e records.Employee) bool {
		return !isSelf(actor, e)
	})
}

// Capabilities bundles the per-record permissions shown next to a row.
type Capabilities struct {
	Edit          bool `json:"edit"`
	Delete        bool `json:"delete"`
	ChangeRole    bool `json:"changeRole"`
	EditSalary    bool `json:"editSalary"`
	ViewSalary    bool `json:"viewSalary"`
	ResetPassword bool `json:"resetPassword"`
}

// For computes every capability actor has over target.
func For(actor records.Actor, target records.Employee) Capabilities {
	edit := CanEdit(actor, target)
	return Capabilities{
		Edit:          edit,
		Delete:        CanDelete(actor, target),
		ChangeRole:    edit && CanChangeRole(actor),
		EditSalary:    edit && CanEditSalary(actor),
		ViewSalary:    VisibleSalary(actor, target),
		ResetPassword: CanResetPassword(actor, target),
	}
}

func isSelf(actor records.Actor, target records.Employee) bool {
	if actor.ID != "" && actor.ID == target.ID {
		return true
	}
	return actor.UserID != "" && actor.UserID == target.UserID
}
